package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileExt = "log"

	// 로그 로테이션 기본 정책
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 20
)

var (
	// setupOnce Setup()이 프로세스 생명주기 동안 단 한 번만 수행되도록 보장합니다.
	setupOnce sync.Once

	// globalCloser 최초 초기화 시 생성된 리소스 해제 객체입니다.
	// Setup()이 재호출되더라도 동일한 인스턴스를 반환합니다.
	globalCloser io.Closer

	// globalSetupErr 초기화 단계에서 발생한 에러입니다.
	// 초기화에 실패하면 이후 호출에서도 재시도 없이 최초의 에러를 그대로 반환합니다.
	globalSetupErr error
)

// silentFormatter 아무 일도 하지 않는 포맷터입니다.
// logrus는 출력이 io.Discard여도 포맷팅 연산을 수행하므로, 이중 포맷팅을 막기 위해 설정합니다.
// 실제 포맷팅은 hook에서 한 번만 수행됩니다.
type silentFormatter struct{}

func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}

// Setup 전역 로깅 시스템을 초기화합니다.
//
// main 함수 도입부에서 호출해야 하며, 반환된 Closer는 defer로 해제를 보장해야 합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setupInternal(opts)
	})

	return globalCloser, globalSetupErr
}

func setupInternal(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(opts.ReportCaller)
	logrus.SetFormatter(&silentFormatter{})

	// 파일/콘솔 출력에 실제로 사용할 포맷터입니다. (hook에서 사용)
	textFormatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if opts.CallerPathPrefix != "" {
				if cut, found := strings.CutPrefix(function, opts.CallerPathPrefix); found {
					function = "..." + cut
				}
			}
			return
		},
	}

	logDir := opts.Dir
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}

	// 기본 출력(os.Stderr)은 비활성화하고 모든 로그 처리를 Hook에 위임합니다.
	// 파일(Critical/Verbose)과 콘솔 출력을 한 곳에서 라우팅하기 위함입니다.
	logrus.SetOutput(io.Discard)

	newRotator := func(suffix string) *lumberjack.Logger {
		name := opts.Name + "." + logFileExt
		if suffix != "" {
			name = opts.Name + "." + suffix + "." + logFileExt
		}

		return &lumberjack.Logger{
			Filename:   filepath.Join(logDir, name),
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   false,
			LocalTime:  true,
		}
	}

	// 초기화 도중 실패하면 이미 생성된 리소스를 정리합니다.
	var closers []io.Closer
	succeeded := false
	defer func() {
		if !succeeded {
			for _, c := range closers {
				if c != nil {
					_ = c.Close()
				}
			}
		}
	}()

	mainLogger := newRotator("")
	closers = append(closers, mainLogger)

	h := &hook{
		mainWriter: mainLogger,
		formatter:  textFormatter,
	}

	if opts.EnableCriticalLog {
		criticalLogger := newRotator("critical")
		closers = append(closers, criticalLogger)
		h.criticalWriter = criticalLogger
	}
	if opts.EnableVerboseLog {
		verboseLogger := newRotator("verbose")
		closers = append(closers, verboseLogger)
		h.verboseWriter = verboseLogger
	}
	if opts.EnableConsoleLog {
		h.consoleWriter = os.Stdout
	}

	logrus.AddHook(h)

	succeeded = true

	c := &closer{
		closers: closers,
		hook:    h,
	}

	// Fatal 로그 발생 시 os.Exit 직전에 버퍼를 플러시하고 리소스를 해제합니다.
	logrus.RegisterExitHandler(func() {
		_ = c.Close()
	})

	return c, nil
}
