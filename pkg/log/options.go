package log

import (
	"fmt"
	"os"
)

// Options 로깅 시스템 초기화 옵션입니다.
type Options struct {
	Name  string // 로그 파일명에 사용될 애플리케이션 식별자
	Dir   string // 로그 파일 저장 디렉토리 (빈 문자열: "logs")
	Level Level  // 초기 로그 레벨

	MaxAge     int // 로테이션된 파일의 보관 기간 (일 단위, 0: 무제한)
	MaxSizeMB  int // 로그 파일 하나의 최대 크기 (MB, 0: 기본값)
	MaxBackups int // 로테이션된 파일의 최대 보관 개수 (0: 기본값)

	EnableCriticalLog bool // ERROR 이상의 로그를 별도 파일로 분리 저장할지 여부
	EnableVerboseLog  bool // DEBUG 이하의 로그를 별도 파일로 분리 저장할지 여부
	EnableConsoleLog  bool // 표준 출력에도 로그를 출력할지 여부 (개발 환경 권장)

	// ReportCaller 로그를 남긴 소스 코드의 위치(함수명:라인)를 함께 기록할지 여부입니다.
	ReportCaller bool

	// CallerPathPrefix 호출자 경로에서 축약할 접두어입니다.
	// 예: "github.com/darkkaiser" 설정 시 해당 접두어가 "..."으로 치환됩니다.
	CallerPathPrefix string
}

// Validate 옵션 값의 유효성을 검증합니다.
func (opts *Options) Validate() error {
	if opts.Name == "" {
		return fmt.Errorf("애플리케이션 식별자(Name)가 설정되지 않았습니다")
	}

	// 디렉토리 경로가 이미 일반 파일로 존재하면 MkdirAll이 실패하므로 미리 확인합니다.
	if opts.Dir != "" {
		if info, err := os.Stat(opts.Dir); err == nil && !info.IsDir() {
			return fmt.Errorf("로그 디렉토리 경로(%s)가 이미 파일로 존재합니다", opts.Dir)
		}
	}

	if opts.MaxAge < 0 {
		return fmt.Errorf("MaxAge는 0 이상이어야 합니다: %d", opts.MaxAge)
	}
	if opts.MaxSizeMB < 0 {
		return fmt.Errorf("MaxSizeMB는 0 이상이어야 합니다: %d", opts.MaxSizeMB)
	}
	if opts.MaxBackups < 0 {
		return fmt.Errorf("MaxBackups는 0 이상이어야 합니다: %d", opts.MaxBackups)
	}

	return nil
}
