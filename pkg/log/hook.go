package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hook 로그 레벨에 따라 이벤트를 여러 출력 채널로 분배하는 logrus Hook 구현체입니다.
//
// 라우팅 정책:
//   - Error 이상: Critical + Main
//   - Info ~ Warn: Main
//   - Debug 이하: Verbose 전용 (운영 로그로의 유입 차단)
//   - Console: 설정된 경우 레벨 무관 전체 출력
type hook struct {
	mainWriter     io.Writer // INFO / WARN / ERROR / FATAL / PANIC
	criticalWriter io.Writer // ERROR / FATAL / PANIC
	verboseWriter  io.Writer // DEBUG / TRACE
	consoleWriter  io.Writer // 전체 레벨 (표준 출력)

	formatter Formatter

	// mu 로그 기록(RLock)과 종료 처리(Lock) 간의 동시성 제어
	mu sync.RWMutex

	// closed true가 되면 이후의 모든 로그 기록 요청을 거부합니다.
	closed bool
}

// Levels 이 Hook이 수신할 로그 레벨 집합을 반환합니다.
func (h *hook) Levels() []Level {
	return AllLevels
}

// Fire 수신한 로그 이벤트를 레벨별 라우팅 정책에 따라 각 Writer로 기록합니다.
func (h *hook) Fire(entry *Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	// 포맷팅은 한 번만 수행하고 모든 Writer에서 재사용합니다.
	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	var firstErr error

	// 콘솔 출력 실패는 전체 로깅 가용성에 영향을 주지 않도록 에러를 전파하지 않습니다.
	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 콘솔 출력 쓰기 실패: %v\n", err)
		}
	}

	// Critical(Error 이상)은 별도 파일에 격리 저장합니다.
	// 여기서 쓰기에 실패하더라도 메인 로그 기록은 반드시 시도해야 하므로 에러 반환을 유예합니다.
	if entry.Level <= ErrorLevel && h.criticalWriter != nil {
		if _, err := h.criticalWriter.Write(msg); err != nil {
			firstErr = err
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] Critical 로그 파일 쓰기 실패: %v\n", err)
		}
	}

	// Debug 이하의 상세 로그는 Verbose 파일에만 기록하고 종료합니다.
	// 메인 운영 로그가 디버그 정보로 오염되지 않도록 여기서 반환합니다.
	if entry.Level >= DebugLevel {
		if h.verboseWriter != nil {
			if _, err := h.verboseWriter.Write(msg); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] Verbose 로그 파일 쓰기 실패: %v\n", err)
			}
		}

		return firstErr
	}

	if h.mainWriter != nil {
		if _, err := h.mainWriter.Write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] Main 로그 파일 쓰기 실패: %v\n", err)
		}
	}

	return firstErr
}

// Close Hook을 종료 상태로 전환하여 이후의 로그 기록을 차단합니다.
func (h *hook) Close() error {
	// Write Lock 획득으로 진행 중인 모든 Fire()가 끝날 때까지 대기합니다.
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	return nil
}
