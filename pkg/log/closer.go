package log

import (
	"errors"
	"io"
	"sync/atomic"
)

// closer 로그 파일(Main, Critical, Verbose) 리소스 해제를 통합 관리합니다.
//
//   - Hook을 먼저 비활성화하여 닫힌 파일에 대한 쓰기 시도를 방지합니다.
//   - 일부 파일 닫기에 실패해도 나머지 리소스의 해제를 계속 시도합니다.
//   - Close()는 여러 번 호출해도 안전하며, 두 번째 이후 호출은 즉시 nil을 반환합니다.
type closer struct {
	closers []io.Closer

	hook *hook

	// closed 중복 Close() 방지용 플래그 (0: open, 1: closed)
	closed int32
}

func (c *closer) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	// 파일을 닫기 전에 로그 유입을 먼저 차단합니다.
	if c.hook != nil {
		_ = c.hook.Close()
	}

	var errs error
	for _, closer := range c.closers {
		if closer == nil {
			continue
		}

		// 닫기 전 Sync()로 잔류 버퍼를 디스크에 기록합니다.
		if s, ok := closer.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}

		if err := closer.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}
