package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// RequestTimeout 각 HTTP 요청의 최대 처리 시간 (0이면 기본값 적용)
	RequestTimeout time.Duration
}

// NewHTTPServer 설정된 미들웨어를 포함한 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다 (순서가 중요합니다):
//
//  1. PanicRecovery - 핸들러에서 발생한 panic을 복구하여 서버 다운 방지
//  2. RequestID - 각 요청에 고유한 ID를 부여 (X-Request-ID 헤더)
//  3. Server 헤더 제거 - 응답 헤더에서 기술 스택 정보 노출 방지
//  4. RateLimiting - IP 주소별 요청 수 제한 (초과 시 429 응답)
//  5. BodyLimit - 요청 본문 크기 제한 (초과 시 413 응답)
//  6. Timeout - 요청 처리 시간 제한 (초과 시 503 응답)
//  7. Secure - X-XSS-Protection, X-Content-Type-Options 등 보안 헤더 추가
//
// 라우트 설정은 포함되지 않으며, 반환된 Echo 인스턴스에 별도로 설정해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true

	// 보안 및 리소스 관리를 위한 HTTP 서버 타임아웃 설정
	e.Server.ReadTimeout = readTimeout
	e.Server.ReadHeaderTimeout = readHeaderTimeout
	e.Server.WriteTimeout = writeTimeout
	e.Server.IdleTimeout = idleTimeout

	// 전역 HTTP 에러 핸들러 설정
	e.HTTPErrorHandler = ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = requestTimeout
	}

	// 1. Panic 복구
	e.Use(PanicRecovery())
	// 2. Request ID
	e.Use(middleware.RequestID())
	// 3. Server 헤더 제거 (서버 스택 정보 노출 방지)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	// 4. Rate Limiting
	e.Use(RateLimiting(rateLimitPerSecond, rateLimitBurst))
	// 5. Body Limit
	e.Use(middleware.BodyLimit(maxBodySize))
	// 6. Timeout
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	}))
	// 7. 보안 헤더
	e.Use(middleware.Secure())

	return e
}
