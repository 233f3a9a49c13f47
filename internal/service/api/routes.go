package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes API 서비스의 라우트를 등록합니다.
//
//   - 시스템 엔드포인트: 서버 상태 확인(/healthz) 및 버전 정보(/version)
//   - 작업 실행 엔드포인트: 설정 파일에 등록된 작업 명령어의 원격 실행 요청
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/healthz", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)

	v1 := e.Group("/api/v1")
	v1.POST("/tasks/:task_id/commands/:command_id/run", h.RunCommandHandler)
}
