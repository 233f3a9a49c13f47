package api

import (
	"net/http"

	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	"github.com/labstack/echo/v4"
)

// ErrorResponse API 에러 응답의 표준 JSON 형식입니다.
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// SuccessResponse API 성공 응답의 표준 JSON 형식입니다.
type SuccessResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// newHTTPError 표준 ErrorResponse를 본문으로 갖는 echo.HTTPError를 생성합니다.
func newHTTPError(code int, message string) error {
	return echo.NewHTTPError(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 HTTP 에러를 가로채서 표준 ErrorResponse JSON 형식으로 변환하여 반환합니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "서버 내부 오류가 발생하였습니다."

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else if resp, ok := he.Message.(ErrorResponse); ok {
			message = resp.Message
		}
	}

	if code == http.StatusNotFound {
		message = "요청하신 리소스를 찾을 수 없습니다."
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(componentHandler, fields).Error("HTTP 5xx 서버 오류 발생")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(componentHandler, fields).Warn("HTTP 4xx 클라이언트 오류 발생")
	}

	// 이중 응답 방지
	if c.Response().Committed {
		return
	}

	// HEAD 요청은 HTTP 명세에 따라 본문 없이 헤더만 반환합니다.
	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}

	c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
