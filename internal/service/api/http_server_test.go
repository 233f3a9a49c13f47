package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPServer(t *testing.T) {
	t.Run("서버 기본 설정", func(t *testing.T) {
		e := NewHTTPServer(HTTPServerConfig{Debug: true})

		assert.True(t, e.Debug)
		assert.True(t, e.HideBanner)
		assert.Equal(t, readTimeout, e.Server.ReadTimeout)
		assert.Equal(t, readHeaderTimeout, e.Server.ReadHeaderTimeout)
		assert.Equal(t, writeTimeout, e.Server.WriteTimeout)
		assert.Equal(t, idleTimeout, e.Server.IdleTimeout)
	})

	t.Run("응답 헤더 설정", func(t *testing.T) {
		e := NewHTTPServer(HTTPServerConfig{})
		e.GET("/", func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		// Request ID 부여
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
		// 서버 스택 정보 노출 방지
		assert.Empty(t, rec.Header().Get(echo.HeaderServer))
		// 보안 헤더 추가
		assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	})

	t.Run("존재하지 않는 경로는 표준 에러 응답 반환", func(t *testing.T) {
		e := NewHTTPServer(HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusNotFound, resp.ResultCode)
		assert.Equal(t, "요청하신 리소스를 찾을 수 없습니다.", resp.Message)
	})

	t.Run("핸들러 panic 발생 시 500 응답", func(t *testing.T) {
		e := NewHTTPServer(HTTPServerConfig{})
		e.GET("/panic", func(c echo.Context) error {
			panic("boom")
		})

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		rec := httptest.NewRecorder()

		assert.NotPanics(t, func() {
			e.ServeHTTP(rec, req)
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("요청 처리 시간 제한 적용", func(t *testing.T) {
		e := NewHTTPServer(HTTPServerConfig{RequestTimeout: 50 * time.Millisecond})
		e.GET("/slow", func(c echo.Context) error {
			select {
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			case <-time.After(3 * time.Second):
				return c.String(http.StatusOK, "ok")
			}
		})

		req := httptest.NewRequest(http.MethodGet, "/slow", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
