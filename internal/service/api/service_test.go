package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getFreePort 사용 가능한 TCP 포트를 동적으로 할당받아 반환합니다.
func getFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "사용 가능한 포트를 가져오는데 실패했습니다")
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

// newServiceTestConfig API 서버가 활성화된 테스트용 AppConfig를 생성합니다.
func newServiceTestConfig(port int) *config.AppConfig {
	appConfig := newHandlerTestConfig()
	appConfig.API.Enabled = true
	appConfig.API.ListenPort = port
	return appConfig
}

// waitForHealthy HTTP 서버가 요청을 받을 수 있을 때까지 대기합니다.
func waitForHealthy(t *testing.T, port int) {
	t.Helper()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("HTTP 서버가 제한시간 내에 기동되지 않았습니다")
}

// waitForWaitGroup WaitGroup이 완료될 때까지 제한시간 동안 대기합니다.
func waitForWaitGroup(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("서비스가 제한시간 내에 종료되지 않았습니다")
	}
}

func TestServiceStart(t *testing.T) {
	t.Run("TaskSubmitter가 nil이면 에러 반환", func(t *testing.T) {
		s := NewService(newServiceTestConfig(8080), nil, &stubNotificationSender{})

		wg := &sync.WaitGroup{}
		wg.Add(1)
		err := s.Start(context.Background(), wg)

		require.ErrorIs(t, err, ErrTaskSubmitterNotInitialized)
		waitForWaitGroup(t, wg)
	})

	t.Run("NotificationSender가 nil이면 에러 반환", func(t *testing.T) {
		s := NewService(newServiceTestConfig(8080), NewMockTaskSubmitter(t), nil)

		wg := &sync.WaitGroup{}
		wg.Add(1)
		err := s.Start(context.Background(), wg)

		require.ErrorIs(t, err, ErrNotificationSenderNotInitialized)
		waitForWaitGroup(t, wg)
	})

	t.Run("비활성화 설정이면 서버를 구동하지 않음", func(t *testing.T) {
		appConfig := newHandlerTestConfig()
		appConfig.API.Enabled = false

		s := NewService(appConfig, NewMockTaskSubmitter(t), &stubNotificationSender{})

		wg := &sync.WaitGroup{}
		wg.Add(1)
		err := s.Start(context.Background(), wg)

		require.NoError(t, err)
		waitForWaitGroup(t, wg)
		assert.False(t, s.running)
	})

	t.Run("활성화 설정이면 HTTP 서버 기동 및 Graceful Shutdown 수행", func(t *testing.T) {
		port := getFreePort(t)
		s := NewService(newServiceTestConfig(port), NewMockTaskSubmitter(t), &stubNotificationSender{})

		ctx, cancel := context.WithCancel(context.Background())
		wg := &sync.WaitGroup{}
		wg.Add(1)

		require.NoError(t, s.Start(ctx, wg))
		waitForHealthy(t, port)

		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthz", port))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		assert.Equal(t, healthStatusOK, health.Status)

		cancel()
		waitForWaitGroup(t, wg)

		s.runningMu.Lock()
		running := s.running
		s.runningMu.Unlock()
		assert.False(t, running)
	})

	t.Run("중복 시작은 경고 후 무시", func(t *testing.T) {
		port := getFreePort(t)
		s := NewService(newServiceTestConfig(port), NewMockTaskSubmitter(t), &stubNotificationSender{})

		ctx, cancel := context.WithCancel(context.Background())
		wg := &sync.WaitGroup{}
		wg.Add(1)

		require.NoError(t, s.Start(ctx, wg))
		waitForHealthy(t, port)

		wg.Add(1)
		require.NoError(t, s.Start(ctx, wg))

		cancel()
		waitForWaitGroup(t, wg)
	})

	t.Run("포트 바인딩 실패 시 기본 Notifier로 에러 알림 발송", func(t *testing.T) {
		// 동일 포트를 미리 점유하여 바인딩 실패를 유도합니다.
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		port := listener.Addr().(*net.TCPAddr).Port
		sender := &stubNotificationSender{}
		s := NewService(newServiceTestConfig(port), NewMockTaskSubmitter(t), sender)

		wg := &sync.WaitGroup{}
		wg.Add(1)

		require.NoError(t, s.Start(context.Background(), wg))
		waitForWaitGroup(t, wg)

		require.NotEmpty(t, sender.messages)
		assert.Contains(t, sender.messages[0], "API 서버 실행 중 치명적인 에러가 발생하였습니다.")
	})
}
