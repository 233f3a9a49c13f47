// Package api 작업 실행을 원격으로 요청할 수 있는 REST API 서버를 제공하는 패키지입니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/pkg/version"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	"github.com/labstack/echo/v4"
)

// Service REST API 서버의 생명주기를 관리하는 서비스입니다.
//
// Echo 기반 HTTP 서버의 시작/종료, 미들웨어 체인 및 라우트 설정,
// Graceful Shutdown(5초 타임아웃)을 담당합니다. 설정 파일에서 API 서버가
// 비활성화된 경우에는 서버를 구동하지 않습니다.
//
// 서비스는 고루틴으로 실행되며, serviceStopCtx를 통해 종료 신호를 받습니다.
type Service struct {
	appConfig *config.AppConfig

	taskSubmitter contract.TaskSubmitter

	notificationSender contract.NotificationSender

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig, taskSubmitter contract.TaskSubmitter, notificationSender contract.NotificationSender) *Service {
	return &Service{
		appConfig: appConfig,

		taskSubmitter: taskSubmitter,

		notificationSender: notificationSender,

		buildInfo: version.Get(),

		running:   false,
		runningMu: sync.Mutex{},
	}
}

// Start API 서비스를 시작합니다.
//
// 이 함수는 즉시 반환되며, 실제 서버는 고루틴에서 실행됩니다.
// 설정 파일에서 API 서버가 비활성화된 경우 서버를 구동하지 않고 종료 처리합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("API 서비스 시작중...")

	if s.taskSubmitter == nil {
		defer serviceStopWG.Done()
		return ErrTaskSubmitterNotInitialized
	}
	if s.notificationSender == nil {
		defer serviceStopWG.Done()
		return ErrNotificationSenderNotInitialized
	}

	if !s.appConfig.API.Enabled {
		defer serviceStopWG.Done()
		applog.WithComponent(componentService).Info("API 서비스가 비활성화되어 있어 서버를 구동하지 않습니다")
		return nil
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(componentService).Warn("API 서비스가 이미 시작됨!!!")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(componentService).Info("API 서비스 시작됨")

	return nil
}

// runServiceLoop 서비스의 메인 실행 루프입니다.
// 서버 설정, HTTP 서버 시작, Shutdown 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버 인스턴스를 생성하고 핸들러와 라우트 설정을 완료합니다.
func (s *Service) setupServer() *echo.Echo {
	h := NewHandler(s.appConfig, s.taskSubmitter, s.buildInfo)

	e := NewHTTPServer(HTTPServerConfig{
		Debug: s.appConfig.Debug,
	})

	RegisterRoutes(e, h)

	return e
}

// startHTTPServer HTTP 서버를 시작합니다.
//
// 이 함수는 블로킹되며, 서버가 종료되면 done 채널을 닫아
// 대기 중인 고루틴에 신호를 보냅니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.API.ListenPort
	applog.WithComponentAndFields(componentService, applog.Fields{
		"port": port,
	}).Debug("HTTP 서버 시작중...")

	s.handleServerError(e.Start(fmt.Sprintf(":%d", port)))
}

// handleServerError HTTP 서버 실행 중 발생한 에러를 처리합니다.
//
//   - nil: 처리하지 않음 (정상 종료)
//   - http.ErrServerClosed: Info 레벨 로깅 (Graceful Shutdown)
//   - 그 외: Error 레벨 로깅 + 기본 Notifier로 알림 전송 (예상치 못한 에러)
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(componentService).Info("HTTP 서버가 정상적으로 종료되었습니다")
		return
	}

	message := "API 서버 실행 중 치명적인 에러가 발생하였습니다."
	applog.WithComponentAndFields(componentService, applog.Fields{
		"port":  s.appConfig.API.ListenPort,
		"error": err,
	}).Error(message)

	if notifyErr := s.notificationSender.NotifyDefaultWithError(fmt.Sprintf("%s\r\n\r\n%s", message, err)); notifyErr != nil {
		applog.WithComponentAndFields(componentService, applog.Fields{
			"error": notifyErr,
		}).Warn("API 서버 에러 알림메시지 발송이 실패하였습니다")
	}
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
// 이 함수는 서비스가 완전히 종료될 때까지 블로킹됩니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(componentService).Info("API 서비스 중지중...")

	case <-httpServerDone:
		// HTTP 서버가 예기치 않게 종료됨 (포트 바인딩 실패 등)
		// 이미 종료되었으므로 Shutdown 호출 없이 상태만 정리합니다.
		applog.WithComponent(componentService).Error("HTTP 서버가 예기치 않게 종료되었습니다")

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(componentService, applog.Fields{
			"error": err,
		}).Error("HTTP 서버 Shutdown 중에 에러가 발생하였습니다")
	}

	<-httpServerDone

	s.cleanup()
}

// cleanup 서비스 종료 후 상태를 정리합니다.
func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(componentService).Info("API 서비스 중지됨")
}
