package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/notification/notifier"
	"github.com/darkkaiser/applestore-notifier/internal/service/notification/notifier/telegram"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

// component Notification 서비스의 로깅용 컴포넌트 이름
const component = "notification.service"

// Service 알림 발송을 담당하는 서비스입니다.
//
// 설정 파일에 등록된 알림 채널(Notifier)들을 초기화하고 각각 별도의 고루틴으로 실행하며,
// contract.NotificationSender 인터페이스를 통해 다른 서비스(Task, Scheduler, API)의
// 알림 발송 요청을 적절한 채널로 라우팅합니다.
type Service struct {
	appConfig *config.AppConfig

	notifiers       []notifier.Notifier
	defaultNotifier notifier.Notifier

	factory notifier.Factory

	// notifiersStopWG 모든 하위 Notifier의 종료를 대기하는 WaitGroup
	notifiersStopWG *sync.WaitGroup

	executor contract.TaskExecutor

	running   bool
	runningMu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ contract.NotificationSender = (*Service)(nil)

// NewService 새로운 Notification 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, executor contract.TaskExecutor) *Service {
	service := &Service{
		appConfig: appConfig,

		defaultNotifier: nil,

		notifiersStopWG: &sync.WaitGroup{},

		executor: executor,

		running:   false,
		runningMu: sync.Mutex{},
	}

	// Factory 생성 및 Processor 등록
	factory := notifier.NewFactory()
	factory.RegisterProcessor(telegram.NewProcessor())
	service.factory = factory

	return service
}

// SetFactory Notifier 생성을 담당하는 Factory를 교체합니다.
func (s *Service) SetFactory(factory notifier.Factory) {
	s.factory = factory
}

// Start 알림 서비스를 시작하여 등록된 Notifier들을 활성화합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 시작중...")

	if s.executor == nil {
		defer serviceStopWG.Done()
		return NewErrExecutorNotInitialized()
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Notification 서비스가 이미 시작됨!!!")
		return nil
	}

	// 1. Notifier들을 초기화 및 실행
	notifiers, err := s.factory.CreateNotifiers(s.appConfig, s.executor)
	if err != nil {
		defer serviceStopWG.Done()
		return NewErrNotifierInitFailed(err)
	}

	defaultNotifierID := contract.NotifierID(s.appConfig.Notifiers.DefaultNotifierID)

	registeredIDs := make(map[contract.NotifierID]struct{}, len(notifiers))

	for _, n := range notifiers {
		if _, exists := registeredIDs[n.ID()]; exists {
			defer serviceStopWG.Done()
			return NewErrDuplicateNotifierID(n.ID().String())
		}
		registeredIDs[n.ID()] = struct{}{}

		s.notifiers = append(s.notifiers, n)

		if n.ID() == defaultNotifierID {
			s.defaultNotifier = n
		}

		s.notifiersStopWG.Add(1)

		go func(n notifier.Notifier) {
			defer s.notifiersStopWG.Done()
			n.Run(serviceStopCtx)
		}(n)

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
		}).Debug("Notifier가 Notification 서비스에 등록됨")
	}

	// 2. 기본 Notifier 존재 여부 확인
	if s.defaultNotifier == nil {
		defer serviceStopWG.Done()
		return NewErrDefaultNotifierNotFound(s.appConfig.Notifiers.DefaultNotifierID)
	}

	// 3. 서비스 종료 감시 루틴 실행
	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponent(component).Info("Notification 서비스 시작됨")

	return nil
}

// waitForShutdown 서비스의 종료 신호를 감지하고 리소스를 안전하게 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("Notification 서비스 중지중...")

	// 등록된 모든 Notifier의 Run 고루틴이 완료(종료)될 때까지 대기합니다.
	s.notifiersStopWG.Wait()

	s.runningMu.Lock()
	s.running = false
	s.executor = nil
	s.notifiers = nil
	s.defaultNotifier = nil
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 중지됨")
}

// Notify 알림을 지정된 Notifier의 발송 큐에 등록합니다.
//
// NotifierID가 비어있으면 기본 Notifier로 전송됩니다. 등록되지 않은 NotifierID가
// 지정된 경우, 기본 Notifier로 오류 알림을 대신 발송하고 ErrNotifierNotFound를 반환합니다.
// 반환값 nil은 발송 요청이 큐에 등록되었음을 의미하며, 실제 전송 결과와는 무관합니다.
func (s *Service) Notify(ctx context.Context, notification contract.Notification) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notification.NotifierID,
		}).Warn("Notification 서비스가 실행 중이 아니어서 메시지를 전송할 수 없습니다")

		return ErrServiceNotRunning
	}

	if notification.NotifierID.IsEmpty() {
		return s.defaultNotifier.Send(ctx, notification)
	}

	for _, n := range s.notifiers {
		if n.ID() == notification.NotifierID {
			return n.Send(ctx, notification)
		}
	}

	m := fmt.Sprintf("알 수 없는 Notifier('%s')입니다. 알림메시지 발송이 실패하였습니다.(Message:%s)", notification.NotifierID, notification.Message)

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": notification.NotifierID,
	}).Error(m)

	// 관리자가 설정 오류를 인지할 수 있도록 기본 채널로 오류 알림을 대신 발송합니다.
	if err := s.defaultNotifier.Send(ctx, contract.NewErrorNotification(m)); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notification.NotifierID,
			"error":       err,
		}).Warn("알 수 없는 Notifier에 대한 오류 알림 발송이 실패하였습니다")
	}

	return ErrNotifierNotFound
}

// NotifyDefault 시스템 기본 알림 채널로 알림 메시지를 발송합니다.
func (s *Service) NotifyDefault(message string) error {
	return s.Notify(context.Background(), contract.Notification{Message: message})
}

// NotifyDefaultWithError 시스템 기본 알림 채널로 "에러" 알림 메시지를 발송합니다.
// 시스템 오류, 작업 실패 등 관리자의 주의가 필요한 상황에서 사용합니다.
func (s *Service) NotifyDefaultWithError(message string) error {
	return s.Notify(context.Background(), contract.NewErrorNotification(message))
}

// SupportsHTML 해당 Notifier가 HTML 포맷을 지원하는지 확인합니다.
// NotifierID가 비어있으면 기본 Notifier를 기준으로 판단합니다.
func (s *Service) SupportsHTML(notifierID contract.NotifierID) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if notifierID.IsEmpty() {
		if s.defaultNotifier == nil {
			return false
		}
		return s.defaultNotifier.SupportsHTML()
	}

	for _, n := range s.notifiers {
		if n.ID() == notifierID {
			return n.SupportsHTML()
		}
	}

	return false
}
