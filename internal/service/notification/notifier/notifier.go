package notifier

import (
	"context"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

// component Notifier 공통 로직의 로깅용 컴포넌트 이름
const component = "notification.notifier"

// Notifier 다양한 알림 채널(예: 텔레그램)을 추상화한 인터페이스입니다.
type Notifier interface {
	// ID Notifier 인스턴스의 고유 식별자(ID)를 반환합니다.
	ID() contract.NotifierID

	// Run 알림 발송을 처리하는 백그라운드 워커(Consumer)를 실행합니다.
	// 이 메서드는 블로킹(Blocking)되며, 큐에 쌓인 알림 요청을 하나씩 꺼내어 실제로 전송하는 역할을 합니다.
	// Context가 취소되거나 내부에서 치명적인 에러가 발생하여 종료될 때까지 실행됩니다.
	Run(ctx context.Context)

	// Send 알림 발송 요청을 내부 버퍼(Queue)에 등록하고 즉시 반환합니다.
	// 실제 전송은 Run() 메서드가 실행 중인 고루틴에서 비동기로 처리됩니다.
	// 큐가 가득 찬 경우 설정된 타임아웃만큼 대기하며, 그래도 실패하면 ErrQueueFull을 반환합니다.
	Send(ctx context.Context, notification contract.Notification) error

	// SupportsHTML 알림 채널이 HTML 스타일의 메시지 포맷팅을 지원하는지 여부를 반환합니다.
	// true인 경우, 메시지 내용에 <b>, <i>, <a href="..."> 등의 태그를 사용할 수 있습니다.
	SupportsHTML() bool

	// Done Notifier의 종료 상태를 감지할 수 있는 읽기 전용 채널을 반환합니다.
	// 반환된 채널이 닫히면 해당 Notifier가 종료되었음을 의미합니다.
	Done() <-chan struct{}
}

// ConfigProcessor 설정 정보를 바탕으로 Notifier 목록을 생성하는 함수 타입입니다.
type ConfigProcessor func(appConfig *config.AppConfig, executor contract.TaskExecutor) ([]Notifier, error)

// Factory Notifier 생성을 담당하는 팩토리 인터페이스입니다.
type Factory interface {
	RegisterProcessor(processor ConfigProcessor)

	CreateNotifiers(appConfig *config.AppConfig, executor contract.TaskExecutor) ([]Notifier, error)
}

// defaultFactory Processor 패턴을 사용하여 Notifier를 생성하는 기본 Factory 구현체입니다.
type defaultFactory struct {
	processors []ConfigProcessor
}

// NewFactory 새로운 Factory 인스턴스를 생성합니다.
func NewFactory() Factory {
	return &defaultFactory{
		processors: make([]ConfigProcessor, 0),
	}
}

// RegisterProcessor Notifier 생성을 담당할 새로운 Processor를 등록합니다.
func (f *defaultFactory) RegisterProcessor(processor ConfigProcessor) {
	if processor != nil {
		f.processors = append(f.processors, processor)
	}
}

// CreateNotifiers 등록된 모든 Processor를 실행하여 사용 가능한 Notifier 목록을 생성합니다.
func (f *defaultFactory) CreateNotifiers(appConfig *config.AppConfig, executor contract.TaskExecutor) ([]Notifier, error) {
	var notifiers []Notifier

	for _, processor := range f.processors {
		created, err := processor(appConfig, executor)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, created...)
	}

	return notifiers, nil
}
