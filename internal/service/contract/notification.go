package contract

import (
	"context"
	"time"
)

// Notification 알림 채널로 전달되는 단일 알림 메시지입니다.
//
// Task 실행 결과뿐만 아니라 시스템 내부의 오류 보고에도 사용되며,
// 수신 측(Notifier)은 포함된 메타데이터를 활용해 메시지를 포맷팅합니다.
type Notification struct {
	// NotifierID 알림을 전송할 대상 채널의 식별자입니다.
	// 비어있으면 기본 Notifier로 전송됩니다.
	NotifierID NotifierID

	// TaskID / CommandID / InstanceID 알림을 발생시킨 작업의 식별 정보입니다.
	// 시스템 알림처럼 작업과 무관한 경우 비워둘 수 있습니다.
	TaskID     TaskID
	CommandID  TaskCommandID
	InstanceID TaskInstanceID

	// Title 알림의 제목입니다. 비어있으면 본문만 전송됩니다.
	Title string

	// Message 알림의 본문입니다.
	Message string

	// Elapsed 작업 시작부터 알림 발생까지의 경과 시간입니다. (0: 해당 없음)
	Elapsed time.Duration

	// ErrorOccurred 오류 상황에 대한 알림인지 여부입니다.
	// 수신 측은 이 값을 보고 경고 표시 등을 추가할 수 있습니다.
	ErrorOccurred bool
}

// NewErrorNotification 기본 Notifier로 전송되는 오류 알림을 생성합니다.
func NewErrorNotification(message string) Notification {
	return Notification{
		Message:       message,
		ErrorOccurred: true,
	}
}

// NotificationSender 알림 발송 기능을 제공하는 인터페이스입니다.
// API, Task, Scheduler와 같은 클라이언트는 이 인터페이스를 통해 알림 서비스를 사용합니다.
type NotificationSender interface {
	// Notify 알림을 발송 큐에 등록합니다.
	// 반환값 nil은 발송 요청이 큐에 등록되었음을 의미하며, 실제 전송 결과와는 무관합니다.
	// NotifierID가 비어있으면 기본 Notifier로 전송됩니다.
	Notify(ctx context.Context, notification Notification) error

	// NotifyDefault 기본 Notifier를 통해 단순 텍스트 알림을 발송합니다.
	NotifyDefault(message string) error

	// NotifyDefaultWithError 기본 Notifier를 통해 오류 성격의 알림을 발송합니다.
	// 시스템 내부 에러, 작업 실패 등 관리자의 주의가 필요한 상황에 사용합니다.
	NotifyDefaultWithError(message string) error

	// SupportsHTML 지정된 ID의 Notifier가 HTML 형식을 지원하는지 여부를 반환합니다.
	SupportsHTML(notifierID NotifierID) bool
}
