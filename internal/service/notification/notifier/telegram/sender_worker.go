package telegram

import (
	"context"
	"time"

	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

// sendNotifications 내부 시스템으로부터 알림 발송 요청을 수신하여 텔레그램으로 전송하는 작업 루프입니다.
//
// 이 메서드는 Run 함수에서 시작된 별도의 고루틴으로, Sender 역할을 수행합니다.
// NotificationC 채널로부터 알림 요청을 지속적으로 수신하여 텔레그램 API로 전송합니다.
// Run 메서드의 Receiver 루프와 독립적으로 동작하므로, 메시지 전송 지연이 발생해도
// 봇 명령어 수신에는 영향을 주지 않습니다.
//
// 패닉 복구는 루프 레벨과 개별 메시지 레벨의 2단계로 수행되며,
// 서비스 종료 시 drainRemainingNotifications()를 호출하여 큐에 남은 메시지를 처리합니다.
func (n *telegramNotifier) sendNotifications(serviceStopCtx context.Context) {
	// 루프 레벨 패닉 복구
	// 이 고루틴은 텔레그램 알림 발송을 전담하는 핵심 Sender 워커입니다.
	// 로직 수행 중 예기치 않은 런타임 오류(Panic)가 발생하더라도,
	// 서비스 전체가 영향을 받지 않도록 로그를 남기고 Sender 고루틴만 안전하게 종료합니다.
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"chat_id":     n.chatID,
				"panic":       r,
			}).Error("발송 프로세스 비정상 종료: Sender 고루틴 패닉 발생 (서비스 재시작 필요)")

			// Sender 고루틴이 죽으면 Notifier 기능이 마비되므로,
			// 상태를 명시적으로 'Closed'로 변경하여 외부에서 이를 인지할 수 있게 해야 합니다.
			// 그렇지 않으면 큐가 가득 찰 때까지 메시지가 유실되는 'Silent Failure'가 발생합니다.
			n.Close()
		}
	}()

	for {
		select {
		case req, ok := <-n.NotificationC():
			// 참고: notificationC는 다중 생산자 환경에서 패닉 방지를 위해 절대 닫히지 않습니다.
			// (notifier.Base.Close() 참조) 이 케이스는 방어 코드로만 존재합니다.
			if !ok {
				return
			}

			// 개별 알림 처리 (패닉 격리)
			// 특정 알림 데이터의 문제로 인한 패닉이 워커 루프 전체를 중단시키는 것을 방지합니다.
			func() {
				defer func() {
					if r := recover(); r != nil {
						fields := applog.Fields{
							"notifier_id": n.ID(),
							"chat_id":     n.chatID,
							"panic":       r,
						}
						if req.Notification.TaskID != "" {
							fields["task_id"] = req.Notification.TaskID
						}
						if req.Notification.Title != "" {
							fields["task_title"] = req.Notification.Title
						}
						applog.WithComponentAndFields(component, fields).Error("메시지 처리 실패: 발송 로직 수행 중 패닉 발생 (해당 건 스킵)")
					}
				}()

				n.sendNotification(req.Ctx, &req.Notification)
			}()

		case <-serviceStopCtx.Done():
			// 서비스 종료 시그널 감지: 루프를 탈출하여 아래의 Drain 로직으로 이동합니다.

		case <-n.Done():
			// Notifier 인스턴스 종료 감지: 루프를 탈출하여 아래의 Drain 로직으로 이동합니다.
		}

		// 서비스가 종료되거나 Notifier가 닫힌 경우, 큐에 남아있는 메시지들을 처리합니다.
		if serviceStopCtx.Err() != nil || n.isClosed() {
			n.drainRemainingNotifications()
			return
		}
	}
}

// drainRemainingNotifications Graceful Shutdown의 마지막 단계로, 큐에 남아있는 알림을 처리합니다.
//
// serviceStopCtx가 취소된 후에도 NotificationC 채널에 남아있는 메시지들을
// 최대한 발송하여 메시지 손실을 최소화합니다.
//
// serviceStopCtx는 이미 취소된 상태이므로, 새로운 drainCtx(shutdownTimeout)를 생성하여
// 텔레그램 API 호출이 가능하게 합니다. select-default 패턴으로 채널이 비어있으면 즉시 종료하며,
// 타임아웃 초과 시 남은 메시지를 버리고 강제 종료합니다.
func (n *telegramNotifier) drainRemainingNotifications() {
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 경쟁 상태 방지: 종료 직전에 Send() 메서드에 진입하여 채널에 넣으려는 시도들이
	// 완료될 때까지 기다립니다. "채널 확인(Empty) -> 종료 -> Send(Push)" 순서로 발생하는
	// 데이터 유실을 방지합니다.
	waitPendingSendsC := make(chan struct{})
	go func() {
		n.WaitForPendingSends()
		close(waitPendingSendsC)
	}()

	waitPendingSendsCtx, waitPendingSendsCancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer waitPendingSendsCancel()

	select {
	case <-waitPendingSendsC:
		// 대기 완료: 모든 Sender가 작업을 마침 (채널에 넣었거나 포기했거나)

	case <-waitPendingSendsCtx.Done():
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
			"chat_id":     n.chatID,
			"timeout":     6 * time.Second,
			"queue_depth": len(n.NotificationC()),
		}).Warn("Pending Sends 대기 중단: 대기 제한 시간 초과 (잔여 시간 동안 전송 시도)")
	}

Loop:
	for {
		select {
		case req := <-n.NotificationC():
			if drainCtx.Err() != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"notifier_id":         n.ID(),
					"chat_id":             n.chatID,
					"timeout":             shutdownTimeout,
					"remaining_in_buffer": len(n.NotificationC()),
				}).Warn("잔여 메시지 폐기: 종료 대기 시간(Drain Timeout) 초과")

				break Loop
			}

			// 개별 알림의 패닉이 전체 Drain 프로세스를 중단시키지 않도록 격리합니다.
			func() {
				defer func() {
					if r := recover(); r != nil {
						fields := applog.Fields{
							"notifier_id": n.ID(),
							"chat_id":     n.chatID,
							"panic":       r,
						}
						if req.Notification.TaskID != "" {
							fields["task_id"] = req.Notification.TaskID
						}
						if req.Notification.Title != "" {
							fields["task_title"] = req.Notification.Title
						}
						applog.WithComponentAndFields(component, fields).Error("잔여 메시지 처리 실패: Drain 로직 수행 중 패닉 발생 (해당 건 스킵)")
					}
				}()

				// 취소된 serviceStopCtx가 아닌 유효한 drainCtx를 사용해야 API 호출이 정상 수행됩니다.
				n.sendNotification(drainCtx, &req.Notification)
			}()

		default:
			// 채널에 더 이상 메시지가 없으므로 Drain 프로세스를 종료합니다.
			break Loop
		}
	}
}
