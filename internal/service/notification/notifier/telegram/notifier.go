package telegram

import (
	"context"
	"sync"
	"time"

	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Run 텔레그램 봇의 메인 실행 루프를 시작합니다.
//
// 이 메서드는 Sender/Receiver 패턴을 사용하여 두 가지 핵심 작업을 병렬로 수행합니다:
//
//  1. Receiver (메인 고루틴):
//     - 텔레그램 서버로부터 봇 명령어를 Long Polling 방식으로 수신합니다
//     - 수신한 명령어를 별도 고루틴으로 디스패치하여 Non-blocking 처리합니다
//     - 세마포어로 동시 실행 수를 제한하여 과부하를 방지합니다 (Backpressure)
//
//  2. Sender (별도 고루틴):
//     - 내부 시스템으로부터 알림 발송 요청을 채널로 수신합니다
//     - 텔레그램 API를 호출하여 실제 메시지를 전송합니다
//     - Rate Limit, 재시도, HTML 파싱 오류 등을 처리합니다
//
// Receiver와 Sender를 분리하였으므로 알림 발송이 느려지거나 Rate Limit에 걸려도
// 봇 명령어 수신에는 영향을 주지 않습니다.
//
// 종료 처리:
//   - serviceStopCtx 취소 또는 updateC 채널 닫힘 시 정상 종료됩니다
//   - Sender는 종료 시 큐에 남은 메시지를 최대 60초간 처리합니다 (Drain)
func (n *telegramNotifier) Run(serviceStopCtx context.Context) {
	// Long Polling 설정: 서버에 연결을 열어두고 새로운 메시지가 도착할 때까지 대기합니다.
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	// 주의: GetUpdatesChan()은 내부적으로 별도 고루틴을 생성하여 지속적으로 업데이트를 가져옵니다.
	updateC := n.client.GetUpdatesChan(updateConfig)

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id":  n.ID(),
		"bot_username": n.client.GetSelf().UserName,
		"chat_id":      n.chatID,
	}).Debug("텔레그램 봇 서비스 시작됨: Long Polling 활성화, Sender/Receiver 고루틴 실행 중")

	// Sender 고루틴과 명령어 처리 고루틴들의 종료를 추적합니다.
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		n.sendNotifications(serviceStopCtx)
	}()

	defer n.shutdown(&wg)

	// 메인 루프 시작 (Receiver - 봇 명령어 수신 및 처리)
	n.receiveAndDispatchCommands(serviceStopCtx, updateC, &wg)
}

// shutdown Run 메서드 종료 시 모든 리소스를 안전하게 정리합니다.
//
// Graceful Shutdown을 보장하기 위해 다음 순서를 준수합니다:
//
//  1. 신규 메시지 수신 중단 (StopReceivingUpdates)
//  2. Notifier 내부 상태 종료 (Close) → Sender 고루틴에게 종료 신호를 보내 Drain을 시작합니다
//  3. 활성 고루틴 종료 대기 (waitForGoroutines)
//  4. 리소스 해제 (client = nil)
func (n *telegramNotifier) shutdown(wg *sync.WaitGroup) {
	if n.client != nil {
		n.client.StopReceivingUpdates()
	}

	n.Close()

	n.waitForGoroutines(wg)

	n.client = nil

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": n.ID(),
		"chat_id":     n.chatID,
	}).Debug("텔레그램 봇 서비스 종료됨: 모든 고루틴 정리 완료")
}

// waitForGoroutines 모든 활성 고루틴이 종료될 때까지 대기합니다.
//
// Sender 고루틴과 모든 명령어 처리 고루틴이 안전하게 작업을 완료하고 종료될 때까지 기다립니다.
// Sender의 Drain 프로세스가 최대 60초 소요될 수 있으므로, 여유분 5초를 더한 타임아웃을 적용하여
// 무한 대기를 방지합니다.
func (n *telegramNotifier) waitForGoroutines(wg *sync.WaitGroup) {
	goroutinesDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goroutinesDone)
	}()

	shutdownWaitTimeout := shutdownTimeout + (5 * time.Second)
	select {
	case <-goroutinesDone:
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
			"chat_id":     n.chatID,
		}).Debug("Graceful Shutdown 완료: 모든 고루틴 정상 종료됨")
	case <-time.After(shutdownWaitTimeout):
		// 일부 고루틴이 아직 실행 중일 수 있지만, 무한 대기를 방지하기 위해 종료를 강제로 진행합니다.
		// 좀비 고루틴이 남을 수 있으나, 프로세스 종료 시 OS가 정리합니다.
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
			"chat_id":     n.chatID,
			"timeout":     shutdownWaitTimeout,
		}).Error("Graceful Shutdown 타임아웃: 일부 고루틴 강제 종료됨, 좀비 고루틴 발생 가능")
	}
}

// isClosed 텔레그램 Notifier가 현재 종료된 상태인지 확인합니다.
func (n *telegramNotifier) isClosed() bool {
	select {
	case <-n.Done():
		return true
	default:
		return false
	}
}
