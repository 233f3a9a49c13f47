package telegram

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

const testChatID int64 = 12345

// runTestEnv Run 메서드 테스트를 위한 실행 환경입니다.
type runTestEnv struct {
	notifier *telegramNotifier
	bot      *MockTelegramBot
	executor *MockTaskExecutor
	updateC  chan tgbotapi.Update
	sentC    chan string
	cancel   context.CancelFunc
	doneC    chan struct{}
}

// startRunTest Mock 봇과 함께 Run 메서드를 별도 고루틴으로 실행하고, 테스트 환경을 반환합니다.
//
// Mock 봇의 Send 호출은 sentC 채널로 전송된 메시지 본문을 중계하므로,
// 테스트 코드는 채널 수신으로 비동기 발송 완료를 동기화할 수 있습니다.
func startRunTest(t *testing.T, appConfig *config.AppConfig) *runTestEnv {
	t.Helper()

	env := &runTestEnv{
		bot:      NewMockTelegramBot(t),
		executor: NewMockTaskExecutor(t),
		updateC:  make(chan tgbotapi.Update, 10),
		sentC:    make(chan string, 10),
		doneC:    make(chan struct{}),
	}

	env.bot.On("GetUpdatesChan", mock.Anything).Return(env.updateC)
	env.bot.On("GetSelf").Return(tgbotapi.User{UserName: "applestore_notifier_bot"})
	env.bot.On("StopReceivingUpdates").Run(func(mock.Arguments) {
		close(env.updateC)
	}).Return()
	env.bot.On("Send", mock.Anything).Run(func(args mock.Arguments) {
		msg := args.Get(0).(tgbotapi.MessageConfig)
		env.sentC <- msg.Text
	}).Return(tgbotapi.Message{MessageID: 1}, nil).Maybe()

	n, err := newNotifierWithClient("test-notifier", env.bot, env.executor, params{
		BotToken:  "test-token",
		ChatID:    testChatID,
		AppConfig: appConfig,
	})
	require.NoError(t, err)
	env.notifier = n.(*telegramNotifier)

	ctx, cancel := context.WithCancel(context.Background())
	env.cancel = cancel

	go func() {
		defer close(env.doneC)
		env.notifier.Run(ctx)
	}()

	return env
}

// stop 서비스 종료를 요청하고 Run 메서드가 반환될 때까지 대기합니다.
func (env *runTestEnv) stop(t *testing.T) {
	t.Helper()

	env.cancel()

	select {
	case <-env.doneC:
	case <-time.After(5 * time.Second):
		t.Fatal("Run 메서드가 제한 시간 내에 종료되지 않았습니다")
	}
}

// waitForSent Mock 봇으로 전송된 메시지 본문을 수신합니다.
func (env *runTestEnv) waitForSent(t *testing.T) string {
	t.Helper()

	select {
	case text := <-env.sentC:
		return text
	case <-time.After(3 * time.Second):
		t.Fatal("제한 시간 내에 메시지가 전송되지 않았습니다")
		return ""
	}
}

func TestRunLifecycle(t *testing.T) {
	env := startRunTest(t, &config.AppConfig{})

	env.stop(t)

	env.bot.AssertCalled(t, "StopReceivingUpdates")
	assert.True(t, env.notifier.isClosed(), "종료 후에는 닫힌 상태여야 합니다")
}

func TestRunSendsQueuedNotification(t *testing.T) {
	env := startRunTest(t, &config.AppConfig{})

	err := env.notifier.Send(context.Background(), contract.Notification{
		NotifierID: "test-notifier",
		Title:      "재고 알림",
		Message:    "iPhone 17 Pro 픽업 가능 매장이 발견되었습니다.",
	})
	require.NoError(t, err)

	sent := env.waitForSent(t)
	assert.Contains(t, sent, "<b>【 재고 알림 】</b>")
	assert.Contains(t, sent, "픽업 가능 매장이 발견되었습니다.")

	env.stop(t)
}

func TestRunDispatchesBotCommand(t *testing.T) {
	appConfig := &config.AppConfig{
		Tasks: []config.TaskConfig{
			{
				ID:    "applestore",
				Title: "애플스토어",
				Commands: []config.CommandConfig{
					{ID: "iphone17pro", Title: "iPhone 17 Pro", Description: "재고 확인"},
				},
			},
		},
	}

	env := startRunTest(t, appConfig)

	env.updateC <- tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: "/help",
			Chat: &tgbotapi.Chat{ID: testChatID},
		},
	}

	sent := env.waitForSent(t)
	assert.Contains(t, sent, "입력 가능한 명령어는 아래와 같습니다:")
	assert.Contains(t, sent, "/applestore_iphone_17_pro")

	env.stop(t)
}

func TestRunIgnoresUnauthorizedChat(t *testing.T) {
	env := startRunTest(t, &config.AppConfig{})

	// 허용되지 않은 채팅방에서 온 메시지는 무시되어야 합니다.
	env.updateC <- tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: "/help",
			Chat: &tgbotapi.Chat{ID: 99999},
		},
	}

	// 메시지가 없는 업데이트(스티커 등)도 무시되어야 합니다.
	env.updateC <- tgbotapi.Update{}

	select {
	case text := <-env.sentC:
		t.Fatalf("무시되어야 할 메시지에 응답이 전송되었습니다: %s", text)
	case <-time.After(300 * time.Millisecond):
	}

	env.stop(t)
}

func TestRunSubmitsTaskFromBotCommand(t *testing.T) {
	appConfig := &config.AppConfig{
		Tasks: []config.TaskConfig{
			{
				ID:    "applestore",
				Title: "애플스토어",
				Commands: []config.CommandConfig{
					{ID: "iphone17pro", Title: "iPhone 17 Pro", Description: "재고 확인"},
				},
			},
		},
	}

	env := startRunTest(t, appConfig)

	submittedC := make(chan *contract.TaskSubmitRequest, 1)
	env.executor.On("Submit", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		submittedC <- args.Get(1).(*contract.TaskSubmitRequest)
	}).Return(nil).Once()

	env.updateC <- tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: "/applestore_iphone_17_pro",
			Chat: &tgbotapi.Chat{ID: testChatID},
		},
	}

	select {
	case req := <-submittedC:
		assert.Equal(t, contract.TaskID("applestore"), req.TaskID)
		assert.Equal(t, contract.TaskCommandID("iphone17pro"), req.CommandID)
		assert.Equal(t, contract.NotifierID("test-notifier"), req.NotifierID)
		assert.True(t, req.NotifyOnStart)
		assert.Equal(t, contract.TaskRunByUser, req.RunBy)
	case <-time.After(3 * time.Second):
		t.Fatal("제한 시간 내에 작업이 제출되지 않았습니다")
	}

	env.stop(t)
}

func TestRunDrainsQueuedNotificationsOnShutdown(t *testing.T) {
	env := startRunTest(t, &config.AppConfig{})

	// 서비스가 정상 동작 중임을 먼저 확인한 후 종료를 요청합니다.
	// 종료 요청 직전에 쌓인 메시지도 Drain 과정에서 전송되어야 합니다.
	require.NoError(t, env.notifier.Send(context.Background(), contract.Notification{Message: "first"}))
	require.NoError(t, env.notifier.Send(context.Background(), contract.Notification{Message: "second"}))

	env.stop(t)

	received := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case text := <-env.sentC:
			received[text] = true
		default:
		}
	}

	assert.True(t, received["first"], "첫 번째 메시지가 전송되어야 합니다")
	assert.True(t, received["second"], "두 번째 메시지가 전송되어야 합니다")
}
