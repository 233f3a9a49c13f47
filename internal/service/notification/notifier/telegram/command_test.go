package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

// newCommandTestNotifier 봇 명령어 처리 테스트용 Notifier 인스턴스를 생성하는 헬퍼 함수
//
// "applestore" Task에 "iphone17pro" 명령어 하나가 등록된 상태로 생성됩니다.
// (명령어 이름: "applestore_iphone_17_pro")
func newCommandTestNotifier(t *testing.T, executor contract.TaskExecutor) *telegramNotifier {
	t.Helper()

	appConfig := &config.AppConfig{
		Tasks: []config.TaskConfig{
			{
				ID:    "applestore",
				Title: "애플스토어",
				Commands: []config.CommandConfig{
					{
						ID:          "iphone17pro",
						Title:       "iPhone 17 Pro 재고 확인",
						Description: "iPhone 17 Pro의 픽업 가능 매장을 확인합니다.",
					},
				},
			},
		},
	}

	n, err := newNotifierWithClient("test-notifier", &MockTelegramBot{}, executor, params{
		BotToken:  "test-token",
		ChatID:    12345,
		AppConfig: appConfig,
	})
	require.NoError(t, err)

	return n.(*telegramNotifier)
}

// receiveNotification 발송 대기열에 쌓인 알림을 하나 꺼내 반환합니다.
func receiveNotification(t *testing.T, n *telegramNotifier) contract.Notification {
	t.Helper()

	select {
	case req := <-n.NotificationC():
		return req.Notification
	case <-time.After(1 * time.Second):
		t.Fatal("발송 대기열에서 알림을 수신하지 못했습니다")
		return contract.Notification{}
	}
}

// assertNoPendingNotification 발송 대기열이 비어있는지 확인합니다.
func assertNoPendingNotification(t *testing.T, n *telegramNotifier) {
	t.Helper()

	select {
	case req := <-n.NotificationC():
		t.Fatalf("예상하지 못한 알림이 대기열에 존재합니다: %+v", req.Notification)
	default:
	}
}

func TestDispatchCommandHelp(t *testing.T) {
	n := newCommandTestNotifier(t, NewMockTaskExecutor(t))

	n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/help"})

	reply := receiveNotification(t, n)
	assert.Contains(t, reply.Message, "입력 가능한 명령어는 아래와 같습니다:")
	assert.Contains(t, reply.Message, "/applestore_iphone_17_pro")
	assert.Contains(t, reply.Message, "iPhone 17 Pro의 픽업 가능 매장을 확인합니다.")
	assert.Contains(t, reply.Message, "/help")
	assert.Contains(t, reply.Message, "도움말을 표시합니다.")
}

func TestDispatchCommandSubmitTask(t *testing.T) {
	t.Run("성공: 등록된 명령어 입력 시 작업이 제출되어야 한다", func(t *testing.T) {
		mockExecutor := NewMockTaskExecutor(t)
		mockExecutor.On("Submit", mock.Anything, mock.MatchedBy(func(req *contract.TaskSubmitRequest) bool {
			return req.TaskID == "applestore" &&
				req.CommandID == "iphone17pro" &&
				req.NotifierID == "test-notifier" &&
				req.NotifyOnStart &&
				req.RunBy == contract.TaskRunByUser
		})).Return(nil).Once()

		n := newCommandTestNotifier(t, mockExecutor)

		n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/applestore_iphone_17_pro"})

		mockExecutor.AssertExpectations(t)
		assertNoPendingNotification(t, n)
	})

	t.Run("실패: 작업 제출 실패 시 사용자에게 실패 알림을 전송해야 한다", func(t *testing.T) {
		mockExecutor := NewMockTaskExecutor(t)
		mockExecutor.On("Submit", mock.Anything, mock.Anything).Return(errors.New("queue full")).Once()

		n := newCommandTestNotifier(t, mockExecutor)

		n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/applestore_iphone_17_pro"})

		reply := receiveNotification(t, n)
		assert.Equal(t, msgTaskExecutionFailed, reply.Message)
		assert.True(t, reply.ErrorOccurred)
		assert.Equal(t, contract.TaskID("applestore"), reply.TaskID)
		assert.Equal(t, contract.TaskCommandID("iphone17pro"), reply.CommandID)
	})

	t.Run("패닉 격리: 작업 제출 중 패닉이 발생해도 전파되지 않아야 한다", func(t *testing.T) {
		mockExecutor := NewMockTaskExecutor(t)
		mockExecutor.On("Submit", mock.Anything, mock.Anything).Panic("unexpected").Once()

		n := newCommandTestNotifier(t, mockExecutor)

		assert.NotPanics(t, func() {
			n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/applestore_iphone_17_pro"})
		})
	})
}

func TestDispatchCommandCancel(t *testing.T) {
	t.Run("성공: 취소 명령어 입력 시 작업이 취소되어야 한다", func(t *testing.T) {
		mockExecutor := NewMockTaskExecutor(t)
		mockExecutor.On("Cancel", contract.TaskInstanceID("Ab3xK9")).Return(nil).Once()

		n := newCommandTestNotifier(t, mockExecutor)

		n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/cancel_Ab3xK9"})

		mockExecutor.AssertExpectations(t)
		assertNoPendingNotification(t, n)
	})

	t.Run("실패: 취소 요청 실패 시 사용자에게 실패 알림을 전송해야 한다", func(t *testing.T) {
		mockExecutor := NewMockTaskExecutor(t)
		mockExecutor.On("Cancel", contract.TaskInstanceID("Ab3xK9")).Return(errors.New("not found")).Once()

		n := newCommandTestNotifier(t, mockExecutor)

		n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/cancel_Ab3xK9"})

		reply := receiveNotification(t, n)
		assert.Contains(t, reply.Message, "작업취소 요청이 실패하였습니다.")
		assert.Contains(t, reply.Message, "Ab3xK9")
		assert.True(t, reply.ErrorOccurred)
	})

	t.Run("구분자가 포함된 인스턴스 ID도 올바르게 파싱되어야 한다", func(t *testing.T) {
		mockExecutor := NewMockTaskExecutor(t)
		mockExecutor.On("Cancel", contract.TaskInstanceID("abc_def")).Return(nil).Once()

		n := newCommandTestNotifier(t, mockExecutor)

		n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "/cancel_abc_def"})

		mockExecutor.AssertExpectations(t)
	})

	t.Run("잘못된 형식: 인스턴스 ID 없는 취소 입력 시 형식 안내 메시지를 전송해야 한다", func(t *testing.T) {
		n := newCommandTestNotifier(t, NewMockTaskExecutor(t))

		// dispatchCommand의 접두어 매칭을 거치지 않는 방어 분기를 직접 검증합니다.
		n.processCancel(context.Background(), "cancel")

		reply := receiveNotification(t, n)
		assert.Contains(t, reply.Message, "잘못된 취소 명령어 형식입니다.")
		assert.Contains(t, reply.Message, "/cancel_[작업인스턴스ID]")
	})
}

func TestDispatchCommandUnknown(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"등록되지 않은 명령어", "/bogus_command"},
		{"접두어 없는 일반 텍스트", "hello bot"},
		{"빈 메시지", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newCommandTestNotifier(t, NewMockTaskExecutor(t))

			n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: tt.input})

			reply := receiveNotification(t, n)
			assert.Contains(t, reply.Message, "등록되지 않은 명령어입니다.")
			assert.Contains(t, reply.Message, "/help")
		})
	}
}

func TestDispatchCommandEscapesUserInput(t *testing.T) {
	n := newCommandTestNotifier(t, NewMockTaskExecutor(t))

	n.dispatchCommand(context.Background(), &tgbotapi.Message{Text: "<script>alert('xss')</script>"})

	reply := receiveNotification(t, n)
	assert.NotContains(t, reply.Message, "<script>")
	assert.Contains(t, reply.Message, "&lt;script&gt;")
}

func TestLookupCommand(t *testing.T) {
	n := newCommandTestNotifier(t, NewMockTaskExecutor(t))

	command, found := n.lookupCommand("applestore_iphone_17_pro")
	require.True(t, found)
	assert.Equal(t, contract.TaskID("applestore"), command.taskID)
	assert.Equal(t, contract.TaskCommandID("iphone17pro"), command.commandID)

	_, found = n.lookupCommand("no_such_command")
	assert.False(t, found)
}
