package telegram

import (
	"context"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

// 컴파일 타임에 client 인터페이스 구현 여부를 검증합니다.
var _ client = (*MockTelegramBot)(nil)

// MockTelegramBot 텔레그램 봇 API(client)의 Mock 구현체입니다.
// stretchr/testify/mock을 사용하여 동작을 모의(Mocking)하고 호출을 검증(Assertion)합니다.
type MockTelegramBot struct {
	mock.Mock
}

// NewMockTelegramBot 새로운 MockTelegramBot 인스턴스를 생성합니다.
func NewMockTelegramBot(t *testing.T) *MockTelegramBot {
	m := &MockTelegramBot{}
	m.Test(t)
	return m
}

// GetUpdatesChan 업데이트 수신 채널을 반환합니다.
//
// Mock 설정 예시:
//
//	updates := make(chan tgbotapi.Update, 100)
//	mockBot.On("GetUpdatesChan", mock.Anything).Return(updates)
func (m *MockTelegramBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return getUpdatesChannel(args.Get(0))
}

// Send 메시지를 전송합니다.
func (m *MockTelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)

	var msg tgbotapi.Message
	if args.Get(0) != nil {
		msg = args.Get(0).(tgbotapi.Message)
	}

	return msg, args.Error(1)
}

// StopReceivingUpdates 업데이트 수신 중지를 요청합니다.
func (m *MockTelegramBot) StopReceivingUpdates() {
	m.Called()
}

// GetSelf 봇 자신의 정보를 반환합니다.
func (m *MockTelegramBot) GetSelf() tgbotapi.User {
	args := m.Called()

	if args.Get(0) != nil {
		return args.Get(0).(tgbotapi.User)
	}
	return tgbotapi.User{}
}

// getUpdatesChannel Mock 리턴값을 tgbotapi.UpdatesChannel로 안전하게 변환합니다.
//
// 테스트 코드에서는 주로 양방향 채널(chan tgbotapi.Update)을 생성하므로,
// interface{}에서 꺼낼 때의 엄격한 타입 어설션을 우회하여 묵시적 변환을 수행합니다.
func getUpdatesChannel(ret interface{}) tgbotapi.UpdatesChannel {
	if ret == nil {
		return nil
	}

	if ch, ok := ret.(tgbotapi.UpdatesChannel); ok {
		return ch
	}

	if ch, ok := ret.(chan tgbotapi.Update); ok {
		return ch
	}

	panic(fmt.Sprintf("MockTelegramBot.GetUpdatesChan: unexpected return type: %T. Expected 'chan tgbotapi.Update' or 'tgbotapi.UpdatesChannel'", ret))
}

// 컴파일 타임에 contract.TaskExecutor 인터페이스 구현 여부를 검증합니다.
var _ contract.TaskExecutor = (*MockTaskExecutor)(nil)

// MockTaskExecutor 작업 제출/취소(contract.TaskExecutor)의 Mock 구현체입니다.
type MockTaskExecutor struct {
	mock.Mock
}

// NewMockTaskExecutor 새로운 MockTaskExecutor 인스턴스를 생성합니다.
func NewMockTaskExecutor(t *testing.T) *MockTaskExecutor {
	m := &MockTaskExecutor{}
	m.Test(t)
	return m
}

// Submit 작업 실행 요청을 기록합니다.
func (m *MockTaskExecutor) Submit(ctx context.Context, req *contract.TaskSubmitRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// Cancel 작업 취소 요청을 기록합니다.
func (m *MockTaskExecutor) Cancel(instanceID contract.TaskInstanceID) error {
	args := m.Called(instanceID)
	return args.Error(0)
}
