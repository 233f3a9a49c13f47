package api

import (
	"context"
	"testing"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

// MockTaskSubmitter contract.TaskSubmitter 인터페이스의 Mock 구현체입니다.
type MockTaskSubmitter struct {
	mock.Mock
}

var _ contract.TaskSubmitter = (*MockTaskSubmitter)(nil)

func (m *MockTaskSubmitter) Submit(ctx context.Context, req *contract.TaskSubmitRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// NewMockTaskSubmitter 테스트에 연결된 MockTaskSubmitter를 생성합니다.
func NewMockTaskSubmitter(t *testing.T) *MockTaskSubmitter {
	t.Helper()

	m := &MockTaskSubmitter{}
	m.Test(t)
	return m
}

// stubNotificationSender contract.NotificationSender 인터페이스의 테스트용 구현체입니다.
// 발송 요청된 메시지를 내부에 기록만 합니다.
type stubNotificationSender struct {
	messages []string
}

var _ contract.NotificationSender = (*stubNotificationSender)(nil)

func (s *stubNotificationSender) Notify(_ context.Context, notification contract.Notification) error {
	s.messages = append(s.messages, notification.Message)
	return nil
}

func (s *stubNotificationSender) NotifyDefault(message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubNotificationSender) NotifyDefaultWithError(message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubNotificationSender) SupportsHTML(_ contract.NotifierID) bool {
	return false
}
