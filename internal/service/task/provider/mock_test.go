package provider

import (
	"context"
	"encoding/json"
	"sync"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

// mockNotificationSender 전송된 알림을 기록하는 NotificationSender 구현체입니다.
// 여러 테스트 파일에서 공통으로 사용됩니다.
type mockNotificationSender struct {
	mu sync.Mutex

	supportsHTML bool

	notifications   []contract.Notification
	defaultMessages []string
}

func (m *mockNotificationSender) Notify(_ context.Context, notification contract.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationSender) NotifyDefault(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMessages = append(m.defaultMessages, message)
	return nil
}

func (m *mockNotificationSender) NotifyDefaultWithError(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMessages = append(m.defaultMessages, message)
	return nil
}

func (m *mockNotificationSender) SupportsHTML(_ contract.NotifierID) bool {
	return m.supportsHTML
}

// Notifications 기록된 모든 알림의 복사본을 반환합니다.
func (m *mockNotificationSender) Notifications() []contract.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]contract.Notification(nil), m.notifications...)
}

// memoryTaskResultStore 테스트용 인메모리 TaskResultStore 구현체입니다.
// loadErr/saveErr를 설정하여 저장소 장애 상황을 시뮬레이션할 수 있습니다.
type memoryTaskResultStore struct {
	mu sync.Mutex

	data map[string][]byte

	loadErr error
	saveErr error
}

func newMemoryTaskResultStore() *memoryTaskResultStore {
	return &memoryTaskResultStore{
		data: make(map[string][]byte),
	}
}

func (s *memoryTaskResultStore) key(taskID contract.TaskID, commandID contract.TaskCommandID) string {
	return string(taskID) + "|" + string(commandID)
}

func (s *memoryTaskResultStore) Save(taskID contract.TaskID, commandID contract.TaskCommandID, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}

	marshaled, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "마샬링 실패")
	}

	s.data[s.key(taskID, commandID)] = marshaled
	return nil
}

func (s *memoryTaskResultStore) Load(taskID contract.TaskID, commandID contract.TaskCommandID, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return s.loadErr
	}

	marshaled, exists := s.data[s.key(taskID, commandID)]
	if !exists {
		return contract.ErrTaskResultNotFound
	}

	return json.Unmarshal(marshaled, v)
}
