package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

// pickupTestSnapshot 테스트용 작업 결과 데이터입니다.
type pickupTestSnapshot struct {
	AvailableSKUs []string `json:"available_skus"`
}

func newTestBase(storage contract.TaskResultStore) *Base {
	return NewBase(BaseParams{
		ID:         "APPLESTORE",
		CommandID:  "WatchPickup_iPhone13Pro",
		InstanceID: "instance-1",
		NotifierID: "telegram-admin",
		RunBy:      contract.TaskRunByScheduler,
		Storage:    storage,
		NewSnapshot: func() any {
			return &pickupTestSnapshot{}
		},
	})
}

func TestBaseRun_SuccessNotifiesAndSavesSnapshot(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		return ExecuteResult{
			Title:       "픽업 가능",
			Message:     "iPhone 13 Pro: 1 found",
			NewSnapshot: &pickupTestSnapshot{AvailableSKUs: []string{"MKGT3LL/A"}},
		}, nil
	})

	base.Run(context.Background(), sender)

	notifications := sender.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, contract.TaskID("APPLESTORE"), notifications[0].TaskID)
	assert.Equal(t, contract.TaskCommandID("WatchPickup_iPhone13Pro"), notifications[0].CommandID)
	assert.Equal(t, contract.NotifierID("telegram-admin"), notifications[0].NotifierID)
	assert.Equal(t, "픽업 가능", notifications[0].Title)
	assert.Equal(t, "iPhone 13 Pro: 1 found", notifications[0].Message)
	assert.False(t, notifications[0].ErrorOccurred)

	var saved pickupTestSnapshot
	require.NoError(t, storage.Load("APPLESTORE", "WatchPickup_iPhone13Pro", &saved))
	assert.Equal(t, []string{"MKGT3LL/A"}, saved.AvailableSKUs)
}

func TestBaseRun_EmptyMessageSkipsNotification(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		return ExecuteResult{
			NewSnapshot: &pickupTestSnapshot{AvailableSKUs: []string{"MKGT3LL/A"}},
		}, nil
	})

	base.Run(context.Background(), sender)

	// 알림은 전송되지 않지만 스냅샷은 저장됩니다.
	assert.Empty(t, sender.Notifications())

	var saved pickupTestSnapshot
	require.NoError(t, storage.Load("APPLESTORE", "WatchPickup_iPhone13Pro", &saved))
	assert.Equal(t, []string{"MKGT3LL/A"}, saved.AvailableSKUs)
}

func TestBaseRun_FirstRunPassesEmptySnapshot(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	executed := false

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, previousSnapshot any, _ bool) (ExecuteResult, error) {
		executed = true

		snapshot, ok := previousSnapshot.(*pickupTestSnapshot)
		require.True(t, ok)
		assert.Empty(t, snapshot.AvailableSKUs)

		return ExecuteResult{}, nil
	})

	base.Run(context.Background(), sender)

	assert.True(t, executed)
	assert.Empty(t, sender.Notifications())
}

func TestBaseRun_PreviousSnapshotPassedToExecute(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	require.NoError(t, storage.Save("APPLESTORE", "WatchPickup_iPhone13Pro", &pickupTestSnapshot{
		AvailableSKUs: []string{"MKGQ3LL/A"},
	}))

	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, previousSnapshot any, _ bool) (ExecuteResult, error) {
		snapshot, ok := previousSnapshot.(*pickupTestSnapshot)
		require.True(t, ok)
		assert.Equal(t, []string{"MKGQ3LL/A"}, snapshot.AvailableSKUs)

		return ExecuteResult{}, nil
	})

	base.Run(context.Background(), sender)
}

func TestBaseRun_ExecuteErrorSendsErrorNotification(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		return ExecuteResult{}, apperrors.New(apperrors.Unavailable, "서버에 연결할 수 없습니다")
	})

	base.Run(context.Background(), sender)

	notifications := sender.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].ErrorOccurred)
	assert.Contains(t, notifications[0].Message, msgTaskExecutionFailed)
	assert.Contains(t, notifications[0].Message, "서버에 연결할 수 없습니다")
}

func TestBaseRun_ExecuteNotSetSendsErrorNotification(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)

	base.Run(context.Background(), sender)

	notifications := sender.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].ErrorOccurred)
	assert.Contains(t, notifications[0].Message, msgExecuteFuncNotInitialized)
}

func TestBaseRun_StorageNotSetSendsErrorNotification(t *testing.T) {
	t.Parallel()

	sender := &mockNotificationSender{}

	base := newTestBase(nil)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		t.Fatal("execute가 호출되면 안 됩니다")
		return ExecuteResult{}, nil
	})

	base.Run(context.Background(), sender)

	notifications := sender.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].ErrorOccurred)
	assert.Contains(t, notifications[0].Message, msgStorageNotInitialized)
}

func TestBaseRun_PanicRecoveredAndNotified(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		panic("예기치 않은 오류")
	})

	require.NotPanics(t, func() {
		base.Run(context.Background(), sender)
	})

	notifications := sender.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].ErrorOccurred)
	assert.Contains(t, notifications[0].Message, "예기치 않은 오류")
}

func TestBaseRun_SaveFailureAfterNotifyWarnsDuplication(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	storage.saveErr = apperrors.New(apperrors.System, "디스크 쓰기 실패")

	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		return ExecuteResult{
			Message:     "iPhone 13 Pro: 1 found",
			NewSnapshot: &pickupTestSnapshot{AvailableSKUs: []string{"MKGT3LL/A"}},
		}, nil
	})

	base.Run(context.Background(), sender)

	// 성공 알림 이후 중복 알림 가능성을 경고하는 에러 알림이 추가로 전송됩니다.
	notifications := sender.Notifications()
	require.Len(t, notifications, 2)
	assert.False(t, notifications[0].ErrorOccurred)
	assert.True(t, notifications[1].ErrorOccurred)
	assert.Contains(t, notifications[1].Message, "상태 저장에 실패했습니다")
}

func TestBaseRun_LoadFailureFailsFast(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	storage.loadErr = apperrors.New(apperrors.System, "디스크 읽기 실패")

	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		t.Fatal("execute가 호출되면 안 됩니다")
		return ExecuteResult{}, nil
	})

	base.Run(context.Background(), sender)

	notifications := sender.Notifications()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].ErrorOccurred)
	assert.Contains(t, notifications[0].Message, "이전 작업결과데이터 로딩이 실패하였습니다")
}

func TestBaseRun_CanceledBeforeExecuteSkipsExecution(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(_ context.Context, _ any, _ bool) (ExecuteResult, error) {
		t.Fatal("execute가 호출되면 안 됩니다")
		return ExecuteResult{}, nil
	})

	base.Cancel()
	require.True(t, base.IsCanceled())

	base.Run(context.Background(), sender)

	assert.Empty(t, sender.Notifications())
}

func TestBaseRun_CancelDuringExecutePropagatesContext(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()
	sender := &mockNotificationSender{}

	base := newTestBase(storage)
	base.SetExecute(func(ctx context.Context, _ any, _ bool) (ExecuteResult, error) {
		base.Cancel()

		select {
		case <-ctx.Done():
		case <-time.After(3 * time.Second):
			t.Error("Cancel 호출 후 컨텍스트가 취소되지 않았습니다")
		}

		return ExecuteResult{Message: "전송되면 안 되는 메시지"}, nil
	})

	base.Run(context.Background(), sender)

	// 취소된 작업의 결과는 무시됩니다.
	assert.Empty(t, sender.Notifications())
}

func TestBaseAccessors(t *testing.T) {
	t.Parallel()

	base := newTestBase(newMemoryTaskResultStore())

	assert.Equal(t, contract.TaskID("APPLESTORE"), base.ID())
	assert.Equal(t, contract.TaskCommandID("WatchPickup_iPhone13Pro"), base.CommandID())
	assert.Equal(t, contract.TaskInstanceID("instance-1"), base.InstanceID())
	assert.Equal(t, contract.NotifierID("telegram-admin"), base.NotifierID())
	assert.Equal(t, contract.TaskRunByScheduler, base.RunBy())

	base.SetRunBy(contract.TaskRunByUser)
	assert.Equal(t, contract.TaskRunByUser, base.RunBy())

	// 실행 전에는 경과 시간이 0입니다.
	assert.Equal(t, time.Duration(0), base.Elapsed())
}

func TestNewBaseFromParams(t *testing.T) {
	t.Parallel()

	storage := newMemoryTaskResultStore()

	base := NewBaseFromParams(NewTaskParams{
		Request: &contract.TaskSubmitRequest{
			TaskID:     "APPLESTORE",
			CommandID:  "WatchPickup_iPhone13Pro",
			NotifierID: "telegram-admin",
			RunBy:      contract.TaskRunByUser,
		},
		InstanceID: "instance-2",
		Storage:    storage,
		NewSnapshot: func() any {
			return &pickupTestSnapshot{}
		},
	})

	assert.Equal(t, contract.TaskID("APPLESTORE"), base.ID())
	assert.Equal(t, contract.TaskInstanceID("instance-2"), base.InstanceID())
	assert.Equal(t, contract.TaskRunByUser, base.RunBy())

	// Fetcher가 주입되지 않으면 Scraper도 생성되지 않습니다.
	assert.Nil(t, base.Scraper())
}
