package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain 테스트 종료 시 고루틴 누수 여부를 검증합니다.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestNotification(message string) contract.Notification {
	return contract.Notification{
		TaskID:  "APPLESTORE",
		Title:   "테스트 알림",
		Message: message,
	}
}

func TestBaseSend(t *testing.T) {
	t.Run("정상 등록", func(t *testing.T) {
		b := NewBase("N1", true, 2, 100*time.Millisecond)

		require.NoError(t, b.Send(context.Background(), newTestNotification("m1")))

		req := <-b.NotificationC()
		assert.Equal(t, "m1", req.Notification.Message)
	})

	t.Run("큐가 가득 차면 타임아웃 후 ErrQueueFull", func(t *testing.T) {
		b := NewBase("N1", true, 1, 50*time.Millisecond)

		require.NoError(t, b.Send(context.Background(), newTestNotification("m1")))

		start := time.Now()
		err := b.Send(context.Background(), newTestNotification("m2"))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("nil Context는 Background로 대체됨", func(t *testing.T) {
		b := NewBase("N1", true, 1, 100*time.Millisecond)

		//nolint:staticcheck // nil Context 허용 동작 검증
		require.NoError(t, b.Send(nil, newTestNotification("m1")))
	})

	t.Run("취소된 Context는 즉시 에러 반환", func(t *testing.T) {
		b := NewBase("N1", true, 1, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := b.Send(ctx, newTestNotification("m1"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Close 이후에는 ErrClosed 반환", func(t *testing.T) {
		b := NewBase("N1", true, 1, 100*time.Millisecond)
		b.Close()

		err := b.Send(context.Background(), newTestNotification("m1"))
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("큐 대기 중 Close되면 ErrClosed 반환", func(t *testing.T) {
		b := NewBase("N1", true, 1, 3*time.Second)

		require.NoError(t, b.Send(context.Background(), newTestNotification("m1")))

		errC := make(chan error, 1)
		go func() {
			errC <- b.Send(context.Background(), newTestNotification("m2"))
		}()

		time.Sleep(20 * time.Millisecond)
		b.Close()

		select {
		case err := <-errC:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("Send가 제한 시간 내에 반환되지 않았습니다")
		}
	})
}

func TestBaseTrySend(t *testing.T) {
	t.Run("큐가 가득 차면 즉시 ErrQueueFull", func(t *testing.T) {
		b := NewBase("N1", true, 1, 5*time.Second)

		require.NoError(t, b.TrySend(context.Background(), newTestNotification("m1")))

		start := time.Now()
		err := b.TrySend(context.Background(), newTestNotification("m2"))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestBaseClose(t *testing.T) {
	b := NewBase("N1", false, 1, 100*time.Millisecond)

	select {
	case <-b.Done():
		t.Fatal("Close 전에는 Done 채널이 닫히지 않아야 합니다")
	default:
	}

	b.Close()

	select {
	case <-b.Done():
	default:
		t.Fatal("Close 후에는 Done 채널이 닫혀야 합니다")
	}

	// 중복 Close 호출은 안전해야 합니다.
	assert.NotPanics(t, b.Close)
}

func TestBaseSupportsHTML(t *testing.T) {
	assert.True(t, NewBase("N1", true, 1, time.Second).SupportsHTML())
	assert.False(t, NewBase("N1", false, 1, time.Second).SupportsHTML())
	assert.Equal(t, contract.NotifierID("N1"), NewBase("N1", false, 1, time.Second).ID())
}

func TestBaseWaitForPendingSends(t *testing.T) {
	b := NewBase("N1", true, 1, 2*time.Second)

	require.NoError(t, b.Send(context.Background(), newTestNotification("m1")))

	// 큐가 가득 찬 상태에서 전송을 시도하는 고루틴을 만들어 둡니다.
	sendDone := make(chan struct{})
	go func() {
		defer close(sendDone)
		_ = b.Send(context.Background(), newTestNotification("m2"))
	}()

	time.Sleep(20 * time.Millisecond)
	b.Close()

	// 전송 시도 중인 고루틴이 정리될 때까지 대기합니다.
	waitDone := make(chan struct{})
	go func() {
		b.WaitForPendingSends()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("WaitForPendingSends가 제한 시간 내에 반환되지 않았습니다")
	}

	<-sendDone
}
