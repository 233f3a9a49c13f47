package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
)

func newTestTaskConfig(commandIDs ...contract.TaskCommandID) *TaskConfig {
	commands := make([]*TaskCommandConfig, len(commandIDs))
	for i, id := range commandIDs {
		commands[i] = &TaskCommandConfig{
			ID: id,
			NewSnapshot: func() any {
				return &pickupTestSnapshot{}
			},
		}
	}

	return &TaskConfig{
		Commands: commands,
		NewTask: func(NewTaskParams) (Task, error) {
			return nil, nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		taskID  contract.TaskID
		cfg     *TaskConfig
		wantErr error
	}{
		{
			name:   "유효한 설정 등록 성공",
			taskID: "APPLESTORE",
			cfg:    newTestTaskConfig("WatchPickup_iPhone13Pro"),
		},
		{
			name:    "빈 TaskID",
			taskID:  "",
			cfg:     newTestTaskConfig("WatchPickup_iPhone13Pro"),
			wantErr: nil, // apperrors.InvalidInput 타입 확인은 아래에서 수행
		},
		{
			name:    "nil 설정",
			taskID:  "APPLESTORE",
			cfg:     nil,
			wantErr: ErrTaskConfigNil,
		},
		{
			name:    "Command 없음",
			taskID:  "APPLESTORE",
			cfg:     &TaskConfig{NewTask: func(NewTaskParams) (Task, error) { return nil, nil }},
			wantErr: ErrCommandConfigsEmpty,
		},
		{
			name:    "NewTask 팩토리 누락",
			taskID:  "APPLESTORE",
			cfg:     &TaskConfig{Commands: []*TaskCommandConfig{{ID: "WatchPickup_iPhone13Pro"}}},
			wantErr: ErrNewTaskNil,
		},
		{
			name:   "nil Command 포함",
			taskID: "APPLESTORE",
			cfg: &TaskConfig{
				Commands: []*TaskCommandConfig{nil},
				NewTask:  func(NewTaskParams) (Task, error) { return nil, nil },
			},
			wantErr: ErrCommandConfigNil,
		},
		{
			name:    "중복된 CommandID",
			taskID:  "APPLESTORE",
			cfg:     newTestTaskConfig("WatchPickup_iPhone13Pro", "WatchPickup_iPhone13Pro"),
			wantErr: ErrDuplicateCommandID,
		},
		{
			name:   "NewSnapshot 팩토리 누락",
			taskID: "APPLESTORE",
			cfg: &TaskConfig{
				Commands: []*TaskCommandConfig{{ID: "WatchPickup_iPhone13Pro"}},
				NewTask:  func(NewTaskParams) (Task, error) { return nil, nil },
			},
			wantErr: ErrNewSnapshotNil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			registry := newRegistry()

			err := registry.Register(tc.taskID, tc.cfg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			if tc.taskID.IsEmpty() {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegistryRegister_DuplicateTaskID(t *testing.T) {
	t.Parallel()

	registry := newRegistry()

	require.NoError(t, registry.Register("APPLESTORE", newTestTaskConfig("WatchPickup_iPhone13Pro")))

	err := registry.Register("APPLESTORE", newTestTaskConfig("WatchPickup_iPhone13Pro"))
	require.ErrorIs(t, err, ErrDuplicateTaskID)
}

func TestRegistryRegister_SnapshotFactoryReturningNil(t *testing.T) {
	t.Parallel()

	registry := newRegistry()

	cfg := &TaskConfig{
		Commands: []*TaskCommandConfig{
			{
				ID:          "WatchPickup_iPhone13Pro",
				NewSnapshot: func() any { return nil },
			},
		},
		NewTask: func(NewTaskParams) (Task, error) { return nil, nil },
	}

	err := registry.Register("APPLESTORE", cfg)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Internal))
}

func TestRegistryMustRegister_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	registry := newRegistry()

	require.Panics(t, func() {
		registry.MustRegister("APPLESTORE", nil)
	})
}

func TestRegistryFindConfig(t *testing.T) {
	t.Parallel()

	registry := newRegistry()
	require.NoError(t, registry.Register("APPLESTORE", newTestTaskConfig(
		"WatchPickup_iPhone13Pro",
		"WatchPickup_*",
	)))

	t.Run("정확한 매칭 우선", func(t *testing.T) {
		t.Parallel()

		resolved, err := registry.findConfig("APPLESTORE", "WatchPickup_iPhone13Pro")
		require.NoError(t, err)
		assert.Equal(t, contract.TaskCommandID("WatchPickup_iPhone13Pro"), resolved.Command.ID)
	})

	t.Run("와일드카드 매칭", func(t *testing.T) {
		t.Parallel()

		resolved, err := registry.findConfig("APPLESTORE", "WatchPickup_iPadMini6")
		require.NoError(t, err)
		assert.Equal(t, contract.TaskCommandID("WatchPickup_*"), resolved.Command.ID)
	})

	t.Run("지원하지 않는 Task", func(t *testing.T) {
		t.Parallel()

		_, err := registry.findConfig("UNKNOWN", "WatchPickup_iPhone13Pro")
		require.ErrorIs(t, err, ErrTaskNotSupported)
	})

	t.Run("지원하지 않는 Command", func(t *testing.T) {
		t.Parallel()

		_, err := registry.findConfig("APPLESTORE", "WatchPrice_iPhone13Pro")
		require.ErrorIs(t, err, ErrCommandNotSupported)
		// 에러 메시지에 지원 가능한 Command 목록이 포함됩니다.
		assert.Contains(t, err.Error(), "WatchPickup_iPhone13Pro")
	})
}

func TestRegistryFindConfig_ReturnsClone(t *testing.T) {
	t.Parallel()

	registry := newRegistry()
	require.NoError(t, registry.Register("APPLESTORE", newTestTaskConfig("WatchPickup_iPhone13Pro")))

	resolved, err := registry.findConfig("APPLESTORE", "WatchPickup_iPhone13Pro")
	require.NoError(t, err)

	// 반환된 복사본을 수정하더라도 Registry 내부 상태에 영향을 주지 않아야 합니다.
	resolved.Command.ID = "Tampered"
	resolved.Task.Commands[0].AllowMultiple = true

	refetched, err := registry.findConfig("APPLESTORE", "WatchPickup_iPhone13Pro")
	require.NoError(t, err)
	assert.Equal(t, contract.TaskCommandID("WatchPickup_iPhone13Pro"), refetched.Command.ID)
	assert.False(t, refetched.Command.AllowMultiple)
}

func TestRegistryRegister_ClonesInputConfig(t *testing.T) {
	t.Parallel()

	registry := newRegistry()

	cfg := newTestTaskConfig("WatchPickup_iPhone13Pro")
	require.NoError(t, registry.Register("APPLESTORE", cfg))

	// 등록 이후 원본을 수정하더라도 Registry 내부 상태에 영향을 주지 않아야 합니다.
	cfg.Commands[0].ID = "Tampered"

	resolved, err := registry.findConfig("APPLESTORE", "WatchPickup_iPhone13Pro")
	require.NoError(t, err)
	assert.Equal(t, contract.TaskCommandID("WatchPickup_iPhone13Pro"), resolved.Command.ID)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := newRegistry()
	require.NoError(t, registry.Register("APPLESTORE", newTestTaskConfig("WatchPickup_iPhone13Pro")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				_, err := registry.findConfig("APPLESTORE", "WatchPickup_iPhone13Pro")
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	// 조회가 진행되는 동안 등록을 수행하여 데이터 경합이 없는지 확인합니다. (-race 플래그 전제)
	for i := 0; i < 100; i++ {
		registry.Register(contract.TaskID("TASK"+string(rune('A'+i%26))), newTestTaskConfig("WatchPickup_*"))
	}

	cancel()
	for i := 0; i < 10; i++ {
		<-done
	}
}
