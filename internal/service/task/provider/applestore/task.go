package applestore

import (
	"context"
	"strings"

	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/task/provider"
)

// component 로깅용 컴포넌트 이름
const component = "task.applestore"

const (
	// TaskID Apple Store(https://www.apple.com/) 매장 재고 조회와 연동되는 Task의 고유 식별자입니다.
	TaskID contract.TaskID = "APPLESTORE"

	// watchPickupCommandPrefix 매장 픽업 감시(WatchPickup) 계열 Command를 식별하기 위한
	// 와일드카드 접두어입니다.
	//
	// 설정 파일에서 접두어 뒤에 자유로운 식별자를 붙여 감시 대상별로 독립적인
	// Command를 정의할 수 있습니다.
	//   - "WatchPickup_iPhone13Pro" → 아이폰 13 프로 픽업 감시
	//   - "WatchPickup_iPadMini6"   → 아이패드 미니 6 픽업 감시
	watchPickupCommandPrefix = "WatchPickup_"

	// watchPriceCommandPrefix 상품 가격 감시(WatchPrice) 계열 Command를 식별하기 위한
	// 와일드카드 접두어입니다.
	watchPriceCommandPrefix = "WatchPrice_"
)

const (
	// WatchPickupAnyCommand 특정 매장의 모델별 픽업 가능 여부를 감시하는 Command의 식별자입니다.
	WatchPickupAnyCommand = contract.TaskCommandID(watchPickupCommandPrefix + "*")

	// WatchPriceAnyCommand 상품 페이지의 표시 가격 변동을 감시하는 Command의 식별자입니다.
	WatchPriceAnyCommand = contract.TaskCommandID(watchPriceCommandPrefix + "*")
)

func init() {
	provider.MustRegister(TaskID, &provider.TaskConfig{
		Commands: []*provider.TaskCommandConfig{
			{
				ID: WatchPickupAnyCommand,

				// 동일한 매장/모델 조합에 대한 중복 폴링을 방지하기 위해 동시 실행을 허용하지 않습니다.
				AllowMultiple: false,

				NewSnapshot: func() any { return &watchPickupSnapshot{} },
			},
			{
				ID: WatchPriceAnyCommand,

				AllowMultiple: false,

				NewSnapshot: func() any { return &watchPriceSnapshot{} },
			},
		},
		NewTask: newTask,
	})
}

func newTask(params provider.NewTaskParams) (provider.Task, error) {
	if params.Request.TaskID != TaskID {
		return nil, provider.NewErrTaskNotSupported(params.Request.TaskID)
	}

	appleStoreTask := &task{
		Base: provider.NewBaseFromParams(params),

		appConfig: params.AppConfig,
	}

	// Command에 따른 실행 함수를 미리 바인딩합니다.
	commandID := string(params.Request.CommandID)
	switch {
	case strings.HasPrefix(commandID, watchPickupCommandPrefix):
		commandSettings, err := provider.FindCommandSettings[watchPickupSettings](params.AppConfig, params.Request.TaskID, params.Request.CommandID)
		if err != nil {
			return nil, err
		}

		appleStoreTask.SetExecute(func(ctx context.Context, previousSnapshot any, supportsHTML bool) (provider.ExecuteResult, error) {
			prevSnapshot, ok := previousSnapshot.(*watchPickupSnapshot)
			if !ok {
				return provider.ExecuteResult{}, provider.NewErrTypeAssertionFailed(&watchPickupSnapshot{}, previousSnapshot)
			}

			return appleStoreTask.executeWatchPickup(ctx, commandSettings, prevSnapshot, supportsHTML)
		})

	case strings.HasPrefix(commandID, watchPriceCommandPrefix):
		commandSettings, err := provider.FindCommandSettings[watchPriceSettings](params.AppConfig, params.Request.TaskID, params.Request.CommandID)
		if err != nil {
			return nil, err
		}

		appleStoreTask.SetExecute(func(ctx context.Context, previousSnapshot any, supportsHTML bool) (provider.ExecuteResult, error) {
			prevSnapshot, ok := previousSnapshot.(*watchPriceSnapshot)
			if !ok {
				return provider.ExecuteResult{}, provider.NewErrTypeAssertionFailed(&watchPriceSnapshot{}, previousSnapshot)
			}

			return appleStoreTask.executeWatchPrice(ctx, commandSettings, prevSnapshot, supportsHTML)
		})

	default:
		return nil, provider.NewErrCommandNotSupported(params.Request.CommandID, []contract.TaskCommandID{
			WatchPickupAnyCommand,
			WatchPriceAnyCommand,
		})
	}

	return appleStoreTask, nil
}

type task struct {
	*provider.Base

	appConfig *config.AppConfig
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ provider.Task = (*task)(nil)
