package provider

import (
	"github.com/darkkaiser/applestore-notifier/internal/config"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/pkg/maputil"
)

// Validator 설정 데이터의 유효성을 스스로 검증하는 인터페이스입니다.
type Validator interface {
	Validate() error
}

// decodeAndValidate 설정 데이터를 T 타입으로 디코딩하고, Validator 인터페이스를
// 구현한 경우 유효성 검증까지 수행합니다.
func decodeAndValidate[T any](data map[string]any) (*T, error) {
	settings, err := maputil.Decode[T](data)
	if err != nil {
		return nil, err
	}

	// T가 값 리시버와 포인터 리시버 어느 쪽으로 Validator를 구현했는지 알 수 없으므로 양쪽 모두 확인합니다.
	if v, ok := any(settings).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	} else if v, ok := any(*settings).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// FindTaskSettings AppConfig에서 특정 Task에 해당하는 설정을 찾아 디코딩하고 검증합니다.
// Validator 인터페이스를 구현한 경우 자동으로 유효성 검사(Validate)를 수행합니다.
func FindTaskSettings[T any](appConfig *config.AppConfig, taskID contract.TaskID) (*T, error) {
	for _, t := range appConfig.Tasks {
		if taskID == contract.TaskID(t.ID) {
			settings, err := decodeAndValidate[T](t.Data)
			if err != nil {
				return nil, newErrTaskSettingsProcessingFailed(err, taskID)
			}

			return settings, nil
		}
	}

	return nil, ErrTaskSettingsNotFound
}

// FindCommandSettings AppConfig에서 특정 Task와 Command에 해당하는 설정을 찾아 디코딩하고 검증합니다.
// Validator 인터페이스를 구현한 경우 자동으로 유효성 검사(Validate)를 수행합니다.
func FindCommandSettings[T any](appConfig *config.AppConfig, taskID contract.TaskID, commandID contract.TaskCommandID) (*T, error) {
	for _, t := range appConfig.Tasks {
		if taskID != contract.TaskID(t.ID) {
			continue
		}

		for _, c := range t.Commands {
			if commandID == contract.TaskCommandID(c.ID) {
				settings, err := decodeAndValidate[T](c.Data)
				if err != nil {
					return nil, newErrCommandSettingsProcessingFailed(err, taskID, commandID)
				}

				return settings, nil
			}
		}

		break
	}

	return nil, ErrCommandSettingsNotFound
}
