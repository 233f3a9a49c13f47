package contract

import (
	"strings"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

// TaskSubmitRequest 작업 실행 요청을 캡슐화한 데이터 전송 객체입니다.
//
// API 서비스 또는 스케줄러로부터 작업 실행 명령을 받을 때 사용되며,
// 실행할 작업의 종류, 세부 명령어, 알림 옵션, 실행 주체를 포함합니다.
type TaskSubmitRequest struct {
	// TaskID 실행하고자 하는 작업의 종류를 식별하는 고유 ID입니다. (Required)
	// 예: "APPLESTORE"
	TaskID TaskID

	// CommandID 해당 작업 내에서 수행할 구체적인 명령어 ID입니다. (Required)
	// 예: "WatchPickup_iPhone13Pro"
	CommandID TaskCommandID

	// NotifierID 알림을 전송할 대상 채널의 식별자입니다. (Optional)
	// 비어있으면 해당 Task 설정에 정의된 기본 Notifier가 사용됩니다.
	NotifierID NotifierID

	// NotifyOnStart 작업 실행 시작 시점에 즉시 알림을 발송할지 여부입니다. (Optional)
	// 장기 실행 작업에서 즉각적인 피드백이 필요할 때 사용합니다.
	NotifyOnStart bool

	// RunBy 이 작업을 요청한 실행 주체입니다. (Required)
	// 로깅과 알림 메시지 포맷팅 시 "누가 실행했는지"를 구별하는 데 사용됩니다.
	RunBy TaskRunBy
}

func (r *TaskSubmitRequest) Validate() error {
	if err := r.TaskID.Validate(); err != nil {
		return err
	}
	if err := r.CommandID.Validate(); err != nil {
		return err
	}
	if len(r.NotifierID) > 0 && strings.TrimSpace(string(r.NotifierID)) == "" {
		return apperrors.New(apperrors.InvalidInput, "NotifierID 유효성 검증 실패: 공백 이외의 유효한 문자열을 포함해야 합니다")
	}
	if err := r.RunBy.Validate(); err != nil {
		return err
	}
	return nil
}
