package contract

import (
	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

// ErrTaskResultNotFound 저장된 작업 결과를 찾을 수 없을 때 반환하는 에러입니다.
var ErrTaskResultNotFound = apperrors.New(apperrors.NotFound, "조회 실패: 저장된 작업 결과 없음")

// TaskResultStore 작업 결과(스냅샷)를 저장하고 불러오는 저장소 인터페이스입니다.
//
// 작업이 실행될 때마다 생성되는 결과 데이터를 보존하여,
// 다음 실행 시 이전 상태와 비교해 변경 사항을 감지할 수 있도록 합니다.
type TaskResultStore interface {
	// Save 작업 결과를 저장합니다.
	// 동일한 taskID/commandID 조합으로 호출하면 기존 데이터를 덮어씁니다.
	Save(taskID TaskID, commandID TaskCommandID, v any) error

	// Load 저장된 작업 결과를 불러옵니다.
	// 저장된 데이터가 없는 경우 ErrTaskResultNotFound를 반환하며,
	// 호출자는 이를 확인하여 최초 실행 여부를 판단해야 합니다.
	Load(taskID TaskID, commandID TaskCommandID, v any) error
}
