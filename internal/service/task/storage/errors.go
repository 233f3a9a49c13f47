package storage

import (
	"fmt"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

var (
	// ErrPathTraversalDetected 파일 경로 생성 시 Path Traversal(경로 이탈) 시도가 감지되었을 때 반환하는 에러입니다.
	ErrPathTraversalDetected = apperrors.New(apperrors.Internal, "보안 정책 위반: 허용되지 않은 경로 접근 시도로 인해 요청이 차단되었습니다")

	// ErrLoadRequiresPointer Load 함수 호출 시 대상 객체가 올바른 포인터 타입이 아닐 때 반환하는 에러입니다.
	ErrLoadRequiresPointer = apperrors.New(apperrors.Internal, "내부 시스템 오류: 데이터 로드 대상 객체가 올바른 포인터 타입이 아닙니다")
)

// NewErrStoreInitFailed 저장소 초기화(절대 경로 변환, 디렉토리 생성)에 실패했을 때 반환하는 에러를 생성합니다.
func NewErrStoreInitFailed(err error, dir string) error {
	return apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("저장소 초기화 실패: 디렉토리 접근 불가 (%s)", dir))
}

// NewErrSnapshotMarshalFailed 스냅샷 데이터를 JSON으로 직렬화하는 데 실패했을 때 반환하는 에러를 생성합니다.
func NewErrSnapshotMarshalFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "데이터 처리 실패: 스냅샷 직렬화(JSON Marshal) 중 오류가 발생했습니다")
}

// NewErrSnapshotUnmarshalFailed 저장된 스냅샷을 역직렬화하는 데 실패했을 때 반환하는 에러를 생성합니다.
func NewErrSnapshotUnmarshalFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "데이터 처리 실패: 스냅샷 역직렬화(JSON Unmarshal) 중 오류가 발생했습니다")
}

// NewErrSnapshotReadFailed 스냅샷 파일을 읽는 데 실패했을 때 반환하는 에러를 생성합니다.
func NewErrSnapshotReadFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "작업 결과 조회 실패: 저장된 스냅샷 파일 읽기 처리 중 오류가 발생했습니다")
}

// NewErrSnapshotWriteFailed 스냅샷 파일 저장(임시 파일 생성, 쓰기, 동기화, 이름 변경)에 실패했을 때 반환하는 에러를 생성합니다.
func NewErrSnapshotWriteFailed(err error, step string) error {
	return apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("작업 결과 저장 실패: %s 중 오류가 발생했습니다", step))
}

// NewErrPathResolutionFailed 파일 경로 해석(절대 경로/상대 경로 변환 등)에 실패했을 때 반환하는 에러를 생성합니다.
func NewErrPathResolutionFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "보안 검증 실패: 파일 경로를 해석할 수 없습니다")
}
