package fetcher

import (
	"fmt"
	"net/http"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 설정된 최대 재시도 횟수를 모두 소진하고도 요청이 실패했을 때 반환됩니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")

	// ErrBodyTooLarge 응답 본문이 설정된 최대 허용 크기를 초과했을 때 반환됩니다.
	ErrBodyTooLarge = apperrors.New(apperrors.ExecutionFailed, "응답 본문이 최대 허용 크기를 초과했습니다")
)

func newErrMaxRetriesExceeded(cause error) error {
	if cause == nil {
		return ErrMaxRetriesExceeded
	}
	return apperrors.Wrap(cause, apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")
}

func newErrRetryAfterExceeded(retryAfter, maxRetryDelay string) error {
	return apperrors.New(apperrors.Unavailable, fmt.Sprintf("서버가 요구한 재시도 대기 시간(%s)이 최대 재시도 대기 시간(%s)을 초과하여 재시도를 중단합니다", retryAfter, maxRetryDelay))
}

func newErrBodyTooLarge(url string, maxBytes int64) error {
	return apperrors.Wrap(ErrBodyTooLarge, apperrors.ExecutionFailed, fmt.Sprintf("응답 본문이 최대 허용 크기(%d바이트)를 초과했습니다 (URL: %s)", maxBytes, url))
}

// HTTPStatusError 허용되지 않은 HTTP 응답 상태 코드를 수신했을 때 반환되는 에러입니다.
// 디버깅 편의를 위해 상태 코드와 응답 본문 일부를 함께 담습니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string
	Cause       error
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP 요청이 실패했습니다. 상태 코드: %s (URL: %s)", e.Status, e.URL)
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}
