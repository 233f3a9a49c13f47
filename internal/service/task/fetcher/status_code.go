package fetcher

import (
	"io"
	"net/http"
	"slices"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

// maxBodySnippetBytes 에러 발생 시 디버깅용으로 보관할 응답 본문의 최대 크기 (4KB)
const maxBodySnippetBytes = 4096

// StatusCodeFetcher HTTP 응답 상태 코드를 검증하는 미들웨어입니다.
//
// 허용되지 않은 상태 코드를 수신하면 응답 본문 일부를 포함한 HTTPStatusError를 반환합니다.
// 5xx 서버 에러와 429(Too Many Requests)는 일시적 오류(Unavailable)로 분류되어
// 바깥쪽 RetryFetcher의 재시도 대상이 됩니다.
type StatusCodeFetcher struct {
	delegate Fetcher

	// allowedStatusCodes 성공으로 간주할 상태 코드 목록 (빈 목록이면 200 OK만 허용)
	allowedStatusCodes []int
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 200 OK만 허용하는 StatusCodeFetcher를 생성합니다.
func NewStatusCodeFetcher(delegate Fetcher) *StatusCodeFetcher {
	return &StatusCodeFetcher{delegate: delegate}
}

// NewStatusCodeFetcherWithOptions 지정된 상태 코드들을 허용하는 StatusCodeFetcher를 생성합니다.
func NewStatusCodeFetcherWithOptions(delegate Fetcher, allowedStatusCodes ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{
		delegate:           delegate,
		allowedStatusCodes: allowedStatusCodes,
	}
}

func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return resp, err
	}

	if f.isAllowed(resp.StatusCode) {
		return resp, nil
	}

	// 디버깅 편의를 위해 응답 본문의 일부만 읽어서 에러 객체에 포함시킵니다.
	var bodySnippet string
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		if len(bodyBytes) > 0 {
			bodySnippet = string(bodyBytes)
		}

		// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
		drainAndCloseBody(resp.Body)
	}

	statusErr := &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         req.URL.String(),
		Header:      resp.Header.Clone(),
		BodySnippet: bodySnippet,
	}

	// 5xx (Server Error) or 429 (Too Many Requests) -> Unavailable (재시도 대상)
	errType := apperrors.ExecutionFailed
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestTimeout {
		errType = apperrors.Unavailable
	}

	return nil, apperrors.Wrap(statusErr, errType, statusErr.Error())
}

func (f *StatusCodeFetcher) isAllowed(statusCode int) bool {
	if len(f.allowedStatusCodes) == 0 {
		return statusCode == http.StatusOK
	}
	return slices.Contains(f.allowedStatusCodes, statusCode)
}

func (f *StatusCodeFetcher) Close() error {
	return f.delegate.Close()
}
