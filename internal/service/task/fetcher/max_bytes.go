package fetcher

import (
	"io"
	"net/http"
)

const (
	// defaultMaxBytes 응답 본문의 기본 최대 허용 크기 (10MB)
	defaultMaxBytes int64 = 10 * 1024 * 1024

	// NoLimit 응답 본문의 크기 제한을 적용하지 않음을 나타내는 값입니다.
	NoLimit int64 = -1
)

// MaxBytesFetcher 응답 본문의 크기를 제한하여 비정상적으로 큰 응답으로 인한
// 메모리 고갈을 방지하는 미들웨어입니다.
//
// 응답 객체의 Body를 크기 감시 리더로 감싸서 반환하며, 읽기 도중 제한을 초과하면
// ErrBodyTooLarge를 반환합니다.
type MaxBytesFetcher struct {
	delegate Fetcher
	maxBytes int64
}

var _ Fetcher = (*MaxBytesFetcher)(nil)

// NewMaxBytesFetcher 새로운 MaxBytesFetcher 인스턴스를 생성합니다.
// maxBytes가 0 이하(NoLimit 제외)이면 기본값(10MB)으로 보정됩니다.
func NewMaxBytesFetcher(delegate Fetcher, maxBytes int64) *MaxBytesFetcher {
	return &MaxBytesFetcher{
		delegate: delegate,
		maxBytes: normalizeByteLimit(maxBytes),
	}
}

func (f *MaxBytesFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil || resp == nil {
		return resp, err
	}

	if f.maxBytes == NoLimit || resp.Body == nil {
		return resp, nil
	}

	// Content-Length 헤더가 이미 제한을 초과하면 본문을 읽지 않고 즉시 실패 처리
	if resp.ContentLength > f.maxBytes {
		drainAndCloseBody(resp.Body)
		return nil, newErrBodyTooLarge(req.URL.String(), f.maxBytes)
	}

	resp.Body = &limitedReadCloser{
		body:      resp.Body,
		remaining: f.maxBytes,
		url:       req.URL.String(),
		maxBytes:  f.maxBytes,
	}

	return resp, nil
}

func (f *MaxBytesFetcher) Close() error {
	return f.delegate.Close()
}

func normalizeByteLimit(maxBytes int64) int64 {
	if maxBytes == NoLimit {
		return NoLimit
	}
	if maxBytes <= 0 {
		return defaultMaxBytes
	}
	return maxBytes
}

// limitedReadCloser 읽은 바이트 수를 추적하며 제한 초과 시 에러를 반환하는 Body 래퍼입니다.
type limitedReadCloser struct {
	body      io.ReadCloser
	remaining int64
	exceeded  bool
	url       string
	maxBytes  int64
}

func (r *limitedReadCloser) Read(p []byte) (int, error) {
	if r.exceeded {
		return 0, newErrBodyTooLarge(r.url, r.maxBytes)
	}

	if int64(len(p)) > r.remaining+1 {
		// 제한 초과 여부를 판정하기 위해 제한값보다 1바이트 더 읽음
		p = p[:r.remaining+1]
	}

	n, err := r.body.Read(p)
	if int64(n) > r.remaining {
		allowed := r.remaining
		r.remaining = 0
		r.exceeded = true
		return int(allowed), newErrBodyTooLarge(r.url, r.maxBytes)
	}

	r.remaining -= int64(n)
	return n, err
}

func (r *limitedReadCloser) Close() error {
	return r.body.Close()
}
