package fetcher

import (
	"net/http"
	"time"
)

const (
	// defaultTimeout HTTP 요청 전체(요청 전송부터 응답 본문 수신까지)에 대한 기본 타임아웃입니다.
	defaultTimeout = 30 * time.Second

	// defaultUserAgent User-Agent가 설정되지 않은 요청에 자동으로 추가되는 기본값입니다.
	// 일반 브라우저로 위장하여 단순한 봇 차단을 우회합니다.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// HTTPFetcher 실제 네트워크 I/O를 담당하는 체인 최내곽의 HTTP 클라이언트 구현체입니다.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// Option HTTPFetcher의 동작을 제어하는 설정 함수입니다.
type Option func(*HTTPFetcher)

// WithTimeout HTTP 요청 전체에 대한 타임아웃을 설정합니다.
// 0 이하의 값은 기본값(30초)으로 보정됩니다.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTPFetcher) {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		h.client.Timeout = timeout
	}
}

// WithUserAgent User-Agent가 없는 요청에 추가할 기본 User-Agent를 설정합니다.
func WithUserAgent(userAgent string) Option {
	return func(h *HTTPFetcher) {
		if userAgent != "" {
			h.userAgent = userAgent
		}
	}
}

// NewHTTPFetcher 기본 타임아웃(30초) 설정이 포함된 새로운 HTTPFetcher 인스턴스를 생성합니다.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	h := &HTTPFetcher{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Do HTTP 요청을 실행합니다.
// 요청 헤더에 User-Agent가 없는 경우 기본값을 자동으로 추가합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	return h.client.Do(req)
}

// Close 유휴 상태의 커넥션을 모두 닫고 리소스를 정리합니다.
func (h *HTTPFetcher) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
