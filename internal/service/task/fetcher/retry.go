package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

const (
	// minAllowedRetries 허용 가능한 최소 재시도 횟수입니다. (0: 재시도 안 함)
	minAllowedRetries = 0

	// maxAllowedRetries 허용 가능한 최대 재시도 횟수입니다.
	maxAllowedRetries = 10

	// defaultMaxRetryDelay 재시도 대기 시간의 최대값을 지정하지 않았을 때 사용되는 기본값(30초)입니다.
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher HTTP 요청 실패 시 자동으로 재시도를 수행하는 미들웨어입니다.
//
// 재시도 전략:
//   - 지수 백오프(Exponential Backoff): 재시도 간격을 지수적으로 증가시켜 서버 부하를 분산
//   - Full Jitter: 무작위 지연을 추가하여 동시 다발적인 재시도로 인한 Thundering Herd 문제 방지
//   - Retry-After 헤더 지원: 서버가 명시한 재시도 시간을 우선적으로 준수
//   - 컨텍스트 취소 감지: 사용자 요청 취소 시 즉시 재시도 중단
//
// 비멱등 메서드(POST, PATCH)는 데이터 중복 생성/수정 위험이 있으므로 재시도가 비활성화됩니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
// 재시도 횟수와 대기 시간은 허용 범위를 벗어나면 안전한 값으로 보정됩니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	maxRetries = normalizeMaxRetries(maxRetries)
	minRetryDelay, maxRetryDelay = normalizeRetryDelays(minRetryDelay, maxRetryDelay)

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Do HTTP 요청을 수행하며, 실패 시 설정된 정책에 따라 자동으로 재시도합니다.
//
// 재시도 대상:
//   - 네트워크 오류 (타임아웃, 연결 실패 등)
//   - 일시적 서버 오류 (apperrors.Unavailable: 5xx, 429 등)
//
// 재시도 제외:
//   - 컨텍스트 취소 (context.Canceled) 및 전체 제한 시간 초과
//   - SSL/TLS 인증서 오류
//   - 비즈니스 로직 에러 (ExecutionFailed, InvalidInput, Forbidden, NotFound)
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드(POST, PATCH)는 재시도 시 데이터 중복 생성/수정 위험이 있으므로 재시도 비활성화!!
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	// 재시도 시 요청 객체의 Body를 다시 읽어야 하므로, GetBody가 없으면 재시도를 비활성화합니다.
	if req.Body != nil && req.GetBody == nil && effectiveMaxRetries > 0 {
		applog.WithComponent(component).WithFields(applog.Fields{
			"url":    req.URL.String(),
			"method": req.Method,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		effectiveMaxRetries = 0
	}

	var lastErr error

	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			delay, err := f.nextDelay(i, lastErr)
			if err != nil {
				return nil, err
			}

			applog.WithComponent(component).WithContext(req.Context()).WithFields(applog.Fields{
				"url":               req.URL.String(),
				"retry":             i,
				"max_retries":       effectiveMaxRetries,
				"remaining_retries": effectiveMaxRetries - i,
				"delay":             delay.String(),
				"error":             lastErr.Error(),
			}).Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				return nil, req.Context().Err()

			case <-timer.C:
			}

			// 이전 시도에서 소진된 요청 본문(Body)을 다시 읽을 수 있도록 복구합니다.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
				}

				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err == nil {
			return resp, nil
		}

		if resp != nil {
			// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
			drainAndCloseBody(resp.Body)
		}

		// 전체 요청 제한 시간(Deadline)이 초과된 경우, 재시도를 해도 성공할 수 없으므로 즉시 중단합니다.
		if errors.Is(err, context.DeadlineExceeded) && req.Context().Err() != nil {
			return nil, err
		}

		if !isRetriable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, newErrMaxRetriesExceeded(lastErr)
}

// nextDelay i번째 재시도 전에 대기할 시간을 계산합니다.
//
// 지수 백오프로 기본 대기 시간을 계산한 뒤 Full Jitter를 적용하며,
// 서버가 Retry-After 헤더를 명시한 경우 해당 값을 우선 사용합니다.
// 서버가 요구한 대기 시간이 최대 재시도 대기 시간을 초과하면 에러를 반환하여 재시도를 포기합니다.
func (f *RetryFetcher) nextDelay(retry int, lastErr error) (time.Duration, error) {
	// 지수 백오프: minRetryDelay * 2^(retry-1), 상한은 maxRetryDelay
	delay := f.minRetryDelay * time.Duration(1<<(retry-1))
	if delay > f.maxRetryDelay {
		delay = f.maxRetryDelay
	}

	// Full Jitter: 0 ~ delay 사이의 무작위 값 선택
	if delay > 0 {
		delay = time.Duration(rand.Int64N(int64(delay) + 1))
	}

	// 서버가 Retry-After 헤더를 통해 재시도 가능한 시점을 명시한 경우 해당 값을 우선 적용합니다.
	var statusErr *HTTPStatusError
	if errors.As(lastErr, &statusErr) {
		if retryAfter := statusErr.Header.Get("Retry-After"); retryAfter != "" {
			if retryAfterDelay, ok := parseRetryAfter(retryAfter); ok {
				if retryAfterDelay > f.maxRetryDelay {
					// 과도한 지연을 방지하기 위해 재시도를 포기하고 즉시 에러를 반환합니다.
					return 0, newErrRetryAfterExceeded(retryAfterDelay.String(), f.maxRetryDelay.String())
				}
				return retryAfterDelay, nil
			}
		}
	}

	// 지터로 인해 대기 시간이 지나치게 짧아지면 최소 재시도 대기 시간으로 보정합니다.
	if delay < time.Millisecond {
		delay = f.minRetryDelay
	}

	return delay, nil
}

func (f *RetryFetcher) Close() error {
	return f.delegate.Close()
}

// normalizeMaxRetries 최대 재시도 횟수를 허용 범위(0~10) 내의 값으로 보정합니다.
func normalizeMaxRetries(maxRetries int) int {
	if maxRetries < minAllowedRetries {
		return minAllowedRetries
	}
	if maxRetries > maxAllowedRetries {
		return maxAllowedRetries
	}
	return maxRetries
}

// normalizeRetryDelays 재시도 대기 시간의 최소값과 최대값을 보정합니다.
// 최소값은 서버 부하 방지를 위해 1초 미만이면 1초로 보정됩니다.
func normalizeRetryDelays(minRetryDelay, maxRetryDelay time.Duration) (time.Duration, time.Duration) {
	if minRetryDelay < time.Second {
		minRetryDelay = 1 * time.Second
	}

	if maxRetryDelay == 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}

	// 최대 재시도 대기 시간은 최소 재시도 대기 시간보다 작을 수 없음!
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return minRetryDelay, maxRetryDelay
}

// isRetriable 발생한 에러가 재시도 가능한 일시적인 오류인지 판단합니다.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}

	// 사용자가 명시적으로 요청을 취소한 경우 재시도 제외!
	if errors.Is(err, context.Canceled) {
		return false
	}

	// SSL/TLS 인증서 에러는 재시도해도 해결되지 않는 문제로 간주!
	var x509HostnameErr x509.HostnameError
	var x509UnknownAuthorityErr x509.UnknownAuthorityError
	var x509CertificateInvalidErr x509.CertificateInvalidError
	if errors.As(err, &x509HostnameErr) || errors.As(err, &x509UnknownAuthorityErr) || errors.As(err, &x509CertificateInvalidErr) {
		return false
	}

	// 타임아웃은 일시적인 네트워크 지연으로 간주하여 재시도
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// 서버가 일시적으로 요청을 처리할 수 없는 상태 (5xx, 429 등)
	if apperrors.Is(err, apperrors.Unavailable) {
		// 501, 505, 511은 영구적인 설정 문제이므로 재시도 대상에서 제외합니다.
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			switch statusErr.StatusCode {
			case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
				return false
			}
		}

		return true
	}

	// 명확한 비즈니스 로직 에러는 재시도해도 동일한 결과가 나오므로 재시도 제외!
	if apperrors.Is(err, apperrors.ExecutionFailed) ||
		apperrors.Is(err, apperrors.InvalidInput) ||
		apperrors.Is(err, apperrors.Forbidden) ||
		apperrors.Is(err, apperrors.NotFound) {
		return false
	}

	// 명확한 실패 사유가 없다면 일시적 오류(DNS 조회 실패, 연결 거부 등)로 간주하고 재시도합니다.
	return true
}

// isIdempotentMethod 지정된 HTTP 메서드가 멱등한지(재시도가 안전한지) 여부를 반환합니다.
// RFC 7231 Section 4.2.2 (Idempotent Methods)
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// parseRetryAfter Retry-After 헤더 값을 파싱하여 대기해야 할 시간을 반환합니다.
//
// 지원 형식 (RFC 7231 Section 7.1.3):
//  1. 초 단위 정수: "120" → 120초 후 재시도
//  2. HTTP-date 형식: "Wed, 21 Oct 2015 07:28:00 GMT" → 해당 시각까지 대기
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}

	if date, err := http.ParseTime(value); err == nil {
		duration := time.Until(date)
		if duration < 0 {
			// 서버 시간과 클라이언트 시간 차이로 과거 시간이 올 수 있으므로 즉시 재시도
			duration = 0
		}
		return duration, true
	}

	return 0, false
}
