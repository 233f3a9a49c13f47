package fetcher

import (
	"time"
)

// New 주요 설정값만으로 간편하게 Fetcher 실행 체인을 생성합니다.
//
// Fetcher 체인은 책임 연쇄 패턴(Chain of Responsibility)을 따르며,
// 다음과 같은 순서로 미들웨어가 구성됩니다 (바깥쪽 -> 안쪽):
//
//  1. LoggingFetcher    (관찰): 모든 시도와 지연을 포함한 전체 요청 생애주기를 기록합니다.
//  2. RetryFetcher      (제어): 실패 시 지수 백오프 전략에 따라 재시도를 총괄 제어합니다.
//  3. StatusCodeFetcher (검증): HTTP 응답 상태 코드의 유효성을 검사합니다.
//  4. MaxBytesFetcher   (보호): 응답 본문의 크기를 감시하여 메모리 고갈을 방지합니다.
//  5. HTTPFetcher       (전송): 최하단에서 실제 네트워크 I/O를 담당합니다.
//
// 검증 로직(StatusCode)은 각 시도(Attempt)마다 수행되어야 하므로 RetryFetcher 안쪽에 위치합니다.
//
// 매개변수:
//   - maxRetries: 최대 재시도 횟수 (0~10회, 범위 초과 시 자동 보정)
//   - minRetryDelay: 최소 재시도 대기 시간 (1초 미만은 1초로 자동 보정)
//   - maxBytes: 응답 본문의 최대 허용 크기 (0: 기본값 10MB, NoLimit: 제한 없음)
//   - opts: HTTPFetcher 추가 설정 옵션 (예: WithTimeout, WithUserAgent)
func New(maxRetries int, minRetryDelay time.Duration, maxBytes int64, opts ...Option) Fetcher {
	var f Fetcher = NewHTTPFetcher(opts...)

	f = NewMaxBytesFetcher(f, maxBytes)
	f = NewStatusCodeFetcher(f)
	f = NewRetryFetcher(f, maxRetries, minRetryDelay, 0)
	f = NewLoggingFetcher(f)

	return f
}
