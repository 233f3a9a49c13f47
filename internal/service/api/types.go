package api

import "time"

const (
	// componentService API 서비스의 로깅용 컴포넌트 이름
	componentService = "api.service"

	// componentHandler API 핸들러의 로깅용 컴포넌트 이름
	componentHandler = "api.handler"

	// componentMiddleware API 미들웨어의 로깅용 컴포넌트 이름
	componentMiddleware = "api.middleware"
)

const (
	// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
	shutdownTimeout = 5 * time.Second

	// readTimeout 요청 본문 읽기 제한 시간
	readTimeout = 5 * time.Second

	// readHeaderTimeout 요청 헤더 읽기 제한 시간
	readHeaderTimeout = 2 * time.Second

	// writeTimeout 응답 쓰기 제한 시간
	writeTimeout = 30 * time.Second

	// idleTimeout Keep-Alive 연결의 유휴 제한 시간
	idleTimeout = 120 * time.Second

	// requestTimeout 각 HTTP 요청의 최대 처리 시간
	requestTimeout = 30 * time.Second
)

const (
	// rateLimitPerSecond IP 주소별 초당 허용 요청 수
	rateLimitPerSecond = 10

	// rateLimitBurst IP 주소별 버스트 허용량
	rateLimitBurst = 20

	// maxBodySize 요청 본문의 최대 허용 크기
	maxBodySize = "64K"
)

const (
	// healthStatusOK 서버가 정상 동작 중임을 나타내는 상태 문자열
	healthStatusOK = "ok"
)
