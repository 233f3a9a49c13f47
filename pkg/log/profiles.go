package log

// NewProductionOptions 운영 환경에 맞춘 로그 설정을 반환합니다.
func NewProductionOptions(appName string) Options {
	return Options{
		Name:  appName,
		Level: InfoLevel,

		MaxAge:     30,  // 30일 보관
		MaxSizeMB:  100, // 100MB 단위 로테이션
		MaxBackups: 20,

		EnableCriticalLog: true,  // 장애 분석용 중요 로그 격리
		EnableVerboseLog:  true,  // 상세 로그 분리
		EnableConsoleLog:  false, // 콘솔 출력 비활성화

		ReportCaller:     true,
		CallerPathPrefix: "",
	}
}

// NewDevelopmentOptions 개발 환경에 맞춘 로그 설정을 반환합니다.
func NewDevelopmentOptions(appName string) Options {
	return Options{
		Name:  appName,
		Level: TraceLevel,

		MaxAge:     1,
		MaxSizeMB:  50,
		MaxBackups: 5,

		EnableCriticalLog: false, // 개발 편의를 위해 단일 파일로 통합
		EnableVerboseLog:  false,
		EnableConsoleLog:  true, // 콘솔 출력 활성화

		ReportCaller:     true,
		CallerPathPrefix: "",
	}
}
