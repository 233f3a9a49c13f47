package log

import (
	"github.com/sirupsen/logrus"
)

// StandardLogger 전역 logrus 로거를 반환합니다.
// 외부 라이브러리(cron 등)에 로거를 전달할 때 사용합니다.
func StandardLogger() *logrus.Logger {
	return logrus.StandardLogger()
}

// SetDebugMode Debug 모드 여부에 따라 전역 로그 레벨을 조정합니다.
//   - Debug 모드: Trace 레벨 (모든 로그 출력)
//   - 운영 모드: Info 레벨
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(logrus.TraceLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// WithComponent component 필드가 포함된 로그 Entry를 반환합니다.
// 모든 로그에 발생 지점(컴포넌트)을 일관되게 남기기 위해 사용합니다.
func WithComponent(component string) *Entry {
	return logrus.WithFields(Fields{
		"component": component,
	})
}

// WithComponentAndFields component 필드와 추가 필드가 포함된 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	merged := make(Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["component"] = component

	return logrus.WithFields(merged)
}

// MaskSensitiveData 토큰, 키 등의 민감한 문자열을 로그에 안전하게 남길 수 있도록 마스킹합니다.
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}

	// 짧은 값은 전체 마스킹
	if len(data) <= 3 {
		return "***"
	}

	if len(data) <= 12 {
		return data[:4] + "***"
	}

	// 긴 토큰은 앞뒤 4자만 남긴다
	return data[:4] + "***" + data[len(data)-4:]
}
