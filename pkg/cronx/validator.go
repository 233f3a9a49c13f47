package cronx

import (
	"fmt"
	"strings"
)

// Validate Cron 표현식이 애플리케이션 표준 형식(6필드, 초 단위 포함)에 맞는지 검증합니다.
// 스케줄 등록 전에 설정 로드 단계에서 호출하여 잘못된 표현식을 조기에 걸러냅니다.
func Validate(spec string) error {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return fmt.Errorf("cron 표현식이 비어 있습니다")
	}

	if _, err := StandardParser().Parse(trimmed); err != nil {
		return fmt.Errorf("유효하지 않은 cron 표현식입니다(%s): %w", trimmed, err)
	}

	return nil
}
