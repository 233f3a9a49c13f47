package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/pkg/strutil"
)

const (
	// maxTitleLength 제목의 최대 길이 제한
	// 너무 긴 제목으로 인해 HTML 태그가 닫히지 않은 채 메시지가 분할되는 문제를 방지합니다.
	maxTitleLength = 200

	// titleFormat 제목이 포함된 메시지 포맷
	// 형식: "<b>【 제목 】</b>\n\n원본메시지"
	titleFormat = "<b>【 %s 】</b>\n\n%s"

	// errorFormat 에러 발생 시 메시지 포맷
	// 형식: "원본메시지\n\n*** 오류가 발생하였습니다. ***"
	errorFormat = "%s\n\n*** 오류가 발생하였습니다. ***"

	// elapsedFormat 경과 시간 표시 포맷
	// 형식: " (1시간 30분 10초 지남)"
	elapsedFormat = " (%s 지남)"
)

// buildEnrichedMessage 원본 알림 메시지에 메타데이터를 추가하여 사용자에게 더 풍부한 정보를 제공합니다.
func (n *telegramNotifier) buildEnrichedMessage(notification *contract.Notification) string {
	message := notification.Message

	// 1단계: 작업 제목 추가
	message = n.withTitle(notification, message)

	// 2단계: 경과 시간 추가
	message = n.withElapsed(notification, message)

	// 3단계: 오류 발생 시 강조 표시 추가
	if notification.ErrorOccurred {
		message = fmt.Sprintf(errorFormat, message)
	}

	return message
}

// withTitle 메시지에 제목을 포함시킵니다.
//
// 알림 메시지 상단에 작업 제목을 굵은 글씨로 표시하여 사용자가 어떤 작업에 대한
// 알림인지 즉시 파악할 수 있도록 합니다. 제목 조회는 다음 2단계 전략으로 수행됩니다:
//
//  1. 직접 제공된 제목 사용: notification.Title이 있으면 우선 사용
//  2. ID 기반 조회: 제목이 없으면 TaskID + CommandID로 등록된 봇 명령어에서 제목 조회
//
// 제목을 찾지 못한 경우 원본 메시지를 그대로 반환합니다.
func (n *telegramNotifier) withTitle(notification *contract.Notification, message string) string {
	if title := notification.Title; len(title) > 0 {
		// 반드시 Truncate → Escape 순서로 처리해야 합니다.
		// 반대 순서는 이스케이프된 엔티티("&lt;")가 중간에 잘려 HTML 파싱 에러를 유발할 수 있습니다.
		sanitizedTitle := html.EscapeString(strutil.Truncate(title, maxTitleLength))

		return fmt.Sprintf(titleFormat, sanitizedTitle, message)
	}

	taskID := notification.TaskID
	commandID := notification.CommandID

	if !taskID.IsEmpty() && !commandID.IsEmpty() {
		if commands, ok := n.botCommandsByTask[taskID]; ok {
			if command, exists := commands[commandID]; exists {
				// 조회된 제목도 설정 파일에서 온 사용자 입력일 수 있으므로 이스케이프 처리합니다.
				return fmt.Sprintf(titleFormat, html.EscapeString(command.title), message)
			}
		}
	}

	// 제목을 찾지 못한 경우는 에러가 아니라 정상적인 시나리오입니다 (제목 없는 단순 알림 등)
	return message
}

// withElapsed 경과 시간이 있는 경우, 메시지에 경과 시간을 포함시킵니다.
func (n *telegramNotifier) withElapsed(notification *contract.Notification, message string) string {
	if elapsed := notification.Elapsed; elapsed > 0 {
		return message + formatElapsed(elapsed)
	}
	return message
}

// formatElapsed 경과 시간을 읽기 쉬운 한국어 문자열로 변환합니다.
//
// 예: 3661초 → " (1시간 1분 1초 지남)"
// 시간/분만 있고 초가 0인 경우 초는 생략됩니다. (예: " (1시간 30분 지남)")
func formatElapsed(d time.Duration) string {
	seconds := int64(d.Seconds())

	s := seconds % 60
	m := (seconds / 60) % 60
	h := seconds / 3600

	var parts []string

	if h > 0 {
		parts = append(parts, fmt.Sprintf("%d시간", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%d분", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d초", s))
	}

	return fmt.Sprintf(elapsedFormat, strings.Join(parts, " "))
}
