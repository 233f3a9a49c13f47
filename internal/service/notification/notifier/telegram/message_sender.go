package telegram

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendNotification 원본 알림 메시지에 메타데이터를 추가한 후, 텔레그램으로 메시지를 전송합니다.
//
// 알림 전송 파이프라인의 진입점으로, 다음 두 단계로 구성됩니다:
//  1. 메시지 강화: 원본 알림 메시지에 제목, 경과 시간, 에러 상태 등의 메타데이터를 추가
//  2. 텔레그램 API를 통한 실제 메시지 전송 (4096자 초과 시 자동 분할)
//
// 텔레그램 Notifier는 HTML 서식을 지원(SupportsHTML=true)하므로,
// 메시지 내용에 포함된 <b>, <a href="..."> 등의 태그를 그대로 허용합니다.
func (n *telegramNotifier) sendNotification(ctx context.Context, notification *contract.Notification) {
	message := n.buildEnrichedMessage(notification)

	n.sendMessage(ctx, message)
}

// sendMessage 긴 메시지를 텔레그램 API 제한에 맞춰 분할하여 전송합니다.
//
// 텔레그램 Bot API는 단일 메시지의 최대 길이를 4096 바이트로 제한하므로
// 이를 초과하는 메시지는 분할이 필요합니다. 단순히 바이트 단위로 자르면
// 문장 중간에서 잘리거나 멀티바이트 문자가 깨질 수 있으므로, 다음 전략을 사용합니다:
//
//  1. 논리적 분할: 가능한 한 줄바꿈(\n) 단위로 메시지를 나눕니다.
//  2. 강제 분할: 한 줄 자체가 제한을 초과하는 경우에만 UTF-8 문자 경계를 존중하며 자릅니다.
//  3. 순차 전송 및 조기 중단: 중간에 전송 실패가 발생하면 즉시 중단합니다.
func (n *telegramNotifier) sendMessage(ctx context.Context, message string) {
	// 짧은 메시지는 즉시 전송
	if len(message) <= messageMaxLength {
		_ = n.sendChunk(ctx, message)
		return
	}

	var sb strings.Builder
	sb.Grow(messageMaxLength)

	lines := strings.Split(message, "\n")
	for _, line := range lines {
		// 긴 메시지를 처리하는 중에도 취소에 빠르게 반응합니다.
		if ctx.Err() != nil {
			return
		}

		neededSpace := len(line)
		if sb.Len() > 0 {
			// 청크에 이미 내용이 있다면 줄바꿈 문자(\n) 1바이트가 추가로 필요합니다.
			neededSpace += 1
		}

		if sb.Len()+neededSpace > messageMaxLength {
			// 지금까지 모은 청크가 있다면 먼저 전송하고 비웁니다.
			if sb.Len() > 0 {
				if err := n.sendChunk(ctx, sb.String()); err != nil {
					return
				}

				sb.Reset()
			}

			// 현재 라인 자체가 최대 길이를 초과하는 경우 강제로 잘라야 합니다.
			if len(line) > messageMaxLength {
				currentLine := line

				for len(currentLine) > messageMaxLength {
					if ctx.Err() != nil {
						return
					}

					chunk, remainder := safeSplit(currentLine, messageMaxLength)
					if err := n.sendChunk(ctx, chunk); err != nil {
						return
					}
					currentLine = remainder
				}

				// 자르고 남은 마지막 조각은 다음 라인들과 합쳐질 수 있습니다.
				sb.WriteString(currentLine)
			} else {
				sb.WriteString(line)
			}
		} else {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(line)
		}
	}

	// 아직 전송하지 않은 마지막 청크가 남아있을 수 있습니다.
	if sb.Len() > 0 {
		_ = n.sendChunk(ctx, sb.String())
	}
}

// sendChunk 단일 메시지 청크를 텔레그램 API로 전송합니다.
// HTML 파싱 모드를 활성화하여 전송하며, 실패 시 자동으로 재시도 로직이 적용됩니다.
func (n *telegramNotifier) sendChunk(ctx context.Context, message string) error {
	return n.attemptSendWithRetry(ctx, message, true)
}

// attemptSendWithRetry 텔레그램 메시지 전송을 시도하며, 실패 시 자동으로 재시도합니다.
//
// 핵심 기능:
//
//  1. Rate Limiting: 텔레그램 API의 전송 횟수 제한을 자동으로 준수합니다.
//  2. 재시도: 일시적 오류 발생 시 최대 3회까지 재시도하며,
//     재시도 가능한 에러(5xx, 429)와 불가능한 에러(4xx)를 구분하여 처리합니다.
//  3. 적응형 대기: 429 Rate Limit 에러 시 서버가 요청한 시간(Retry-After)만큼 대기합니다.
//  4. HTML Fallback: HTML 파싱 실패(400 에러) 시 자동으로 PlainText 모드로 전환하여 재시도합니다.
//     메시지 내용은 그대로 유지하되 파싱 모드만 변경합니다.
//  5. 컨텍스트 인식: 취소 시그널이나 타임아웃을 재시도 대기 중에도 확인합니다.
func (n *telegramNotifier) attemptSendWithRetry(ctx context.Context, message string, useHTML bool) error {
	messageConfig := tgbotapi.NewMessage(n.chatID, message)
	if useHTML {
		messageConfig.ParseMode = tgbotapi.ModeHTML
	} else {
		messageConfig.ParseMode = ""
	}

	// Rate Limiter는 토큰 버킷 알고리즘을 사용하여 API 정책을 준수합니다.
	if n.rateLimiter != nil {
		if err := n.rateLimiter.Wait(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"error":       err,
				"limit":       n.rateLimiter.Limit(),
				"burst":       n.rateLimiter.Burst(),
			}).Debug("작업 중단: RateLimiter 대기 중 컨텍스트가 취소되었습니다")

			return err
		}
	}

	const maxRetries = 3
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		// 전송 전 컨텍스트 확인: 취소되었다면 즉시 반환하여 불필요한 API 호출을 방지합니다.
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				applog.WithComponentAndFields(component, applog.Fields{
					"notifier_id": n.ID(),
					"error":       ctx.Err(),
					"attempt":     attempt,
				}).Error("작업 중단: 발송 제한 시간(Timeout)을 초과하였습니다")
			}
			return ctx.Err()

		default:
		}

		_, err := n.client.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id":    n.ID(),
				"chat_id":        n.chatID,
				"attempt":        attempt,
				"mode":           formatParseMode(messageConfig.ParseMode),
				"message_length": len(message),
			}).Info("발송 성공: 텔레그램 API로 메시지가 정상 전송되었습니다")

			return nil
		}

		lastErr = err
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id":    n.ID(),
			"chat_id":        n.chatID,
			"attempt":        attempt,
			"error":          err,
			"mode":           formatParseMode(messageConfig.ParseMode),
			"message_length": len(message),
		}).Warn("발송 실패: 텔레그램 API 호출에서 오류가 발생했습니다 (재시도 예정)")

		errCode, retryAfter := parseTelegramError(err)

		// HTML Fallback: 400 Bad Request 에러는 대부분 HTML 파싱 실패를 의미합니다.
		// (닫히지 않은 태그, 잘못된 HTML 문법 등)
		// HTML 모드를 끄고 PlainText 모드로 재귀 호출하여 전송 자체는 보장합니다.
		if useHTML && errCode == 400 {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id":    n.ID(),
				"error":          err,
				"attempt":        attempt,
				"message_length": len(message),
			}).Warn("HTML 파싱 오류(400): PlainText 모드로 자동 전환하여 재시도합니다 (Fallback)")

			return n.attemptSendWithRetry(ctx, message, false)
		}

		if !shouldRetry(errCode) {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"chat_id":     n.chatID,
				"error":       err,
				"code":        errCode,
				"attempt":     attempt,
			}).Error("작업 중단: 재시도 불가능한 API 오류가 발생했습니다 (4xx Fatal Error)")

			return err
		}

		if attempt >= maxRetries {
			break
		}

		// 429 Rate Limit 에러 시 텔레그램 서버가 Retry-After로 대기 시간을 명시할 수 있습니다.
		if errCode == 429 && retryAfter > 0 {
			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": n.ID(),
				"retry_after": retryAfter,
				"attempt":     attempt,
				"limit":       n.rateLimiter.Limit(),
				"burst":       n.rateLimiter.Burst(),
			}).Warn("재시도 대기: 429 Rate Limit 감지 (Retry-After 준수)")
		}

		backoff := n.delayForRetry(retryAfter)
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				applog.WithComponentAndFields(component, applog.Fields{
					"notifier_id": n.ID(),
					"error":       ctx.Err(),
					"backoff":     backoff,
					"attempt":     attempt,
				}).Error("재시도 중단: 대기 중 작업 제한 시간(Timeout)을 초과하였습니다")
			}
			return ctx.Err()

		case <-time.After(backoff):
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id":    n.ID(),
		"chat_id":        n.chatID,
		"error":          lastErr,
		"max_retries":    maxRetries,
		"message_length": len(message),
		"use_html":       useHTML,
	}).Error("전송 최종 실패: 최대 재시도 횟수를 초과하였습니다")

	return lastErr
}

// shouldRetry 주어진 HTTP 상태 코드를 기반으로 메시지 전송 재시도 가능 여부를 판단합니다.
//
//   - 4xx (Client Error): 클라이언트 측 문제 → 재시도 불가능
//   - 429 (Too Many Requests): Rate Limit → 재시도 가능 (예외)
//   - 5xx (Server Error) 및 기타: 일시적 문제 → 재시도 가능
func shouldRetry(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		return statusCode == 429
	}

	// 5xx 서버 에러 및 기타 모든 에러는 재시도 가능 (네트워크 에러 등 errCode=0인 경우도 포함)
	return true
}

// delayForRetry 메시지 전송 실패 시, 다음 재시도까지의 대기 시간을 계산합니다.
// 텔레그램 API가 429 에러 시 Retry-After로 지정한 대기 시간을 우선 사용하고,
// 없으면 기본 대기 시간(retryDelay)을 사용합니다.
func (n *telegramNotifier) delayForRetry(retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}

	return n.retryDelay
}

// formatParseMode 텔레그램 메시지 파싱 모드를 로깅용 문자열로 변환합니다.
func formatParseMode(mode string) string {
	if mode == tgbotapi.ModeHTML {
		return "HTML"
	}
	return "PlainText"
}

// parseTelegramError 텔레그램 API 에러에서 에러 코드와 Retry-After 값을 추출합니다.
//
// 반환값:
//   - code: HTTP 상태 코드 (예: 400, 401, 429, 500 등), 텔레그램 에러가 아니면 0
//   - retryAfter: 429 에러 시 서버가 요청한 대기 시간(초), 없으면 0
func parseTelegramError(err error) (code int, retryAfter int) {
	if apiErr, ok := err.(tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}

	if apiErrPtr, ok := err.(*tgbotapi.Error); ok {
		return apiErrPtr.Code, apiErrPtr.ResponseParameters.RetryAfter
	}

	// 텔레그램 에러가 아닌 경우 (일반 네트워크 에러 등)
	return 0, 0
}

// safeSplit UTF-8 문자열을 지정된 바이트 길이(limit) 내에서 안전하게 분할합니다.
//
// 텔레그램 API의 메시지 길이 제한(바이트 단위)을 준수하면서
// 멀티바이트 문자(한글, 이모지 등)가 바이트 경계에서 깨지지 않도록 보장합니다.
//
// 반환값:
//   - chunk: limit 이내의 안전하게 잘린 첫 번째 부분
//   - remainder: 나머지 부분 (빈 문자열일 수 있음)
func safeSplit(s string, limit int) (chunk, remainder string) {
	if len(s) <= limit {
		return s, ""
	}

	// limit 위치가 멀티바이트 문자의 중간일 수 있으므로,
	// 뒤로 이동하며 가장 가까운 룬 시작 위치를 찾습니다.
	splitIndex := limit
	for splitIndex > 0 && !utf8.RuneStart(s[splitIndex]) {
		splitIndex--
	}

	// limit 이전에 유효한 룬 시작점이 없는 극단적인 경우, 강제로 limit에서 자릅니다.
	if splitIndex == 0 {
		return s[:limit], s[limit:]
	}

	return s[:splitIndex], s[splitIndex:]
}
