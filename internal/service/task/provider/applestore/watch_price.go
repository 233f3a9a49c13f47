package applestore

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/darkkaiser/applestore-notifier/internal/pkg/mark"
	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/task/provider"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

// titlePriceChanged 가격 변동이 감지된 경우의 알림 제목입니다.
const titlePriceChanged = "가격 변동"

// executeWatchPrice 상품 페이지에 표시된 가격을 조회하고, 이전 실행 결과와 비교하여
// 변동이 발생한 경우에 알림 메시지를 생성합니다.
func (t *task) executeWatchPrice(ctx context.Context, settings *watchPriceSettings, previousSnapshot *watchPriceSnapshot, supportsHTML bool) (provider.ExecuteResult, error) {
	selection, err := t.Scraper().FetchHTMLSelection(ctx, settings.ProductURL, settings.Selector)
	if err != nil {
		return provider.ExecuteResult{}, err
	}

	currentPrice := strings.TrimSpace(selection.First().Text())
	if currentPrice == "" {
		return provider.ExecuteResult{}, newErrPriceNotFound(settings.ProductURL, settings.Selector)
	}

	changed := previousSnapshot.Price != "" && previousSnapshot.Price != currentPrice

	t.LogWithContext(component, applog.DebugLevel, "상품 가격 조회가 완료되었습니다", applog.Fields{
		"product_url":    settings.ProductURL,
		"current_price":  currentPrice,
		"previous_price": previousSnapshot.Price,
		"changed":        changed,
	}, nil)

	currentSnapshot := &watchPriceSnapshot{Price: currentPrice}

	if changed {
		return provider.ExecuteResult{
			Title:       titlePriceChanged,
			Message:     renderPriceChange(settings, previousSnapshot.Price, currentPrice, supportsHTML),
			NewSnapshot: currentSnapshot,
		}, nil
	}

	// 최초 실행인 경우에는 알림 없이 현재 가격을 기준값으로 저장합니다.
	if previousSnapshot.Price == "" {
		if t.RunBy() == contract.TaskRunByUser {
			return provider.ExecuteResult{
				Message:     renderCurrentPrice(settings, currentPrice, supportsHTML),
				NewSnapshot: currentSnapshot,
			}, nil
		}

		return provider.ExecuteResult{NewSnapshot: currentSnapshot}, nil
	}

	// 사용자가 직접 실행한 경우에는 변동이 없더라도 항상 현재 가격을 응답합니다.
	if t.RunBy() == contract.TaskRunByUser {
		return provider.ExecuteResult{Message: renderCurrentPrice(settings, currentPrice, supportsHTML)}, nil
	}

	return provider.ExecuteResult{}, nil
}

func renderPriceChange(settings *watchPriceSettings, previousPrice, currentPrice string, supportsHTML bool) string {
	var sb strings.Builder

	if supportsHTML {
		sb.WriteString(fmt.Sprintf("☞ <a href=\"%s\"><b>%s</b></a>", settings.ProductURL, html.EscapeString(settings.ProductName)))
	} else {
		sb.WriteString(fmt.Sprintf("☞ %s", settings.ProductName))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("    • 이전 가격 : %s\n", previousPrice))
	sb.WriteString(fmt.Sprintf("    • 현재 가격 : %s%s", currentPrice, mark.PriceDrop.WithSpace()))

	if !supportsHTML {
		sb.WriteString("\n\n")
		sb.WriteString(settings.ProductURL)
	}

	return sb.String()
}

func renderCurrentPrice(settings *watchPriceSettings, currentPrice string, supportsHTML bool) string {
	var sb strings.Builder

	if supportsHTML {
		sb.WriteString(fmt.Sprintf("☞ <a href=\"%s\"><b>%s</b></a>", settings.ProductURL, html.EscapeString(settings.ProductName)))
	} else {
		sb.WriteString(fmt.Sprintf("☞ %s", settings.ProductName))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("    • 현재 가격 : %s", currentPrice))

	return sb.String()
}
