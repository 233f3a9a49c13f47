package applestore

import (
	"context"
	"strings"

	"github.com/darkkaiser/applestore-notifier/internal/service/contract"
	"github.com/darkkaiser/applestore-notifier/internal/service/task/provider"
	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

// executeWatchPickup 지정된 매장의 모델별 픽업 가능 여부를 조회하고, 이전 실행 결과와
// 비교하여 변동이 발생한 경우에 알림 메시지를 생성합니다.
//
// 스케줄러에 의한 실행은 변동이 없으면 알림을 발생시키지 않지만, 사용자에 의한 실행은
// 변동 여부와 관계없이 항상 현재 상태를 응답합니다.
func (t *task) executeWatchPickup(ctx context.Context, settings *watchPickupSettings, previousSnapshot *watchPickupSnapshot, supportsHTML bool) (provider.ExecuteResult, error) {
	catalog, _ := catalogFor(settings.Country)

	// 감시 대상 모델이 지정되지 않은 경우에는 해당 국가의 전체 카탈로그를 감시합니다.
	skus := settings.Models
	if len(skus) == 0 {
		if catalog == nil {
			return provider.ExecuteResult{}, ErrModelsMissing
		}
		skus = catalog.skus
	}

	requestURL, err := buildFulfillmentURL(settings.BaseURL, settings.Country, settings.StoreNumber, skus)
	if err != nil {
		return provider.ExecuteResult{}, err
	}

	responseBytes, err := t.Scraper().FetchJSONBytes(ctx, requestURL, nil)
	if err != nil {
		return provider.ExecuteResult{}, err
	}

	stores, err := parseFulfillmentResponse(responseBytes)
	if err != nil {
		return provider.ExecuteResult{}, err
	}

	currentResult := filterAvailable(stores)
	currentSnapshot := &watchPickupSnapshot{Stores: currentResult}

	newlyAvailable, disappeared := currentSnapshot.Compare(previousSnapshot)
	changed := len(newlyAvailable) > 0 || len(disappeared) > 0

	t.LogWithContext(component, applog.DebugLevel, "매장 픽업 가능 여부 조회가 완료되었습니다", applog.Fields{
		"store_number":     settings.StoreNumber,
		"watch_models":     len(skus),
		"available_stores": len(currentResult),
		"newly_available":  len(newlyAvailable),
		"disappeared":      len(disappeared),
		"changed":          changed,
	}, nil)

	resolveName := newProductNameResolver(catalog, settings.ProductNames)

	if changed {
		// 변동이 감지되었으므로 결과에 관계없이 새로운 스냅샷을 저장합니다.
		if currentResult.isEmpty() {
			return provider.ExecuteResult{
				Message:     t.renderEmptyResultMessage(settings, skus),
				NewSnapshot: currentSnapshot,
			}, nil
		}

		preferredFound := hasPreferredModel(currentResult, settings.preferredSet())

		return provider.ExecuteResult{
			Title:       pickupTitle(preferredFound),
			Message:     renderSummary(currentResult, resolveName) + "\n\n" + renderStoreList(currentResult, supportsHTML, resolveName),
			NewSnapshot: currentSnapshot,
		}, nil
	}

	// 사용자가 직접 실행한 경우에는 변동이 없더라도 항상 현재 상태를 응답합니다.
	if t.RunBy() == contract.TaskRunByUser {
		var sb strings.Builder
		sb.WriteString(renderWatchConditionsSummary(settings, skus))
		sb.WriteString("\n\n")
		if currentResult.isEmpty() {
			sb.WriteString("현재 픽업 가능한 모델이 없습니다.")
		} else {
			sb.WriteString(renderStoreList(currentResult, supportsHTML, resolveName))
		}

		return provider.ExecuteResult{Message: sb.String()}, nil
	}

	// 스케줄러에 의한 실행이고 변동이 없으므로 알림을 발생시키지 않습니다.
	return provider.ExecuteResult{}, nil
}

// renderEmptyResultMessage 픽업 가능한 모델이 모두 사라진 경우의 알림 메시지를 생성합니다.
//
// 설정에서 알림이 비활성화되어 있고 스케줄러에 의한 실행인 경우에는 빈 메시지를
// 반환하여 알림 발송을 생략합니다.
func (t *task) renderEmptyResultMessage(settings *watchPickupSettings, skus []string) string {
	if !settings.NotifyWhenEmpty && t.RunBy() != contract.TaskRunByUser {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(renderWatchConditionsSummary(settings, skus))
	sb.WriteString("\n\n현재 픽업 가능한 모델이 없습니다.")

	return sb.String()
}
