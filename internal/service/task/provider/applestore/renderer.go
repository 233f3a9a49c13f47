package applestore

import (
	"fmt"
	"html"
	"strings"

	"github.com/darkkaiser/applestore-notifier/internal/pkg/mark"
)

const (
	// titlePreferredModelFound 우선 감시 대상 모델이 픽업 가능해졌을 때의 알림 제목입니다.
	titlePreferredModelFound = "Preferred Model Found"

	// titlePickupAvailable 픽업 가능한 모델이 발견되었을 때의 일반 알림 제목입니다.
	titlePickupAvailable = "Pickup Available"

	// estimatedStoreMsgSize 단일 매장 정보를 렌더링할 때 필요한 예상 버퍼 크기(Byte)입니다.
	estimatedStoreMsgSize = 200
)

// hasPreferredModel 픽업 가능한 모델 중 우선 감시 대상이 하나라도 포함되어 있는지 확인합니다.
// 첫 번째 일치 항목에서 즉시 반환합니다.
func hasPreferredModel(result availabilityResult, preferred map[string]struct{}) bool {
	if len(preferred) == 0 {
		return false
	}

	for _, sa := range result {
		for _, part := range sa.Parts {
			if _, exists := preferred[part.PartNumber]; exists {
				return true
			}
		}
	}

	return false
}

// pickupTitle 우선 감시 대상 포함 여부에 따라 두 가지 제목 중 하나를 선택합니다.
func pickupTitle(preferredFound bool) string {
	if preferredFound {
		return titlePreferredModelFound
	}
	return titlePickupAvailable
}

// renderSummary 픽업 가능 결과를 한 줄 요약으로 렌더링합니다.
//
// 모델별로 픽업 가능한 매장 수를 집계하여(같은 모델이 한 매장에 여러 번
// 나타나도 매장당 1회) `"{productName}: {count} found"` 항목을 ", "로
// 연결합니다. 항목 순서는 모델이 결과에 처음 등장한 순서를 따릅니다.
func renderSummary(result availabilityResult, resolveName productNameResolver) string {
	counts := make(map[string]int)
	var order []string

	for _, sa := range result {
		// 한 매장 안에서 같은 모델이 중복 집계되지 않도록 매장 단위로 존재 여부만 기록합니다.
		seenInStore := make(map[string]struct{}, len(sa.Parts))
		for _, part := range sa.Parts {
			if _, seen := seenInStore[part.PartNumber]; seen {
				continue
			}
			seenInStore[part.PartNumber] = struct{}{}

			if _, exists := counts[part.PartNumber]; !exists {
				order = append(order, part.PartNumber)
			}
			counts[part.PartNumber]++
		}
	}

	entries := make([]string, 0, len(order))
	for _, sku := range order {
		entries = append(entries, fmt.Sprintf("%s: %d found", resolveName(sku), counts[sku]))
	}

	return strings.Join(entries, ", ")
}

// renderStoreList 픽업 가능한 매장별 상세 목록을 렌더링합니다.
//
// HTML을 지원하는 채널에서는 매장명을 볼드 처리하고, 텍스트 채널에서는
// 같은 내용을 평문으로 나열합니다. 매장 순서는 결과 순서를 따릅니다.
func renderStoreList(result availabilityResult, supportsHTML bool, resolveName productNameResolver) string {
	if result.isEmpty() {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(result) * estimatedStoreMsgSize)

	for i, sa := range result {
		if i > 0 {
			sb.WriteString("\n\n")
		}

		if supportsHTML {
			fmt.Fprintf(&sb, "☞ <b>%s</b> (%s)",
				html.EscapeString(sa.Store.Name),
				html.EscapeString(sa.Store.locationDescription()),
			)
		} else {
			fmt.Fprintf(&sb, "☞ %s (%s)", sa.Store.Name, sa.Store.locationDescription())
		}

		for _, part := range sa.Parts {
			name := resolveName(part.PartNumber)
			if supportsHTML {
				name = html.EscapeString(name)
			}
			fmt.Fprintf(&sb, "\n    • %s%s", name, mark.Available.WithSpace())
		}
	}

	return sb.String()
}

// renderWatchConditionsSummary 사용자가 설정한 감시 조건을 알림 메시지에 삽입할 요약 문자열로 렌더링합니다.
//
// 어떤 기준으로 모니터링이 수행되고 있는지를 사용자가 한눈에 확인할 수 있도록,
// 수동 실행에 대한 응답 메시지 앞부분에 항상 포함됩니다.
func renderWatchConditionsSummary(settings *watchPickupSettings, skus []string) string {
	return fmt.Sprintf(`감시 조건은 아래와 같습니다:

  • 국가 : %s
  • 매장 번호 : %s
  • 감시 모델 : %d개
  • 우선 감시 모델 : %s`,
		settings.Country,
		settings.StoreNumber,
		len(skus),
		formatPreferredModels(settings.PreferredModels),
	)
}

// formatPreferredModels 우선 감시 모델 목록을 표시용 문자열로 변환합니다.
func formatPreferredModels(preferredModels []string) string {
	if len(preferredModels) == 0 {
		return "(없음)"
	}
	return strings.Join(preferredModels, ", ")
}
