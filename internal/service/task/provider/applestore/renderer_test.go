package applestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoulderResult() availabilityResult {
	return availabilityResult{
		{
			Store: store{Name: "Twenty Ninth St", Number: "R452", City: "Boulder", State: "CO"},
			Parts: []partAvailability{
				{PartNumber: "MKGT3LL/A", State: stateAvailable},
			},
		},
	}
}

func TestHasPreferredModel(t *testing.T) {
	result := newBoulderResult()

	t.Run("우선 감시 모델이 포함된 경우", func(t *testing.T) {
		preferred := map[string]struct{}{"MKGT3LL/A": {}}

		assert.True(t, hasPreferredModel(result, preferred))
	})

	t.Run("우선 감시 모델이 포함되지 않은 경우", func(t *testing.T) {
		preferred := map[string]struct{}{"MLKN3LL/A": {}, "MLKP3LL/A": {}}

		assert.False(t, hasPreferredModel(result, preferred))
	})

	t.Run("우선 감시 모델이 설정되지 않은 경우", func(t *testing.T) {
		assert.False(t, hasPreferredModel(result, nil))
		assert.False(t, hasPreferredModel(result, map[string]struct{}{}))
	})

	t.Run("빈 결과인 경우", func(t *testing.T) {
		preferred := map[string]struct{}{"MKGT3LL/A": {}}

		assert.False(t, hasPreferredModel(nil, preferred))
	})
}

func TestPickupTitle(t *testing.T) {
	assert.Equal(t, "Preferred Model Found", pickupTitle(true))
	assert.Equal(t, "Pickup Available", pickupTitle(false))
}

func TestRenderSummary(t *testing.T) {
	catalog, exists := catalogFor("US")
	require.True(t, exists)
	resolveName := newProductNameResolver(catalog, nil)

	t.Run("단일 매장 단일 모델", func(t *testing.T) {
		summary := renderSummary(newBoulderResult(), resolveName)

		assert.Equal(t, "iPhone 13 Pro 128GB Sierra Blue: 1 found", summary)
	})

	t.Run("모델별로 매장 수가 집계됨", func(t *testing.T) {
		result := availabilityResult{
			{
				Store: store{Number: "R452"},
				Parts: []partAvailability{
					{PartNumber: "MKGT3LL/A", State: stateAvailable},
					{PartNumber: "MKGQ3LL/A", State: stateAvailable},
				},
			},
			{
				Store: store{Number: "R121"},
				Parts: []partAvailability{
					{PartNumber: "MKGT3LL/A", State: stateAvailable},
				},
			},
		}

		summary := renderSummary(result, resolveName)

		assert.Equal(t, "iPhone 13 Pro 128GB Sierra Blue: 2 found, iPhone 13 Pro 128GB Graphite: 1 found", summary)
	})

	t.Run("한 매장 안의 중복 모델은 1회만 집계됨", func(t *testing.T) {
		result := availabilityResult{
			{
				Store: store{Number: "R452"},
				Parts: []partAvailability{
					{PartNumber: "MKGT3LL/A", State: stateAvailable},
					{PartNumber: "MKGT3LL/A", State: stateAvailable},
				},
			},
		}

		summary := renderSummary(result, resolveName)

		assert.Equal(t, "iPhone 13 Pro 128GB Sierra Blue: 1 found", summary)
	})

	t.Run("카탈로그에 없는 모델은 SKU를 그대로 표시함", func(t *testing.T) {
		result := availabilityResult{
			{
				Store: store{Number: "R452"},
				Parts: []partAvailability{
					{PartNumber: "ZZZZ9XX/A", State: stateAvailable},
				},
			},
		}

		summary := renderSummary(result, resolveName)

		assert.Equal(t, "ZZZZ9XX/A: 1 found", summary)
	})

	t.Run("빈 결과는 빈 요약 반환", func(t *testing.T) {
		assert.Empty(t, renderSummary(nil, resolveName))
	})
}

func TestRenderStoreList(t *testing.T) {
	catalog, exists := catalogFor("US")
	require.True(t, exists)
	resolveName := newProductNameResolver(catalog, nil)

	t.Run("텍스트 채널 렌더링", func(t *testing.T) {
		rendered := renderStoreList(newBoulderResult(), false, resolveName)

		assert.Contains(t, rendered, "☞ Twenty Ninth St (Boulder, CO)")
		assert.Contains(t, rendered, "• iPhone 13 Pro 128GB Sierra Blue")
		assert.NotContains(t, rendered, "<b>")
	})

	t.Run("HTML 채널 렌더링", func(t *testing.T) {
		rendered := renderStoreList(newBoulderResult(), true, resolveName)

		assert.Contains(t, rendered, "☞ <b>Twenty Ninth St</b> (Boulder, CO)")
	})

	t.Run("HTML 채널에서는 매장명의 특수문자가 이스케이프됨", func(t *testing.T) {
		result := availabilityResult{
			{
				Store: store{Name: "Apple <Store> & Co", Number: "R452", City: "Boulder", State: "CO"},
				Parts: []partAvailability{{PartNumber: "MKGT3LL/A", State: stateAvailable}},
			},
		}

		rendered := renderStoreList(result, true, resolveName)

		assert.Contains(t, rendered, "Apple &lt;Store&gt; &amp; Co")
	})

	t.Run("여러 매장은 빈 줄로 구분됨", func(t *testing.T) {
		result := availabilityResult{
			{
				Store: store{Name: "Twenty Ninth St", Number: "R452", City: "Boulder", State: "CO"},
				Parts: []partAvailability{{PartNumber: "MKGT3LL/A", State: stateAvailable}},
			},
			{
				Store: store{Name: "Cherry Creek", Number: "R084", City: "Denver", State: "CO"},
				Parts: []partAvailability{{PartNumber: "MKGQ3LL/A", State: stateAvailable}},
			},
		}

		rendered := renderStoreList(result, false, resolveName)

		sections := strings.Split(rendered, "\n\n")
		require.Len(t, sections, 2)
		assert.Contains(t, sections[0], "Twenty Ninth St")
		assert.Contains(t, sections[1], "Cherry Creek")
	})

	t.Run("빈 결과는 빈 문자열 반환", func(t *testing.T) {
		assert.Empty(t, renderStoreList(nil, false, resolveName))
	})
}

func TestRenderWatchConditionsSummary(t *testing.T) {
	settings := &watchPickupSettings{
		Country:         "US",
		StoreNumber:     "R452",
		PreferredModels: []string{"MKGT3LL/A", "MLKN3LL/A"},
	}

	rendered := renderWatchConditionsSummary(settings, []string{"MKGT3LL/A", "MKGQ3LL/A", "MKGP3LL/A"})

	assert.Contains(t, rendered, "• 국가 : US")
	assert.Contains(t, rendered, "• 매장 번호 : R452")
	assert.Contains(t, rendered, "• 감시 모델 : 3개")
	assert.Contains(t, rendered, "• 우선 감시 모델 : MKGT3LL/A, MLKN3LL/A")
}

func TestFormatPreferredModels(t *testing.T) {
	assert.Equal(t, "(없음)", formatPreferredModels(nil))
	assert.Equal(t, "MKGT3LL/A", formatPreferredModels([]string{"MKGT3LL/A"}))
	assert.Equal(t, "MKGT3LL/A, MLKN3LL/A", formatPreferredModels([]string{"MKGT3LL/A", "MLKN3LL/A"}))
}
