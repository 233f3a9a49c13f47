package applestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchPickupSettingsValidate(t *testing.T) {
	t.Run("국가 코드가 정규화되고 기본값이 적용됨", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected string
		}{
			{input: "", expected: "US"},
			{input: "  ", expected: "US"},
			{input: "us", expected: "US"},
			{input: " ca ", expected: "CA"},
		}

		for _, tc := range testCases {
			settings := &watchPickupSettings{Country: tc.input, StoreNumber: "R452"}

			require.NoError(t, settings.Validate())
			assert.Equal(t, tc.expected, settings.Country, "input=%q", tc.input)
		}
	})

	t.Run("매장 번호가 없으면 에러 반환", func(t *testing.T) {
		settings := &watchPickupSettings{Country: "US"}

		require.ErrorIs(t, settings.Validate(), ErrStoreNumberMissing)
	})

	t.Run("잘못된 기본 URL은 에러 반환", func(t *testing.T) {
		settings := &watchPickupSettings{StoreNumber: "R452", BaseURL: "apple.com"}

		require.ErrorIs(t, settings.Validate(), ErrMalformedBaseURL)
	})

	t.Run("유효한 기본 URL은 허용됨", func(t *testing.T) {
		settings := &watchPickupSettings{StoreNumber: "R452", BaseURL: "https://www.apple.com"}

		require.NoError(t, settings.Validate())
	})
}

func TestWatchPickupSettingsPreferredSet(t *testing.T) {
	settings := &watchPickupSettings{
		PreferredModels: []string{"MKGT3LL/A", "  MLKN3LL/A  ", "", "   "},
	}

	set := settings.preferredSet()

	assert.Len(t, set, 2)
	assert.Contains(t, set, "MKGT3LL/A")
	assert.Contains(t, set, "MLKN3LL/A")
}

func TestWatchPriceSettingsValidate(t *testing.T) {
	t.Run("기본값이 적용됨", func(t *testing.T) {
		settings := &watchPriceSettings{ProductURL: "https://www.apple.com/shop/buy-iphone/iphone-13-pro"}

		require.NoError(t, settings.Validate())
		assert.Equal(t, defaultPriceSelector, settings.Selector)
		assert.Equal(t, settings.ProductURL, settings.ProductName)
	})

	t.Run("상품 URL이 없거나 잘못되면 에러 반환", func(t *testing.T) {
		for _, productURL := range []string{"", "   ", "apple.com/shop"} {
			settings := &watchPriceSettings{ProductURL: productURL}

			require.ErrorIs(t, settings.Validate(), ErrProductURLMissing, "product_url=%q", productURL)
		}
	})

	t.Run("지정된 셀렉터와 상품명이 유지됨", func(t *testing.T) {
		settings := &watchPriceSettings{
			ProductURL:  "https://www.apple.com/shop/buy-iphone/iphone-13-pro",
			Selector:    "div.price span",
			ProductName: "아이폰 13 프로",
		}

		require.NoError(t, settings.Validate())
		assert.Equal(t, "div.price span", settings.Selector)
		assert.Equal(t, "아이폰 13 프로", settings.ProductName)
	})
}
