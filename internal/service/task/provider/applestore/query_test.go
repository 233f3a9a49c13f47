package applestore

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

func TestBuildFulfillmentURL(t *testing.T) {
	t.Run("기본 조회 URL 생성", func(t *testing.T) {
		rawURL, err := buildFulfillmentURL("", "US", "R452", []string{"MKGT3LL/A", "MKGQ3LL/A"})
		require.NoError(t, err)

		assert.Equal(t, "https://www.apple.com/shop/fulfillment-messages?parts.0=MKGT3LL%2FA&parts.1=MKGQ3LL%2FA&searchNearby=true&store=R452", rawURL)
	})

	t.Run("미국 외 국가는 소문자 로케일 경로가 추가됨", func(t *testing.T) {
		rawURL, err := buildFulfillmentURL("", "CA", "R121", []string{"MKGT3LL/A"})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(rawURL, "https://www.apple.com/ca/shop/fulfillment-messages?"), rawURL)
	})

	t.Run("모델 순서가 질의 파라미터 인덱스 순서로 유지됨", func(t *testing.T) {
		// url.Values.Encode()는 키를 사전순으로 정렬하므로 파라미터가 10개를 넘으면
		// parts.10이 parts.2보다 앞에 놓입니다. 직접 조립한 URL은 입력 순서를 유지해야 합니다.
		skus := make([]string, 12)
		for i := range skus {
			skus[i] = fmt.Sprintf("SKU%02d/A", i)
		}

		rawURL, err := buildFulfillmentURL("", "US", "R452", skus)
		require.NoError(t, err)

		previousIndex := -1
		for i, sku := range skus {
			param := fmt.Sprintf("parts.%d=%s", i, url.QueryEscape(sku))
			index := strings.Index(rawURL, param)

			require.NotEqual(t, -1, index, "parts.%d 파라미터가 누락되었습니다", i)
			assert.Greater(t, index, previousIndex, "parts.%d 파라미터의 순서가 올바르지 않습니다", i)

			previousIndex = index
		}
	})

	t.Run("searchNearby와 store 파라미터는 정확히 한 번씩 포함됨", func(t *testing.T) {
		rawURL, err := buildFulfillmentURL("", "US", "R452", []string{"MKGT3LL/A"})
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(rawURL, "searchNearby=true"))
		assert.Equal(t, 1, strings.Count(rawURL, "store=R452"))
	})

	t.Run("모델 식별자의 특수문자가 이스케이프됨", func(t *testing.T) {
		rawURL, err := buildFulfillmentURL("", "US", "R452", []string{"MKGT3LL/A"})
		require.NoError(t, err)

		assert.Contains(t, rawURL, "parts.0=MKGT3LL%2FA")
		assert.NotContains(t, rawURL, "parts.0=MKGT3LL/A")
	})

	t.Run("기본 URL 재정의", func(t *testing.T) {
		rawURL, err := buildFulfillmentURL("https://reserve-prime.apple.com/", "US", "R452", []string{"MKGT3LL/A"})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(rawURL, "https://reserve-prime.apple.com/shop/fulfillment-messages?"), rawURL)
	})

	t.Run("감시 모델이 없으면 에러 반환", func(t *testing.T) {
		_, err := buildFulfillmentURL("", "US", "R452", nil)

		require.ErrorIs(t, err, ErrModelsMissing)
	})

	t.Run("매장 번호가 없으면 에러 반환", func(t *testing.T) {
		_, err := buildFulfillmentURL("", "US", "   ", []string{"MKGT3LL/A"})

		require.ErrorIs(t, err, ErrStoreNumberMissing)
	})

	t.Run("잘못된 기본 URL은 InvalidInput 에러 반환", func(t *testing.T) {
		_, err := buildFulfillmentURL("apple.com", "US", "R452", []string{"MKGT3LL/A"})

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}

func TestLocaleSegment(t *testing.T) {
	testCases := []struct {
		country  string
		expected string
	}{
		{country: "US", expected: ""},
		{country: "", expected: ""},
		{country: "CA", expected: "ca/"},
		{country: "JP", expected: "jp/"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, localeSegment(tc.country), "country=%q", tc.country)
	}
}
