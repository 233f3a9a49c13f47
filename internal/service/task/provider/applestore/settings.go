package applestore

import (
	"net/url"
	"strings"

	"github.com/darkkaiser/applestore-notifier/internal/service/task/provider"
)

// watchPickupSettings 매장 픽업 감시(WatchPickup) Command의 실행 설정입니다.
//
// 설정 파일의 해당 Command data 블록에서 디코딩되며, 국가/매장/모델 선택을
// 모두 명시적인 설정 객체로 전달받습니다. (전역 저장소를 통한 암묵적 공유 없음)
type watchPickupSettings struct {
	// Country 조회 대상 국가 코드입니다. (기본값: "US")
	Country string `json:"country"`

	// StoreNumber 조회 대상 매장 번호입니다. (필수, 예: "R452")
	StoreNumber string `json:"store_number"`

	// Models 조회할 모델(SKU) 목록입니다. 비어 있으면 해당 국가의 기본 카탈로그 순서를 사용합니다.
	Models []string `json:"models"`

	// PreferredModels 우선 감시 대상 모델 목록입니다.
	// 이 중 하나라도 픽업 가능해지면 알림 제목이 달라집니다.
	PreferredModels []string `json:"preferred_models"`

	// ProductNames SKU를 제품명으로 변환할 때 기본 카탈로그보다 우선 적용되는 재정의 매핑입니다.
	ProductNames map[string]string `json:"product_names"`

	// NotifyWhenEmpty 픽업 가능한 매장이 모두 사라졌을 때에도 알림을 보낼지 여부입니다. (기본값: false)
	NotifyWhenEmpty bool `json:"notify_when_empty"`

	// BaseURL 재고 조회 요청의 호스트입니다. (기본값: https://www.apple.com)
	BaseURL string `json:"base_url"`
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ provider.Validator = (*watchPickupSettings)(nil)

func (s *watchPickupSettings) Validate() error {
	s.Country = strings.ToUpper(strings.TrimSpace(s.Country))
	if s.Country == "" {
		s.Country = defaultCountry
	}

	s.StoreNumber = strings.TrimSpace(s.StoreNumber)
	if s.StoreNumber == "" {
		return ErrStoreNumberMissing
	}

	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.BaseURL != "" {
		parsed, err := url.Parse(s.BaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return ErrMalformedBaseURL
		}
	}

	return nil
}

// preferredSet PreferredModels를 빠른 조회를 위한 집합으로 변환하여 반환합니다.
func (s *watchPickupSettings) preferredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.PreferredModels))
	for _, sku := range s.PreferredModels {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		set[sku] = struct{}{}
	}
	return set
}

// defaultPriceSelector 가격 감시 Command에서 별도 설정이 없을 때 사용하는 CSS 셀렉터입니다.
const defaultPriceSelector = "span.price"

// watchPriceSettings 상품 가격 감시(WatchPrice) Command의 실행 설정입니다.
type watchPriceSettings struct {
	// ProductURL 가격을 조회할 상품 페이지 URL입니다. (필수)
	ProductURL string `json:"product_url"`

	// Selector 가격 요소를 찾기 위한 CSS 셀렉터입니다. (기본값: defaultPriceSelector)
	Selector string `json:"selector"`

	// ProductName 알림 메시지에 표시할 상품명입니다. (비어 있으면 URL을 그대로 표시)
	ProductName string `json:"product_name"`
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ provider.Validator = (*watchPriceSettings)(nil)

func (s *watchPriceSettings) Validate() error {
	s.ProductURL = strings.TrimSpace(s.ProductURL)
	if s.ProductURL == "" {
		return ErrProductURLMissing
	}

	parsed, err := url.Parse(s.ProductURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrProductURLMissing
	}

	s.Selector = strings.TrimSpace(s.Selector)
	if s.Selector == "" {
		s.Selector = defaultPriceSelector
	}

	s.ProductName = strings.TrimSpace(s.ProductName)
	if s.ProductName == "" {
		s.ProductName = s.ProductURL
	}

	return nil
}
