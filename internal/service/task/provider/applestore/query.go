package applestore

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// defaultBaseURL 재고 조회 요청의 기본 호스트입니다.
	defaultBaseURL = "https://www.apple.com"

	// defaultCountry 로케일 경로가 생략되는 기본 국가 코드입니다.
	defaultCountry = "US"

	// fulfillmentPath 매장 수령(In-Store Pickup) 가능 여부를 조회하는 엔드포인트 경로입니다.
	fulfillmentPath = "shop/fulfillment-messages"
)

// buildFulfillmentURL 매장 재고 조회 요청의 최종 URL을 조립합니다.
//
// 쿼리 문자열은 `parts.0=<sku0>&parts.1=<sku1>&...&searchNearby=true&store=<storeNumber>`
// 형식이며, parts 인덱스는 입력 SKU 목록의 순서 그대로 0부터 빈틈없이 증가합니다.
//
// url.Values를 사용하면 Encode() 시점에 키가 사전순으로 정렬되어
// SKU가 10개 이상일 때 parts.10이 parts.2보다 앞에 놓이는 문제가 있으므로,
// 순서 보존을 위해 쿼리 문자열을 직접 조립합니다. SKU에 포함된 '/' 등의
// 문자는 url.QueryEscape로 이스케이프됩니다.
//
// URL 경로의 로케일 구간은 국가 코드에서 파생됩니다:
// 기본 국가(US)는 빈 구간, 그 외에는 소문자 "{countryCode}/"입니다.
//
// 매개변수:
//   - baseURL: 요청 호스트 (빈 문자열이면 defaultBaseURL 사용)
//   - country: 국가 코드 (예: "US", "KR")
//   - storeNumber: 조회할 매장 번호 (예: "R452")
//   - skus: 조회할 모델 목록 (카탈로그 순서)
//
// 반환값:
//   - string: 조립된 요청 URL
//   - error: SKU 목록이 비어 있거나, 매장 번호가 누락되었거나, baseURL을
//     해석할 수 없는 경우 (이 경우 폴링 사이클은 네트워크 요청 전에 중단됩니다)
func buildFulfillmentURL(baseURL, country, storeNumber string, skus []string) (string, error) {
	if len(skus) == 0 {
		return "", ErrModelsMissing
	}
	if strings.TrimSpace(storeNumber) == "" {
		return "", ErrStoreNumberMissing
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		return "", newErrQueryConstructionFailed(err, baseURL)
	}
	if parsedBase.Scheme == "" || parsedBase.Host == "" {
		return "", newErrQueryConstructionFailed(ErrMalformedBaseURL, baseURL)
	}

	var sb strings.Builder

	sb.WriteString(strings.TrimSuffix(parsedBase.String(), "/"))
	sb.WriteByte('/')
	sb.WriteString(localeSegment(country))
	sb.WriteString(fulfillmentPath)
	sb.WriteByte('?')

	for i, sku := range skus {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString("parts.")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(sku))
	}

	sb.WriteString("&searchNearby=true&store=")
	sb.WriteString(url.QueryEscape(storeNumber))

	return sb.String(), nil
}

// localeSegment 국가 코드에서 URL 경로의 로케일 구간을 파생합니다.
// 기본 국가(US)는 빈 문자열, 그 외에는 소문자 국가 코드 뒤에 '/'를 붙여 반환합니다.
func localeSegment(country string) string {
	if country == "" || country == defaultCountry {
		return ""
	}
	return strings.ToLower(country) + "/"
}
