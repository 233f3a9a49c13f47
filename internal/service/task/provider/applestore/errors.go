package applestore

import (
	apperrors "github.com/darkkaiser/applestore-notifier/internal/pkg/errors"
)

var (
	// ErrEmptyResponse 재고 조회 요청에 대한 응답 본문이 비어 있을 때 반환됩니다.
	// 네트워크 오류 등으로 응답 데이터를 전혀 수신하지 못한 상태를 나타냅니다.
	ErrEmptyResponse = apperrors.New(apperrors.ParsingFailed, "응답 데이터가 비어 있습니다")

	// ErrMalformedJSON 응답 본문이 JSON 객체로 해석되지 않을 때 반환됩니다.
	ErrMalformedJSON = apperrors.New(apperrors.ParsingFailed, "응답 데이터가 유효한 JSON 객체가 아닙니다")

	// ErrUnexpectedShape 응답 JSON에서 매장 목록으로 이어지는 필수 경로
	// (body.content.pickupMessage.stores)가 누락되었을 때 반환됩니다.
	ErrUnexpectedShape = apperrors.New(apperrors.ParsingFailed, "응답 데이터의 구조가 예상과 다릅니다")

	// ErrStoreNumberMissing Command 설정에 store_number가 누락되었거나 공백일 때 반환됩니다.
	ErrStoreNumberMissing = apperrors.New(apperrors.InvalidInput, "store_number는 필수 설정값입니다")

	// ErrModelsMissing 조회할 SKU 목록을 결정할 수 없을 때 반환됩니다.
	// models 설정이 비어 있고 해당 국가의 기본 카탈로그도 존재하지 않는 상태입니다.
	ErrModelsMissing = apperrors.New(apperrors.InvalidInput, "조회할 모델(SKU) 목록이 비어 있습니다")

	// ErrProductURLMissing 가격 감시 Command 설정에 product_url이 누락되었거나 공백일 때 반환됩니다.
	ErrProductURLMissing = apperrors.New(apperrors.InvalidInput, "product_url은 필수 설정값입니다")

	// ErrMalformedBaseURL base_url 설정이 스킴이나 호스트가 없는 불완전한 URL일 때 반환됩니다.
	ErrMalformedBaseURL = apperrors.New(apperrors.InvalidInput, "base_url이 유효한 URL이 아닙니다")
)

// newErrQueryConstructionFailed 재고 조회 URL 조립에 실패했을 때 상세 에러를 생성합니다.
// 이 에러가 반환되면 해당 폴링 사이클은 네트워크 요청 없이 즉시 중단됩니다.
func newErrQueryConstructionFailed(cause error, baseURL string) error {
	return apperrors.Wrapf(cause, apperrors.InvalidInput, "재고 조회 URL 조립에 실패했습니다 (base_url: %s)", baseURL)
}

// newErrUnexpectedShape 필수 경로 누락 지점을 포함한 구조 오류를 생성합니다.
func newErrUnexpectedShape(path string) error {
	return apperrors.Wrapf(ErrUnexpectedShape, apperrors.ParsingFailed, "응답 데이터의 구조가 예상과 다릅니다 (missing: %s)", path)
}

// newErrPriceNotFound 상품 페이지에서 가격 요소를 찾지 못했을 때 상세 에러를 생성합니다.
func newErrPriceNotFound(url, selector string) error {
	return apperrors.Newf(apperrors.ParsingFailed, "상품 페이지에서 가격 정보를 찾을 수 없습니다 (url: %s, selector: %s)", url, selector)
}
