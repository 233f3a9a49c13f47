package applestore

import (
	"bytes"

	"github.com/tidwall/gjson"

	applog "github.com/darkkaiser/applestore-notifier/pkg/log"
)

// availabilityState 특정 매장에서의 모델 픽업 가능 상태입니다.
type availabilityState string

const (
	// stateAvailable 해당 매장에서 픽업이 가능한 상태입니다.
	stateAvailable availabilityState = "available"

	// stateUnavailable 해당 매장에서 현재 재고가 없는 상태입니다.
	stateUnavailable availabilityState = "unavailable"

	// stateIneligible 해당 매장에서 픽업 대상이 아닌 상태입니다.
	stateIneligible availabilityState = "ineligible"
)

// isValid 응답의 pickupDisplay 값이 정의된 상태 토큰과 정확히(대소문자 구분) 일치하는지 확인합니다.
func (s availabilityState) isValid() bool {
	switch s {
	case stateAvailable, stateUnavailable, stateIneligible:
		return true
	}
	return false
}

// partAvailability 단일 매장에서의 모델별 픽업 가능 정보입니다. 응답에서 생성된 후 변경되지 않습니다.
type partAvailability struct {
	// PartNumber 모델(SKU) 식별자입니다. (예: "MKGT3LL/A")
	PartNumber string `json:"part_number"`

	// State 픽업 가능 상태입니다.
	State availabilityState `json:"state"`
}

// store 재고 조회 응답에 포함된 단일 매장 정보입니다.
type store struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	City   string `json:"city"`
	State  string `json:"state"`

	// Parts 이 매장의 모델별 픽업 가능 정보 목록입니다.
	// 응답 JSON의 partsAvailability 객체 순회 순서를 따르며, 순서는 보장되지 않습니다.
	Parts []partAvailability `json:"parts"`
}

// locationDescription 매장의 위치를 "{city}, {state}" 형식으로 반환합니다.
func (s *store) locationDescription() string {
	return s.City + ", " + s.State
}

// parseFulfillmentResponse 재고 조회 응답의 원본 바이트를 매장 목록으로 파싱합니다.
//
// 응답 구조는 계약으로 보장되지 않으므로 두 단계의 허용 수준을 적용합니다:
//   - 구조 수준에서는 엄격하게: 응답이 비어 있거나, JSON 객체가 아니거나,
//     body.content.pickupMessage.stores 경로가 누락되면 즉시 실패합니다.
//   - 레코드 수준에서는 관대하게: 필수 필드(storeName/storeNumber/state/city/
//     partsAvailability)가 누락된 매장 레코드와, partNumber가 없거나
//     pickupDisplay가 정의된 상태 토큰과 일치하지 않는 파트 레코드는
//     조용히 건너뛰고(디버그 로그만 기록) 나머지를 계속 파싱합니다.
//
// 매장 출력 순서는 응답 배열 순서를 따릅니다.
func parseFulfillmentResponse(data []byte) ([]store, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyResponse
	}

	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedJSON
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, ErrMalformedJSON
	}

	storesField := parsed.Get("body.content.pickupMessage.stores")
	if !storesField.Exists() || !storesField.IsArray() {
		return nil, newErrUnexpectedShape("body.content.pickupMessage.stores")
	}

	logger := applog.WithComponent(component)

	var stores []store
	storesField.ForEach(func(_, storeRecord gjson.Result) bool {
		parsedStore, ok := parseStoreRecord(storeRecord)
		if !ok {
			logger.WithFields(applog.Fields{
				"store_record": truncateForLog(storeRecord.Raw),
			}).Debug("필수 필드가 누락된 매장 레코드를 건너뜁니다")

			return true
		}

		stores = append(stores, parsedStore)
		return true
	})

	return stores, nil
}

// parseStoreRecord 단일 매장 레코드를 파싱합니다.
// 필수 필드가 하나라도 누락되면 두 번째 반환값이 false입니다.
func parseStoreRecord(record gjson.Result) (store, bool) {
	if !record.IsObject() {
		return store{}, false
	}

	name := record.Get("storeName")
	number := record.Get("storeNumber")
	state := record.Get("state")
	city := record.Get("city")
	partsField := record.Get("partsAvailability")

	if name.Type != gjson.String || number.Type != gjson.String ||
		state.Type != gjson.String || city.Type != gjson.String ||
		!partsField.IsObject() {
		return store{}, false
	}

	parsedStore := store{
		Name:   name.String(),
		Number: number.String(),
		City:   city.String(),
		State:  state.String(),
	}

	partsField.ForEach(func(_, partRecord gjson.Result) bool {
		part, ok := parsePartRecord(partRecord)
		if !ok {
			// 개별 파트 레코드의 결함은 매장 전체를 버리지 않습니다.
			return true
		}

		parsedStore.Parts = append(parsedStore.Parts, part)
		return true
	})

	return parsedStore, true
}

// parsePartRecord 단일 파트 레코드를 파싱합니다.
// partNumber가 없거나 pickupDisplay가 정의된 상태 토큰이 아니면 두 번째 반환값이 false입니다.
func parsePartRecord(record gjson.Result) (partAvailability, bool) {
	if !record.IsObject() {
		return partAvailability{}, false
	}

	partNumber := record.Get("partNumber")
	pickupDisplay := record.Get("pickupDisplay")

	if partNumber.Type != gjson.String || pickupDisplay.Type != gjson.String {
		return partAvailability{}, false
	}

	state := availabilityState(pickupDisplay.String())
	if !state.isValid() {
		return partAvailability{}, false
	}

	return partAvailability{
		PartNumber: partNumber.String(),
		State:      state,
	}, true
}

// maxLogRecordBytes 레코드 스킵 로그에 남길 원본 JSON의 최대 길이입니다.
const maxLogRecordBytes = 256

// truncateForLog 로그에 남길 원본 레코드를 과도하게 길지 않게 자릅니다.
func truncateForLog(raw string) string {
	if len(raw) <= maxLogRecordBytes {
		return raw
	}
	return raw[:maxLogRecordBytes] + "..."
}
