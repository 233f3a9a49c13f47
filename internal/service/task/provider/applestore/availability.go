package applestore

// storeAvailability 픽업 가능한 모델이 하나 이상 존재하는 매장과 그 모델 목록의 쌍입니다.
//
// 불변식: Parts는 비어 있지 않으며, 모든 요소의 State는 stateAvailable입니다.
// 픽업 가능한 모델이 없는 매장은 이 구조체로 표현되지 않고 결과에서 완전히 제외됩니다.
type storeAvailability struct {
	Store store `json:"store"`

	// Parts 해당 매장에서 픽업 가능한 모델 목록입니다.
	Parts []partAvailability `json:"parts"`
}

// availabilityResult 픽업 가능 매장 목록입니다. 순서는 응답의 매장 순서를 따릅니다.
type availabilityResult []storeAvailability

// isEmpty 픽업 가능한 매장이 하나도 없는지 여부를 반환합니다.
func (r availabilityResult) isEmpty() bool {
	return len(r) == 0
}

// filterAvailable 파싱된 매장 목록에서 실제로 픽업 가능한 모델만 남깁니다.
//
// 매장별로 상태가 stateAvailable인 파트만 유지하고, 남은 파트가 없는 매장은
// 결과에서 제외합니다. 입력 매장 순서를 보존하는 순수 함수이며,
// 같은 입력에 대해 항상 같은 결과를 반환합니다(멱등).
func filterAvailable(stores []store) availabilityResult {
	result := make(availabilityResult, 0, len(stores))

	for _, s := range stores {
		var availableParts []partAvailability
		for _, part := range s.Parts {
			if part.State == stateAvailable {
				availableParts = append(availableParts, part)
			}
		}

		if len(availableParts) == 0 {
			continue
		}

		// 필터링된 파트 목록으로 교체한 사본을 담습니다. 원본 입력은 변경하지 않습니다.
		filteredStore := s
		filteredStore.Parts = nil

		result = append(result, storeAvailability{
			Store: filteredStore,
			Parts: availableParts,
		})
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
