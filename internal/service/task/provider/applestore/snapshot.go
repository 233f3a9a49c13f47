package applestore

// availabilityKey 픽업 가능 상태의 최소 식별 단위인 (매장 번호, 모델 번호) 쌍입니다.
type availabilityKey struct {
	StoreNumber string
	PartNumber  string
}

// watchPickupSnapshot 매장 픽업 감시 작업의 특정 시점 상태를 기록하는 스냅샷입니다.
//
// 각 폴링 사이클의 필터링 결과(availabilityResult)를 그대로 보관하며,
// 저장소에 영속화되어 다음 사이클과의 비교 기준으로 활용됩니다.
// 이력은 유지하지 않고 매 사이클 전체를 교체합니다.
type watchPickupSnapshot struct {
	// Stores 픽업 가능한 매장과 모델 목록입니다.
	Stores availabilityResult `json:"stores"`
}

// keySet 스냅샷에 포함된 모든 (매장, 모델) 쌍을 집합으로 반환합니다.
func (s *watchPickupSnapshot) keySet() map[availabilityKey]struct{} {
	set := make(map[availabilityKey]struct{})
	if s == nil {
		return set
	}

	for _, sa := range s.Stores {
		for _, part := range sa.Parts {
			set[availabilityKey{
				StoreNumber: sa.Store.Number,
				PartNumber:  part.PartNumber,
			}] = struct{}{}
		}
	}

	return set
}

// Compare 현재 스냅샷을 이전 스냅샷과 대조하여 픽업 가능 상태의 변화를 추출합니다.
//
// 반환값:
//   - newlyAvailable: 이전에는 없었으나 이번 사이클에 새로 픽업 가능해진 (매장, 모델) 쌍
//   - disappeared: 이전에는 픽업 가능했으나 이번 사이클에 사라진 (매장, 모델) 쌍
//
// 두 반환값이 모두 비어 있으면 변화가 없는 것입니다.
func (s *watchPickupSnapshot) Compare(prev *watchPickupSnapshot) (newlyAvailable, disappeared []availabilityKey) {
	currentKeys := s.keySet()
	prevKeys := prev.keySet()

	// 현재 스냅샷 순서(매장 순서)를 따라 신규 항목을 수집합니다.
	for _, sa := range s.Stores {
		for _, part := range sa.Parts {
			key := availabilityKey{StoreNumber: sa.Store.Number, PartNumber: part.PartNumber}
			if _, exists := prevKeys[key]; !exists {
				newlyAvailable = append(newlyAvailable, key)
			}
		}
	}

	if prev != nil {
		for _, sa := range prev.Stores {
			for _, part := range sa.Parts {
				key := availabilityKey{StoreNumber: sa.Store.Number, PartNumber: part.PartNumber}
				if _, exists := currentKeys[key]; !exists {
					disappeared = append(disappeared, key)
				}
			}
		}
	}

	return newlyAvailable, disappeared
}

// watchPriceSnapshot 상품 가격 감시 작업의 특정 시점 상태를 기록하는 스냅샷입니다.
type watchPriceSnapshot struct {
	// Price 마지막으로 확인된 가격 표시 문자열입니다. (예: "$999.00")
	Price string `json:"price"`
}
