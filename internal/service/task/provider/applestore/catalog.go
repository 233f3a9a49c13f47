package applestore

// countryCatalog 특정 국가에서 판매되는 모델(SKU)의 참조 데이터입니다.
//
// 바이너리에 포함되는 읽기 전용 데이터이며, Command 설정에서 models나
// product_names를 지정하면 이 데이터를 대체하거나 보강할 수 있습니다.
type countryCatalog struct {
	// skus 재고 조회 시 사용되는 모델 목록입니다. 순서가 곧 쿼리 파라미터의 인덱스 순서입니다.
	skus []string

	// names SKU를 사람이 읽을 수 있는 제품명으로 변환하는 매핑입니다.
	names map[string]string
}

// catalogs 국가 코드별 기본 카탈로그입니다. (iPhone 13 Pro / Pro Max 미국 출시 모델 기준)
var catalogs = map[string]*countryCatalog{
	"US": {
		skus: []string{
			"MKGT3LL/A",
			"MKGQ3LL/A",
			"MKGP3LL/A",
			"MKGR3LL/A",
			"MLKN3LL/A",
			"MLKP3LL/A",
			"MLKQ3LL/A",
			"MLKR3LL/A",
		},
		names: map[string]string{
			"MKGT3LL/A": "iPhone 13 Pro 128GB Sierra Blue",
			"MKGQ3LL/A": "iPhone 13 Pro 128GB Graphite",
			"MKGP3LL/A": "iPhone 13 Pro 128GB Gold",
			"MKGR3LL/A": "iPhone 13 Pro 128GB Silver",
			"MLKN3LL/A": "iPhone 13 Pro Max 128GB Sierra Blue",
			"MLKP3LL/A": "iPhone 13 Pro Max 128GB Graphite",
			"MLKQ3LL/A": "iPhone 13 Pro Max 128GB Gold",
			"MLKR3LL/A": "iPhone 13 Pro Max 128GB Silver",
		},
	},
}

// catalogFor 주어진 국가 코드의 기본 카탈로그를 반환합니다.
// 해당 국가의 카탈로그가 없으면 두 번째 반환값이 false입니다.
func catalogFor(country string) (*countryCatalog, bool) {
	catalog, exists := catalogs[country]
	return catalog, exists
}

// productNameResolver SKU를 제품명으로 변환하는 조회 함수 타입입니다.
// 이름을 확인할 수 없는 SKU는 원본 SKU 문자열을 그대로 반환해야 합니다.
type productNameResolver func(sku string) string

// newProductNameResolver 카탈로그 매핑과 설정의 재정의(overrides)를 결합한 조회 함수를 생성합니다.
// 재정의가 카탈로그보다 우선하며, 둘 다 없으면 원본 SKU로 폴백합니다.
func newProductNameResolver(catalog *countryCatalog, overrides map[string]string) productNameResolver {
	return func(sku string) string {
		if name, exists := overrides[sku]; exists {
			return name
		}
		if catalog != nil {
			if name, exists := catalog.names[sku]; exists {
				return name
			}
		}
		return sku
	}
}
