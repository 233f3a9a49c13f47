// Package maputil 맵(Map) 데이터 처리 및 구조체 변환을 위한 유틸리티 기능을 제공합니다.
package maputil

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode 입력된 맵이나 인터페이스 데이터를 제네릭 타입 T의 구조체로 변환하여 반환합니다.
//
// 내부적으로 mapstructure를 사용하며 다음 기본 동작이 적용됩니다:
//   - 유연한 타입 변환(Weakly Typed): "123" -> 123, 1 -> true 등
//   - 임베디드 구조체 평탄화(Squash)
//   - json 태그 기준 필드 매핑
//   - 내장 훅: TextUnmarshaller, time.Duration, Base64 []byte, 쉼표 구분 슬라이스
//
// 기본적으로 ErrorUnused가 꺼져 있으므로, 구조체에 정의되지 않은 필드가
// 입력에 포함되어 있어도 에러 없이 무시됩니다. 엄격한 검증이 필요하면
// WithErrorUnused(true)를 전달하십시오.
func Decode[T any](input any, opts ...Option) (*T, error) {
	output := new(T)

	// new(T)는 이미 Zero Value이므로 중복 초기화를 피하기 위해 기본값을 false로 둡니다.
	baseOpts := []Option{
		WithZeroFields(false),
	}
	allOpts := append(baseOpts, opts...)

	if err := DecodeTo(input, output, allOpts...); err != nil {
		return nil, err
	}
	return output, nil
}

// DecodeTo 입력된 데이터를 대상 구조체 포인터(output)에 디코딩하여 값을 채웁니다.
//
// output은 nil이 아닌 포인터여야 합니다. 기본 동작은 병합(Merge)이며,
// 완전한 교체를 원하면 WithZeroFields(true)를 사용하십시오.
func DecodeTo[T any](input any, output *T, opts ...Option) error {
	if output == nil {
		return errors.New("디코딩 결과를 저장할 output 포인터가 nil입니다")
	}

	cfg := &decodingConfig{
		tagName: "json",

		weaklyTypedInput: true,
		errorUnused:      false,
		squash:           true,
		zeroFields:       false,
		trimSpace:        true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.zeroFields {
		var zero T
		*output = zero
	}

	msConfig := &mapstructure.DecoderConfig{
		Result: output,

		TagName: cfg.tagName,

		WeaklyTypedInput: cfg.weaklyTypedInput,
		ErrorUnused:      cfg.errorUnused,
		Squash:           cfg.squash,

		Metadata:   cfg.metadata,
		MatchName:  cfg.matchName,
		DecodeHook: cfg.buildDecodeHook(),
	}

	decoder, err := mapstructure.NewDecoder(msConfig)
	if err != nil {
		return err
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", output, err)
	}

	return nil
}

// decodingConfig 디코딩 옵션을 한곳에 모아 관리하는 비공개 설정 구조체입니다.
type decodingConfig struct {
	tagName string

	weaklyTypedInput bool
	errorUnused      bool
	squash           bool
	zeroFields       bool
	trimSpace        bool // 쉼표 구분 슬라이스 변환 시 요소 공백 제거 여부

	metadata   *mapstructure.Metadata
	matchName  func(key, field string) bool
	extraHooks []mapstructure.DecodeHookFunc
}

// buildDecodeHook 설정된 옵션을 기반으로 훅 체인을 조립하여 반환합니다.
// 사용자 정의 훅이 기본 내장 훅보다 먼저 실행됩니다.
func (c *decodingConfig) buildDecodeHook() mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(c.extraHooks)+4)

	hooks = append(hooks, c.extraHooks...)

	hooks = append(hooks,
		mapstructure.TextUnmarshallerHookFunc(),
		stringToDurationHookFunc(),         // "10s" -> time.Duration (별칭 타입 미지원)
		stringToBytesHookFunc(),            // "base64:..." -> []byte
		stringToSliceHookFunc(c.trimSpace), // "a,b" -> []string
	)

	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

// Option 디코딩 설정을 커스터마이징하기 위한 함수형 옵션 타입입니다.
type Option func(*decodingConfig)

// WithTagName 구조체 필드 매핑에 사용할 태그 이름을 지정합니다. (기본값: "json")
func WithTagName(tagName string) Option {
	return func(c *decodingConfig) {
		c.tagName = tagName
	}
}

// WithWeaklyTypedInput 타입이 달라도 가능한 경우 자동으로 변환할지 설정합니다. (기본값: true)
func WithWeaklyTypedInput(enable bool) Option {
	return func(c *decodingConfig) {
		c.weaklyTypedInput = enable
	}
}

// WithErrorUnused 구조체에 없는 필드가 입력에 존재하면 에러를 발생시킵니다. (기본값: false)
// 오타로 인한 설정 누락을 조기에 발견할 때 유용합니다.
func WithErrorUnused(enable bool) Option {
	return func(c *decodingConfig) {
		c.errorUnused = enable
	}
}

// WithSquash 임베디드 구조체를 평탄화하여 처리할지 설정합니다. (기본값: true)
func WithSquash(enable bool) Option {
	return func(c *decodingConfig) {
		c.squash = enable
	}
}

// WithDecodeHook 사용자 정의 변환 훅을 추가합니다. 기본 훅보다 먼저 실행됩니다.
func WithDecodeHook(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(c *decodingConfig) {
		c.extraHooks = append(c.extraHooks, hooks...)
	}
}

// WithMetadata 디코딩 과정에서 사용된 키 등의 메타데이터를 수집합니다.
func WithMetadata(md *mapstructure.Metadata) Option {
	return func(c *decodingConfig) {
		c.metadata = md
	}
}

// WithMatchName 필드 이름과 입력 키의 매칭 로직을 커스터마이징합니다.
func WithMatchName(matchFunc func(mapKey, fieldName string) bool) Option {
	return func(c *decodingConfig) {
		c.matchName = matchFunc
	}
}

// WithZeroFields 디코딩 전에 대상 구조체를 Zero Value로 초기화할지 설정합니다.
// true면 병합(Merge)이 아니라 교체(Replace) 방식으로 동작합니다.
func WithZeroFields(enable bool) Option {
	return func(c *decodingConfig) {
		c.zeroFields = enable
	}
}

// WithTrimSpace 쉼표 구분 문자열을 슬라이스로 변환할 때 요소의 앞뒤 공백을 제거할지 설정합니다. (기본값: true)
func WithTrimSpace(enable bool) Option {
	return func(c *decodingConfig) {
		c.trimSpace = enable
	}
}
