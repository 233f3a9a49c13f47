package maputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"interval"`
	Tags     []string      `json:"tags"`
	Secret   []byte        `json:"secret"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("기본 디코딩: json 태그 기준으로 매핑된다", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"name":    "applestore",
			"count":   3,
			"enabled": true,
		}

		result, err := Decode[decodeTarget](input)
		require.NoError(t, err)

		assert.Equal(t, "applestore", result.Name)
		assert.Equal(t, 3, result.Count)
		assert.True(t, result.Enabled)
	})

	t.Run("유연한 타입 변환: 문자열 숫자를 int로 변환한다", func(t *testing.T) {
		t.Parallel()

		result, err := Decode[decodeTarget](map[string]any{"count": "42"})
		require.NoError(t, err)

		assert.Equal(t, 42, result.Count)
	})

	t.Run("내장 훅: 문자열을 time.Duration으로 변환한다", func(t *testing.T) {
		t.Parallel()

		result, err := Decode[decodeTarget](map[string]any{"interval": "2m30s"})
		require.NoError(t, err)

		assert.Equal(t, 2*time.Minute+30*time.Second, result.Interval)
	})

	t.Run("내장 훅: 쉼표 구분 문자열을 슬라이스로 변환하며 공백을 제거한다", func(t *testing.T) {
		t.Parallel()

		result, err := Decode[decodeTarget](map[string]any{"tags": "MKGT3LL/A, MKGQ3LL/A"})
		require.NoError(t, err)

		assert.Equal(t, []string{"MKGT3LL/A", "MKGQ3LL/A"}, result.Tags)
	})

	t.Run("내장 훅: base64 접두사 문자열을 []byte로 디코딩한다", func(t *testing.T) {
		t.Parallel()

		result, err := Decode[decodeTarget](map[string]any{"secret": "base64:aGVsbG8="})
		require.NoError(t, err)

		assert.Equal(t, []byte("hello"), result.Secret)
	})

	t.Run("알 수 없는 필드는 기본적으로 무시된다", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[decodeTarget](map[string]any{"unknown_field": "x"})

		assert.NoError(t, err)
	})

	t.Run("WithErrorUnused 옵션은 알 수 없는 필드를 에러로 처리한다", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[decodeTarget](map[string]any{"unknown_field": "x"}, WithErrorUnused(true))

		assert.Error(t, err)
	})
}

func TestDecodeTo(t *testing.T) {
	t.Parallel()

	t.Run("nil output 포인터는 에러를 반환한다", func(t *testing.T) {
		t.Parallel()

		var output *decodeTarget

		assert.Error(t, DecodeTo(map[string]any{}, output))
	})

	t.Run("기본 동작은 기존 값과 병합한다", func(t *testing.T) {
		t.Parallel()

		output := decodeTarget{Name: "유지되어야 함", Count: 1}

		err := DecodeTo(map[string]any{"count": 2}, &output)
		require.NoError(t, err)

		assert.Equal(t, "유지되어야 함", output.Name)
		assert.Equal(t, 2, output.Count)
	})

	t.Run("WithZeroFields는 기존 값을 모두 초기화한다", func(t *testing.T) {
		t.Parallel()

		output := decodeTarget{Name: "지워져야 함"}

		err := DecodeTo(map[string]any{"count": 2}, &output, WithZeroFields(true))
		require.NoError(t, err)

		assert.Empty(t, output.Name)
		assert.Equal(t, 2, output.Count)
	})
}
