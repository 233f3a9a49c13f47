package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	bi := Get()

	assert.NotEmpty(t, bi.Version, "버전은 항상 설정되어 있어야 합니다.")
	assert.Equal(t, runtime.Version(), bi.GoVersion)
	assert.Equal(t, runtime.GOOS, bi.OS)
	assert.Equal(t, runtime.GOARCH, bi.Arch)
}

func TestEnrichBuildInfo(t *testing.T) {
	t.Run("런타임 환경 값 채우기", func(t *testing.T) {
		bi := enrichBuildInfo(Info{Version: "v1.0.0"})

		assert.Equal(t, "v1.0.0", bi.Version)
		assert.Equal(t, runtime.Version(), bi.GoVersion)
		assert.Equal(t, runtime.GOOS, bi.OS)
		assert.Equal(t, runtime.GOARCH, bi.Arch)
	})

	t.Run("이미 설정된 값은 유지", func(t *testing.T) {
		bi := enrichBuildInfo(Info{
			Version:   "v2.0.0",
			Commit:    "abcdef1",
			GoVersion: "go1.0",
			OS:        "plan9",
			Arch:      "mips",
		})

		assert.Equal(t, "v2.0.0", bi.Version)
		assert.Equal(t, "abcdef1", bi.Commit)
		assert.Equal(t, "go1.0", bi.GoVersion)
		assert.Equal(t, "plan9", bi.OS)
		assert.Equal(t, "mips", bi.Arch)
	})

	t.Run("VCS 메타데이터 보강", func(t *testing.T) {
		origReadBuildInfo := readBuildInfo
		defer func() { readBuildInfo = origReadBuildInfo }()

		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "3ab91c4f00aa11bb22cc33dd44ee55ff66aa77bb"},
					{Key: "vcs.time", Value: "2026-08-28T09:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			}, true
		}

		bi := enrichBuildInfo(Info{})

		assert.Equal(t, "v1.2.3", bi.Version)
		assert.Equal(t, "3ab91c4f00aa11bb22cc33dd44ee55ff66aa77bb", bi.Commit)
		assert.Equal(t, "2026-08-28T09:00:00Z", bi.BuildDate)
		assert.True(t, bi.DirtyBuild)
	})

	t.Run("메타데이터가 없으면 unknown으로 설정", func(t *testing.T) {
		origReadBuildInfo := readBuildInfo
		defer func() { readBuildInfo = origReadBuildInfo }()

		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return nil, false
		}

		bi := enrichBuildInfo(Info{})

		assert.Equal(t, unknown, bi.Version)
		assert.Equal(t, unknown, bi.Commit)
	})
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{
			name:     "빈 버전",
			info:     Info{},
			expected: unknown,
		},
		{
			name:     "버전만 존재",
			info:     Info{Version: "v1.2.3"},
			expected: "v1.2.3",
		},
		{
			name: "전체 정보",
			info: Info{
				Version:   "v1.2.3",
				Commit:    "3ab91c4f00aa11bb",
				BuildDate: "2026-08-28T09:00:00Z",
				GoVersion: "go1.24.0",
				OS:        "linux",
				Arch:      "amd64",
			},
			expected: "v1.2.3 (commit: 3ab91c4, date: 2026-08-28T09:00:00Z, go_version: go1.24.0, platform: linux/amd64)",
		},
		{
			name: "짧은 커밋 해시는 그대로 출력",
			info: Info{
				Version: "v1.2.3",
				Commit:  "3ab91c4",
			},
			expected: "v1.2.3 (commit: 3ab91c4)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.info.String())
		})
	}
}

func TestInfoStringDirtyBuild(t *testing.T) {
	bi := Info{Version: "v1.2.3", DirtyBuild: true}

	require.Contains(t, bi.String(), "v1.2.3+dirty")
}
