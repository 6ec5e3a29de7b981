package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Version
		wantErr bool
	}{
		{name: "valid standard version", input: "1.2.3", want: &Version{Major: 1, Minor: 2, Patch: 3}},
		{name: "valid v-prefixed version", input: "v1.2.3", want: &Version{Major: 1, Minor: 2, Patch: 3}},
		{name: "zero version", input: "0.0.0", want: &Version{}},
		{name: "prerelease", input: "1.0.0-rc.2", want: &Version{Major: 1, Prerelease: "rc.2"}},
		{name: "build metadata", input: "1.0.0+abc123", want: &Version{Major: 1, Build: "abc123"}},
		{name: "prerelease and build", input: "1.0.0-rc.2+abc123", want: &Version{Major: 1, Prerelease: "rc.2", Build: "abc123"}},
		{name: "invalid format", input: "1.2", wantErr: true},
		{name: "non-numeric", input: "a.b.c", wantErr: true},
		{name: "empty string", input: "", want: &Version{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "1.2.3", (&Version{Major: 1, Minor: 2, Patch: 3}).String())
	assert.Equal(t, "0.0.0", (&Version{}).String())
	assert.Equal(t, "1.0.0-rc.1", (&Version{Major: 1, Prerelease: "rc.1"}).String())
	assert.Equal(t, "1.0.0+build5", (&Version{Major: 1, Build: "build5"}).String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		v1   *Version
		v2   *Version
		want int
	}{
		{name: "equal versions", v1: New(1, 2, 3), v2: New(1, 2, 3), want: 0},
		{name: "v1 > v2 by major", v1: New(2, 0, 0), v2: New(1, 9, 9), want: 1},
		{name: "v1 < v2 by minor", v1: New(1, 1, 9), v2: New(1, 2, 0), want: -1},
		{name: "v1 > v2 by patch", v1: New(1, 2, 4), v2: New(1, 2, 3), want: 1},
		{
			name: "release beats prerelease",
			v1:   New(1, 0, 0),
			v2:   &Version{Major: 1, Prerelease: "rc.1"},
			want: 1,
		},
		{
			name: "prerelease numeric identifiers compare numerically",
			v1:   &Version{Major: 1, Prerelease: "rc.2"},
			v2:   &Version{Major: 1, Prerelease: "rc.10"},
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v1.Compare(tt.v2))
		})
	}
}

func TestBump(t *testing.T) {
	tests := []struct {
		name       string
		version    *Version
		changeType string
		want       *Version
	}{
		{name: "bump patch", version: New(1, 2, 3), changeType: "patch", want: New(1, 2, 4)},
		{name: "bump minor resets patch", version: New(1, 2, 3), changeType: "minor", want: New(1, 3, 0)},
		{name: "bump major resets minor and patch", version: New(1, 2, 3), changeType: "major", want: New(2, 0, 0)},
		{
			name:       "patch bump on prerelease replaces prerelease",
			version:    &Version{Major: 1, Minor: 0, Patch: 0, Prerelease: "rc.2"},
			changeType: "patch",
			want:       New(1, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.version.Bump(tt.changeType))
		})
	}
}

func TestRenderSnapshot(t *testing.T) {
	base := New(1, 1, 0)
	got := RenderSnapshot("", base, "feat/x", "abc1234567", "2024-01-01T00:00:00Z")
	assert.Equal(t, "1.1.0-snapshot.abc1234", got)

	got = RenderSnapshot("{version}-{branch}.{commit}", base, "feat/x", "abc1234567", "2024-01-01T00:00:00Z")
	assert.Equal(t, "1.1.0-feat/x.abc1234567", got)
}
