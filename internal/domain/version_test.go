package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersion(t *testing.T) {
	t.Run("Should create valid version from string", func(t *testing.T) {
		version, err := NewVersion("1.2.3")
		require.NoError(t, err)
		assert.NotNil(t, version)
		assert.Equal(t, "v1.2.3", version.String())
	})
	t.Run("Should return error for invalid version string", func(t *testing.T) {
		version, err := NewVersion("invalid")
		assert.Error(t, err)
		assert.Nil(t, version)
	})
	t.Run("Should handle version with v prefix", func(t *testing.T) {
		version, err := NewVersion("v1.2.3")
		require.NoError(t, err)
		assert.Equal(t, "v1.2.3", version.String())
	})
}

func TestParsePackageID(t *testing.T) {
	t.Run("Should extract version from identifier with prefix segment", func(t *testing.T) {
		version, err := ParsePackageID("mypkg#1:2.3.4")
		require.NoError(t, err)
		assert.Equal(t, "v2.3.4", version.String())
	})
	t.Run("Should extract version from plain identifier", func(t *testing.T) {
		version, err := ParsePackageID("mypkg#2.3.4")
		require.NoError(t, err)
		assert.Equal(t, "v2.3.4", version.String())
	})
	t.Run("Should use last hash when name contains one", func(t *testing.T) {
		version, err := ParsePackageID("my#pkg#0:1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", version.String())
	})
	t.Run("Should trim surrounding whitespace", func(t *testing.T) {
		version, err := ParsePackageID("  foo#0:1.0.0\n")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", version.String())
	})
	t.Run("Should be deterministic", func(t *testing.T) {
		first, err := ParsePackageID("mypkg#1:2.3.4")
		require.NoError(t, err)
		second, err := ParsePackageID("mypkg#1:2.3.4")
		require.NoError(t, err)
		assert.Equal(t, 0, first.Compare(second))
	})
	t.Run("Should fail when identifier has no hash", func(t *testing.T) {
		version, err := ParsePackageID("mypkg-2.3.4")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoVersionSegment)
		assert.Nil(t, version)
	})
	t.Run("Should fail when version segment is empty", func(t *testing.T) {
		version, err := ParsePackageID("mypkg#")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoVersionSegment)
		assert.Nil(t, version)
	})
	t.Run("Should fail when segment is not a version", func(t *testing.T) {
		version, err := ParsePackageID("mypkg#0:not-a-version")
		assert.Error(t, err)
		assert.Nil(t, version)
	})
}

func TestVersion_TagName(t *testing.T) {
	t.Run("Should build tag name with v prefix", func(t *testing.T) {
		version, err := ParsePackageID("foo#0:1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", version.TagName())
	})
}

func TestVersion_Compare(t *testing.T) {
	t.Run("Should compare versions correctly", func(t *testing.T) {
		v1, err := NewVersion("1.2.3")
		require.NoError(t, err)
		v2, err := NewVersion("1.2.4")
		require.NoError(t, err)
		assert.Equal(t, -1, v1.Compare(v2))
		assert.Equal(t, 1, v2.Compare(v1))
	})
}

func TestCrate_Publishable(t *testing.T) {
	t.Run("Should treat missing publish key as publishable", func(t *testing.T) {
		crate := &Crate{Name: "foo", Version: "1.0.0"}
		assert.True(t, crate.Publishable())
	})
	t.Run("Should respect explicit publish false", func(t *testing.T) {
		noPublish := false
		crate := &Crate{Name: "foo", Version: "1.0.0", Publish: &noPublish}
		assert.False(t, crate.Publishable())
	})
}
