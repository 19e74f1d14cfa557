package repository

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRepository_ReadCrate(t *testing.T) {
	t.Run("Should read package name and version", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		manifest := `[package]
name = "widget"
version = "1.2.3"
edition = "2021"

[dependencies]
serde = "1"
`
		require.NoError(t, afero.WriteFile(fs, "crate/Cargo.toml", []byte(manifest), 0o644))
		repo := NewManifestRepository(fs)
		crate, err := repo.ReadCrate("crate")
		require.NoError(t, err)
		assert.Equal(t, "widget", crate.Name)
		assert.Equal(t, "1.2.3", crate.Version)
		assert.True(t, crate.Publishable())
	})
	t.Run("Should surface publish = false", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		manifest := "[package]\nname = \"widget\"\nversion = \"1.2.3\"\npublish = false\n"
		require.NoError(t, afero.WriteFile(fs, "Cargo.toml", []byte(manifest), 0o644))
		repo := NewManifestRepository(fs)
		crate, err := repo.ReadCrate(".")
		require.NoError(t, err)
		assert.False(t, crate.Publishable())
	})
	t.Run("Should fail when manifest is missing", func(t *testing.T) {
		repo := NewManifestRepository(afero.NewMemMapFs())
		crate, err := repo.ReadCrate(".")
		require.Error(t, err)
		assert.Nil(t, crate)
	})
	t.Run("Should fail when package section is absent", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "Cargo.toml", []byte("[workspace]\nmembers = []\n"), 0o644))
		repo := NewManifestRepository(fs)
		crate, err := repo.ReadCrate(".")
		require.Error(t, err)
		assert.Nil(t, crate)
		assert.Contains(t, err.Error(), "no package name")
	})
	t.Run("Should fail on malformed toml", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "Cargo.toml", []byte("[package\nname ="), 0o644))
		repo := NewManifestRepository(fs)
		_, err := repo.ReadCrate(".")
		assert.Error(t, err)
	})
}
