package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir string) {
	t.Helper()
	manifest := "[package]\nname = \"widget\"\nversion = \"1.2.3\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644))
}

func TestCargoService_SanitizeManifestDir(t *testing.T) {
	t.Run("Should accept directory containing Cargo.toml", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir)
		svc := &cargoService{manifestDir: dir, timeout: DefaultCargoTimeout}
		resolved, err := svc.sanitizeManifestDir()
		require.NoError(t, err)
		assert.NotEmpty(t, resolved)
	})
	t.Run("Should reject empty directory path", func(t *testing.T) {
		svc := &cargoService{manifestDir: "", timeout: DefaultCargoTimeout}
		_, err := svc.sanitizeManifestDir()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})
	t.Run("Should reject missing directory", func(t *testing.T) {
		svc := &cargoService{manifestDir: filepath.Join(t.TempDir(), "missing"), timeout: DefaultCargoTimeout}
		_, err := svc.sanitizeManifestDir()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})
	t.Run("Should reject directory without Cargo.toml", func(t *testing.T) {
		svc := &cargoService{manifestDir: t.TempDir(), timeout: DefaultCargoTimeout}
		_, err := svc.sanitizeManifestDir()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cargo.toml not found")
	})
}

func TestCargoService_Publish(t *testing.T) {
	t.Run("Should reject empty token before invoking cargo", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir)
		svc := NewCargoService(dir)
		err := svc.Publish(context.Background(), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token cannot be empty")
	})
	t.Run("Should fail fast on invalid manifest directory", func(t *testing.T) {
		svc := NewCargoService(filepath.Join(t.TempDir(), "missing"))
		err := svc.Publish(context.Background(), "secret")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid manifest directory")
	})
}

func TestCargoService_PackageID(t *testing.T) {
	t.Run("Should fail fast on invalid manifest directory", func(t *testing.T) {
		svc := NewCargoService(filepath.Join(t.TempDir(), "missing"))
		_, err := svc.PackageID(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid manifest directory")
	})
}
