package repository

import (
	"fmt"
	"path/filepath"

	"github.com/crateops/cargoship/internal/domain"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// ManifestRepository reads crate metadata from Cargo.toml.
type ManifestRepository interface {
	ReadCrate(manifestDir string) (*domain.Crate, error)
}

// cargoManifest mirrors the parts of Cargo.toml this tool reads.
type cargoManifest struct {
	Package *domain.Crate `toml:"package"`
}

type manifestRepository struct {
	fs afero.Fs
}

// NewManifestRepository creates a ManifestRepository over the given filesystem.
func NewManifestRepository(fs afero.Fs) ManifestRepository {
	return &manifestRepository{fs: fs}
}

// ReadCrate parses the package section of Cargo.toml in manifestDir.
func (r *manifestRepository) ReadCrate(manifestDir string) (*domain.Crate, error) {
	path := filepath.Join(manifestDir, "Cargo.toml")
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if manifest.Package == nil || manifest.Package.Name == "" {
		return nil, fmt.Errorf("%s has no package name", path)
	}
	return manifest.Package, nil
}
