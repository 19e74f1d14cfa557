package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrNoVersionSegment is returned when a package identifier carries no
// '#' separated version segment.
var ErrNoVersionSegment = errors.New("package identifier has no version segment")

// Version wraps semver.Version for additional methods.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, err
	}
	return &Version{v}, nil
}

// ParsePackageID extracts the version from a cargo package identifier.
// The identifier has the form "name#version" or "name#prefix:version",
// where the optional prefix before ':' is dropped.
func ParsePackageID(id string) (*Version, error) {
	id = strings.TrimSpace(id)
	idx := strings.LastIndex(id, "#")
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoVersionSegment, id)
	}
	segment := strings.TrimSpace(id[idx+1:])
	if segment == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoVersionSegment, id)
	}
	if colon := strings.Index(segment, ":"); colon >= 0 {
		segment = segment[colon+1:]
	}
	v, err := NewVersion(segment)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q in package identifier %q: %w", segment, id, err)
	}
	return v, nil
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// TagName returns the git tag name for this version.
func (v *Version) TagName() string {
	return "v" + v.Version.String()
}

// String returns the version string with v prefix.
func (v *Version) String() string {
	return "v" + v.Version.String()
}
