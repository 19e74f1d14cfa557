package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const githubActionsTrue = "true"

// cargoService is the implementation of the CargoService interface.
type cargoService struct {
	// directory containing the Cargo.toml manifest
	manifestDir string
	// timeout for command execution
	timeout time.Duration
}

// NewCargoService creates a new CargoService for the given manifest directory.
func NewCargoService(manifestDir string) CargoService {
	return &cargoService{
		manifestDir: manifestDir,
		timeout:     DefaultCargoTimeout,
	}
}

// resolvePathWithSymlinks resolves a path and evaluates symlinks.
func (s *cargoService) resolvePathWithSymlinks(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return absPath, nil
		}
		return "", fmt.Errorf("failed to resolve symlinks: %w", err)
	}
	return resolvedPath, nil
}

// sanitizeManifestDir validates the manifest directory before any cargo
// invocation runs in it.
func (s *cargoService) sanitizeManifestDir() (string, error) {
	if s.manifestDir == "" {
		return "", fmt.Errorf("manifest directory cannot be empty")
	}
	cleanPath := filepath.Clean(s.manifestDir)
	absPath, err := s.resolvePathWithSymlinks(cleanPath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("manifest directory does not exist: %s", absPath)
		}
		return "", fmt.Errorf("failed to check manifest directory: %w", err)
	}
	manifestPath := filepath.Join(absPath, "Cargo.toml")
	if _, err := os.Stat(manifestPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("Cargo.toml not found in directory: %s", absPath)
		}
		return "", fmt.Errorf("failed to check Cargo.toml: %w", err)
	}
	return absPath, nil
}

// runCommand runs a cargo command with timeout and the given extra environment.
func (s *cargoService) runCommand(ctx context.Context, dir string, extraEnv []string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), extraEnv...)

	// Stream output to stdout/stderr for CI visibility
	var stderr bytes.Buffer
	if os.Getenv("GITHUB_ACTIONS") == githubActionsTrue {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		// Capture output for local development
		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("command timed out after %v", s.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("command failed: %w: %s", err, msg)
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// Publish publishes the crate to the registry.
func (s *cargoService) Publish(ctx context.Context, token string) error {
	safeDir, err := s.sanitizeManifestDir()
	if err != nil {
		return fmt.Errorf("invalid manifest directory: %w", err)
	}
	if token == "" {
		return fmt.Errorf("registry token cannot be empty")
	}
	// The token travels through the child environment, never through
	// argv, so it cannot leak into process listings.
	env := []string{"CARGO_REGISTRY_TOKEN=" + token}
	if err := s.runCommand(ctx, safeDir, env, "publish"); err != nil {
		return fmt.Errorf("failed to publish crate at %s: %w", safeDir, err)
	}
	return nil
}

// PackageID returns the package identifier reported by cargo.
func (s *cargoService) PackageID(ctx context.Context) (string, error) {
	safeDir, err := s.sanitizeManifestDir()
	if err != nil {
		return "", fmt.Errorf("invalid manifest directory: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "cargo", "pkgid")
	cmd.Dir = safeDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("cargo pkgid timed out after %v", s.timeout)
		}
		return "", fmt.Errorf("cargo pkgid failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	id := strings.TrimSpace(stdout.String())
	if id == "" {
		return "", fmt.Errorf("cargo pkgid produced no output")
	}
	return id, nil
}
