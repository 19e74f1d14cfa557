package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	RegistryToken string `mapstructure:"registry_token"`
	RemoteToken   string `mapstructure:"remote_token"`
	RemoteName    string `mapstructure:"remote_name"`
	ManifestDir   string `mapstructure:"manifest_dir"`
	GithubOwner   string `mapstructure:"github_owner"`
	GithubRepo    string `mapstructure:"github_repo"`
	TaggerName    string `mapstructure:"tagger_name"`
	TaggerEmail   string `mapstructure:"tagger_email"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		RemoteName:  "origin",
		ManifestDir: ".",
		TaggerName:  "cargoship[bot]",
		TaggerEmail: "cargoship[bot]@users.noreply.github.com",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RemoteName == "" {
		return fmt.Errorf("remote_name cannot be empty")
	}
	if c.ManifestDir == "" {
		return fmt.Errorf("manifest_dir cannot be empty")
	}
	// Check for path traversal in the manifest directory
	if strings.Contains(c.ManifestDir, "..") {
		return fmt.Errorf("manifest_dir contains invalid path traversal")
	}
	if c.TaggerName == "" || c.TaggerEmail == "" {
		return fmt.Errorf("tagger_name and tagger_email cannot be empty")
	}
	// GitHub release publication is optional - only validate when configured
	if c.GithubOwner != "" || c.GithubRepo != "" {
		if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
			return fmt.Errorf("invalid github configuration: %w", err)
		}
		if c.RemoteToken != "" {
			if err := ValidateGitHubToken(c.RemoteToken); err != nil {
				return fmt.Errorf("invalid remote_token: %w", err)
			}
		}
	}
	return nil
}

// ValidateForRelease validates that both credentials are present for a release run
func (c *Config) ValidateForRelease() error {
	if c.RegistryToken == "" {
		return fmt.Errorf("registry_token is required to publish")
	}
	if c.RemoteToken == "" {
		return fmt.Errorf("remote_token is required to push the release tag")
	}
	return c.Validate()
}

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	// Validate token format patterns
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names (exported for reuse)
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".cargoship")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	// Configure environment variables
	viper.SetEnvPrefix("CARGOSHIP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Explicitly bind environment variables
	// BindEnv allows multiple env vars - it will check them in order
	if err := viper.BindEnv("registry_token", "CARGO_REGISTRY_TOKEN", "CARGOSHIP_REGISTRY_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind registry_token env: %w", err)
	}
	if err := viper.BindEnv("remote_token", "GIT_REMOTE_TOKEN", "GITHUB_TOKEN", "CARGOSHIP_REMOTE_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind remote_token env: %w", err)
	}
	if err := viper.BindEnv("remote_name", "GIT_REMOTE_NAME", "CARGOSHIP_REMOTE_NAME"); err != nil {
		return nil, fmt.Errorf("failed to bind remote_name env: %w", err)
	}
	if err := viper.BindEnv("manifest_dir", "MANIFEST_DIR", "CARGOSHIP_MANIFEST_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind manifest_dir env: %w", err)
	}
	if err := viper.BindEnv("github_owner", "GITHUB_OWNER", "CARGOSHIP_GITHUB_OWNER"); err != nil {
		return nil, fmt.Errorf("failed to bind github_owner env: %w", err)
	}
	if err := viper.BindEnv("github_repo", "GITHUB_REPO", "CARGOSHIP_GITHUB_REPO"); err != nil {
		return nil, fmt.Errorf("failed to bind github_repo env: %w", err)
	}
	if err := viper.BindEnv("tagger_name", "CARGOSHIP_TAGGER_NAME"); err != nil {
		return nil, fmt.Errorf("failed to bind tagger_name env: %w", err)
	}
	if err := viper.BindEnv("tagger_email", "CARGOSHIP_TAGGER_EMAIL"); err != nil {
		return nil, fmt.Errorf("failed to bind tagger_email env: %w", err)
	}
	// Set defaults
	defaults := DefaultConfig()
	viper.SetDefault("remote_name", defaults.RemoteName)
	viper.SetDefault("manifest_dir", defaults.ManifestDir)
	viper.SetDefault("tagger_name", defaults.TaggerName)
	viper.SetDefault("tagger_email", defaults.TaggerEmail)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
