package orchestrator

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Exit codes form the tool's public contract: one code per release step
// so CI can tell from the status alone where the sequence stopped.
const (
	// ExitCodeOK means the whole sequence succeeded
	ExitCodeOK = 0
	// ExitCodePublish means the registry publish failed
	ExitCodePublish = 1
	// ExitCodeTag means tag creation failed
	ExitCodeTag = 2
	// ExitCodePush means the tag push failed
	ExitCodePush = 3
	// ExitCodeBadIdentifier means no version could be extracted from the
	// package identifier
	ExitCodeBadIdentifier = 4
	// ExitCodeSetup means the run failed before the sequence started
	ExitCodeSetup = 10
)

// Timeout constants for different operations
var (
	// DefaultStepTimeout bounds each external invocation
	DefaultStepTimeout = getTimeoutOrDefault("STEP_TIMEOUT", 10*time.Minute, 5*time.Second)
	// DefaultRetryCount is the number of retries for steps that opt in
	DefaultRetryCount = uint64(getRetryCountOrDefault("RETRY_COUNT", 3, 1))
	// DefaultRetryDelay is the initial delay for exponential backoff
	DefaultRetryDelay = getTimeoutOrDefault("RETRY_DELAY", 1*time.Second, 100*time.Millisecond)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}

// getRetryCountOrDefault returns production retry count or test retry count based on environment
func getRetryCountOrDefault(envVar string, prodDefault, testDefault int) int {
	if env := os.Getenv(envVar); env != "" {
		if count, err := strconv.Atoi(env); err == nil {
			return count
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
