package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	// Clear any existing environment variables
	clearTimeoutEnvVars()

	timeouts := LoadTimeouts()

	// Verify default values
	if timeouts.CSVInstall != 5*time.Minute {
		t.Errorf("Expected CSVInstall default 5m, got %v", timeouts.CSVInstall)
	}
	if timeouts.Namespace != 2*time.Minute {
		t.Errorf("Expected Namespace default 2m, got %v", timeouts.Namespace)
	}
	if timeouts.PodsReady != 5*time.Minute {
		t.Errorf("Expected PodsReady default 5m, got %v", timeouts.PodsReady)
	}
	if timeouts.Identity != 2*time.Minute {
		t.Errorf("Expected Identity default 2m, got %v", timeouts.Identity)
	}
	if timeouts.PollInterval != 5*time.Second {
		t.Errorf("Expected PollInterval default 5s, got %v", timeouts.PollInterval)
	}
	if timeouts.TokenTTL != 10*time.Minute {
		t.Errorf("Expected TokenTTL default 10m, got %v", timeouts.TokenTTL)
	}
}

func TestLoadTimeouts_EnvVars(t *testing.T) {
	// Clear any existing environment variables
	clearTimeoutEnvVars()

	// Set custom values
	t.Setenv("FINSIGHT_TIMEOUT_CSV_INSTALL", "15m")
	t.Setenv("FINSIGHT_TIMEOUT_NAMESPACE", "90s")
	t.Setenv("FINSIGHT_TIMEOUT_PODS_READY", "7m")
	t.Setenv("FINSIGHT_TIMEOUT_IDENTITY", "3m")
	t.Setenv("FINSIGHT_POLL_INTERVAL", "1s")
	t.Setenv("FINSIGHT_TOKEN_TTL", "30m")

	timeouts := LoadTimeouts()

	// Verify custom values are used
	if timeouts.CSVInstall != 15*time.Minute {
		t.Errorf("Expected CSVInstall 15m, got %v", timeouts.CSVInstall)
	}
	if timeouts.Namespace != 90*time.Second {
		t.Errorf("Expected Namespace 90s, got %v", timeouts.Namespace)
	}
	if timeouts.PodsReady != 7*time.Minute {
		t.Errorf("Expected PodsReady 7m, got %v", timeouts.PodsReady)
	}
	if timeouts.Identity != 3*time.Minute {
		t.Errorf("Expected Identity 3m, got %v", timeouts.Identity)
	}
	if timeouts.PollInterval != 1*time.Second {
		t.Errorf("Expected PollInterval 1s, got %v", timeouts.PollInterval)
	}
	if timeouts.TokenTTL != 30*time.Minute {
		t.Errorf("Expected TokenTTL 30m, got %v", timeouts.TokenTTL)
	}
}

func TestLoadTimeouts_InvalidEnvVars(t *testing.T) {
	// Clear any existing environment variables
	clearTimeoutEnvVars()

	// Set invalid values
	t.Setenv("FINSIGHT_TIMEOUT_CSV_INSTALL", "invalid")
	t.Setenv("FINSIGHT_POLL_INTERVAL", "not-a-duration")

	timeouts := LoadTimeouts()

	// Should fall back to defaults when parsing fails
	if timeouts.CSVInstall != 5*time.Minute {
		t.Errorf("Expected CSVInstall default 5m (invalid env var), got %v", timeouts.CSVInstall)
	}
	if timeouts.PollInterval != 5*time.Second {
		t.Errorf("Expected PollInterval default 5s (invalid env var), got %v", timeouts.PollInterval)
	}
}

func TestLoadTimeouts_PartialEnvVars(t *testing.T) {
	// Clear any existing environment variables
	clearTimeoutEnvVars()

	// Set only some values
	t.Setenv("FINSIGHT_TIMEOUT_IDENTITY", "4m")
	t.Setenv("FINSIGHT_TOKEN_TTL", "5m")

	timeouts := LoadTimeouts()

	// Custom values should be used where set
	if timeouts.Identity != 4*time.Minute {
		t.Errorf("Expected Identity 4m, got %v", timeouts.Identity)
	}
	if timeouts.TokenTTL != 5*time.Minute {
		t.Errorf("Expected TokenTTL 5m, got %v", timeouts.TokenTTL)
	}

	// Defaults should be used for unset values
	if timeouts.CSVInstall != 5*time.Minute {
		t.Errorf("Expected CSVInstall default 5m, got %v", timeouts.CSVInstall)
	}
	if timeouts.PodsReady != 5*time.Minute {
		t.Errorf("Expected PodsReady default 5m, got %v", timeouts.PodsReady)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name       string
		envVar     string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{
			name:       "Valid duration",
			envVar:     "TEST_DURATION",
			envValue:   "5m",
			defaultVal: 1 * time.Minute,
			expected:   5 * time.Minute,
		},
		{
			name:       "Empty value",
			envVar:     "TEST_DURATION",
			envValue:   "",
			defaultVal: 1 * time.Minute,
			expected:   1 * time.Minute,
		},
		{
			name:       "Invalid value",
			envVar:     "TEST_DURATION",
			envValue:   "invalid",
			defaultVal: 1 * time.Minute,
			expected:   1 * time.Minute,
		},
		{
			name:       "Complex duration",
			envVar:     "TEST_DURATION",
			envValue:   "1h30m45s",
			defaultVal: 1 * time.Minute,
			expected:   1*time.Hour + 30*time.Minute + 45*time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.envVar, tt.envValue)
			} else {
				if err := os.Unsetenv(tt.envVar); err != nil {
					t.Fatalf("Failed to unset env var: %v", err)
				}
			}

			result := parseDuration(tt.envVar, tt.defaultVal)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// clearTimeoutEnvVars clears all timeout-related environment variables
func clearTimeoutEnvVars() {
	_ = os.Unsetenv("FINSIGHT_TIMEOUT_CSV_INSTALL")
	_ = os.Unsetenv("FINSIGHT_TIMEOUT_NAMESPACE")
	_ = os.Unsetenv("FINSIGHT_TIMEOUT_PODS_READY")
	_ = os.Unsetenv("FINSIGHT_TIMEOUT_IDENTITY")
	_ = os.Unsetenv("FINSIGHT_POLL_INTERVAL")
	_ = os.Unsetenv("FINSIGHT_TOKEN_TTL")
}
