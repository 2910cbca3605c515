package gatekeep

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpratt/gatekeep/utils"
)

// Config represents a configuration object.
type Config struct {
	SheetID            string `json:"sheetid"`            // Default grid id, may be overridden per request.
	Range              string `json:"range"`              // Default A1 range, e.g. "Sheet1!A:Z".
	APIToken           string `json:"apitoken"`           // Bearer token for the grid service.
	DisableTimeLogging bool   `json:"disabletimelogging"` // Skip the check-in time column entirely.
	StrictHeaders      bool   `json:"strictheaders"`      // Prefer exact header labels over fuzzy matching.
	WebhookURL         string `json:"webhookurl"`         // Check-in notification webhook, empty to disable.
	Port               string `json:"port"`               // HTTP listen port.
	Debug              bool   `json:"debug"`              // Debug mode in the configuration.
}

// LoadConfig loads the configuration from the specified file.
//
// Args:
//   - filename: The name of the configuration file.
//
// Returns:
//   - *Config: A pointer to the Config struct.
//   - error: An error if the loading fails.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	err = json.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %v", err)
	}

	config.applyDefaults()

	return &config, nil
}

// ConfigFromEnv builds a configuration from environment variables. The
// variable names match the original deployment of this service, so an
// existing environment keeps working unchanged.
func ConfigFromEnv() *Config {
	config := &Config{
		SheetID:            os.Getenv("GOOGLE_SHEET_ID"),
		Range:              os.Getenv("GOOGLE_SHEET_RANGE"),
		APIToken:           os.Getenv("GOOGLE_API_TOKEN"),
		DisableTimeLogging: envFlag("DISABLE_CHECKIN_TIME_LOGGING"),
		StrictHeaders:      envFlag("GATEKEEP_STRICT_HEADERS"),
		WebhookURL:         os.Getenv("GOOGLE_APPS_SCRIPT_WEBHOOK_URL"),
		Port:               os.Getenv("PORT"),
		Debug:              envFlag("GATEKEEP_DEBUG"),
	}

	config.applyDefaults()

	return config
}

// Configured reports whether grid access is set up. Without a token
// the server runs in demo mode with sample data.
func (c *Config) Configured() bool {
	return c.APIToken != ""
}

func (c *Config) applyDefaults() {
	if c.Range == "" {
		c.Range = DEFAULT_RANGE
	}
	if c.Port == "" {
		c.Port = "3000"
	}
}

// envFlag reads a boolean environment variable, accepting "true" and
// "1" as the original server did.
func envFlag(name string) bool {
	return utils.Contains([]string{"true", "1"}, os.Getenv(name))
}
