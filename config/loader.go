package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Searched in order when no explicit path is given.
var DefaultPaths = []string{"tram.yml", "config/tram.yml"}

// Default returns the configuration used when no file is found. It
// points at the PHP API served from localhost, as in the stock
// deployment.
func Default() AppConfig {
	return AppConfig{
		API: APIConfig{
			BaseURL:         "http://localhost/api",
			SchedulePath:    "/get_schedule.php",
			TravelTimePath:  "/get_travel_time.php",
			DelayPath:       "/apply_delay.php",
			StatusPath:      "/getStatut.php",
			ContactPath:     "/send_contact.php",
			Headers:         map[string]string{},
			TimeoutMS:       30000,
			Retries:         0,
			CacheTTLSeconds: 600,
		},
		Polling: PollingConfig{
			RemainingIntervalMS: 60000,
			StatusIntervalMS:    60000,
			FetchTimeoutMS:      0,
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
	}
}

// Load reads and validates configuration from the first of paths that
// exists. Keys missing from the file keep their default values. If
// none of the paths exist, the defaults are returned.
func Load(paths ...string) (*AppConfig, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	cfg := Default()

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		break
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
