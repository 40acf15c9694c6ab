package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"setram.dev/tram/api"
	"setram.dev/tram/config"
	"setram.dev/tram/storage"
)

var rootCmd = &cobra.Command{
	Use:               "tram",
	Short:             "Tram schedule tool",
	Long:              "Shows upcoming trams, travel times and network status, and applies delays",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath     string
	baseURL        string
	storageBackend string
	headers        []string

	cfg *config.AppConfig
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default tram.yml or config/tram.yml)")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "", "", "Tram API base URL")
	rootCmd.PersistentFlags().StringVarP(&storageBackend, "storage", "", "", "Delay journal backend (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().StringSliceVarP(
		&headers,
		"header",
		"",
		[]string{},
		"HTTP header sent with every API request",
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	InitLogging()

	var err error
	if configPath != "" {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file '%s' not found", configPath)
		}
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if storageBackend != "" {
		cfg.Storage.Backend = storageBackend
	}

	extra, err := parseHeaders(headers)
	if err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}
	if cfg.API.Headers == nil {
		cfg.API.Headers = map[string]string{}
	}
	for k, v := range extra {
		cfg.API.Headers[k] = v
	}

	return config.Validate(cfg)
}

func parseHeaders(headers []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", header)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Creates an API client from the loaded config.
func NewClient() *api.Client {
	client := api.NewClient(cfg.API.BaseURL)
	client.Paths = api.Paths{
		Schedule:   cfg.API.SchedulePath,
		TravelTime: cfg.API.TravelTimePath,
		Delay:      cfg.API.DelayPath,
		Status:     cfg.API.StatusPath,
		Contact:    cfg.API.ContactPath,
	}
	client.Headers = cfg.API.Headers
	client.Timeout = millis(cfg.API.TimeoutMS)
	client.Retries = cfg.API.Retries
	client.TravelCacheTTL = time.Duration(cfg.API.CacheTTLSeconds) * time.Second
	return client
}

// Opens the delay journal selected by the loaded config.
func OpenJournal() (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		return storage.NewSQLiteStorage(storage.SQLiteConfig{
			OnDisk:    cfg.Storage.OnDisk,
			Directory: cfg.Storage.Directory,
		})
	case "postgres":
		return storage.NewPSQLStorage(cfg.Storage.PostgresConn, false)
	}
	return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Storage.Backend)
}
