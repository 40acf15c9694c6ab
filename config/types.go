package config

// APIConfig locates the tram API and tunes requests made to it.
type APIConfig struct {
	BaseURL         string            `yaml:"baseURL" validate:"required,url"`
	SchedulePath    string            `yaml:"schedulePath" validate:"required,startswith=/"`
	TravelTimePath  string            `yaml:"travelTimePath" validate:"required,startswith=/"`
	DelayPath       string            `yaml:"delayPath" validate:"required,startswith=/"`
	StatusPath      string            `yaml:"statusPath" validate:"required,startswith=/"`
	ContactPath     string            `yaml:"contactPath" validate:"required,startswith=/"`
	Headers         map[string]string `yaml:"headers"`
	TimeoutMS       int               `yaml:"timeoutMS" validate:"gte=0"`
	Retries         int               `yaml:"retries" validate:"gte=0,lte=10"`
	CacheTTLSeconds int               `yaml:"cacheTTLSeconds" validate:"gte=0"`
}

// PollingConfig sets how often countdowns and status are refreshed.
type PollingConfig struct {
	RemainingIntervalMS int `yaml:"remainingIntervalMS" validate:"gt=0"`
	StatusIntervalMS    int `yaml:"statusIntervalMS" validate:"gt=0"`
	FetchTimeoutMS      int `yaml:"fetchTimeoutMS" validate:"gte=0"`
}

// StorageConfig selects the delay journal backend.
type StorageConfig struct {
	Backend      string `yaml:"backend" validate:"oneof=memory sqlite postgres"`
	OnDisk       bool   `yaml:"onDisk"`
	Directory    string `yaml:"directory" validate:"required_if=OnDisk true"`
	PostgresConn string `yaml:"postgresConn" validate:"required_if=Backend postgres"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	API     APIConfig     `yaml:"api" validate:"required"`
	Polling PollingConfig `yaml:"polling" validate:"required"`
	Storage StorageConfig `yaml:"storage" validate:"required"`
}
