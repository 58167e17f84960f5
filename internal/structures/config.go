package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// PopupEntry is a single catalog row in the config file. An empty catalog
// falls back to the built-in default schedule.
type PopupEntry struct {
	ID           string        `yaml:"id" validate:"required"`
	Label        string        `yaml:"label"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	Snooze       time.Duration `yaml:"snooze"`
	UseInterval  bool          `yaml:"useInterval"`
}

type PopupConfig struct {
	SharedInterval time.Duration `yaml:"sharedInterval"`
	Catalog        []PopupEntry  `yaml:"catalog"`
}

type ManualSourceConfig struct {
	Enabled         bool          `yaml:"enabled"`
	URL             string        `yaml:"url"`
	Timeout         time.Duration `yaml:"timeout"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName      string
	Debug        bool
	Path         string
	Popup        PopupConfig        `yaml:"popup"`
	ManualSource ManualSourceConfig `yaml:"manualSource"`
	WebServer    Server             `yaml:"webServer"`
	Persistence  Persistence        `yaml:"persistence"`
	Logger       LoggerConfig       `yaml:"logger"`
	Cache        CacheConfig        `yaml:"cache"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}
