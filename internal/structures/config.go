package structures

import "time"

type Server struct {
	Host string `mapstructure:"host" yaml:"host" validate:"required"`
	Port int    `mapstructure:"port" yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Dir          string `mapstructure:"dir" yaml:"dir" validate:"required"`
	SnapshotFile string `mapstructure:"snapshotFile" yaml:"snapshotFile" validate:"required"`
	StateFile    string `mapstructure:"stateFile" yaml:"stateFile" validate:"required"`
	Compress     bool   `mapstructure:"compress" yaml:"compress"`
}

type WatcherConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"required|min:1"`
}

type MailConfig struct {
	SMTPHost       string        `mapstructure:"smtpHost" yaml:"smtpHost"`
	SMTPPort       int           `mapstructure:"smtpPort" yaml:"smtpPort" validate:"uint"`
	SMTPUser       string        `mapstructure:"smtpUser" yaml:"smtpUser"`
	SMTPPassword   string        `mapstructure:"smtpPassword" yaml:"smtpPassword"`
	From           string        `mapstructure:"from" yaml:"from" validate:"email"`
	To             string        `mapstructure:"to" yaml:"to" validate:"email"`
	SendGridAPIKey string        `mapstructure:"sendgridApiKey" yaml:"sendgridApiKey"`
	SendGridURL    string        `mapstructure:"sendgridUrl" yaml:"sendgridUrl" validate:"required|fullUrl"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"required|min:1"`
}

type UploadConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond" yaml:"requestsPerSecond"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `mapstructure:"mode" yaml:"mode" validate:"required|uint"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Size    int  `mapstructure:"size" yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `mapstructure:"webServer" yaml:"webServer"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Watcher   WatcherConfig   `mapstructure:"watcher" yaml:"watcher"`
	Mail      MailConfig      `mapstructure:"mail" yaml:"mail"`
	Upload    UploadConfig    `mapstructure:"upload" yaml:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit" yaml:"rateLimit"`
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}
