package providers

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"studymail/internal/structures"
	"strings"
)

const AppName = "StudyMail"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.snapshotFile", "timer_state.dat")
	v.SetDefault("storage.stateFile", "detector_state.dat")
	v.SetDefault("storage.compress", true)
	v.SetDefault("watcher.interval", "30s")
	v.SetDefault("mail.smtpHost", "smtp.gmail.com")
	v.SetDefault("mail.smtpPort", 587)
	v.SetDefault("mail.sendgridUrl", "https://api.sendgrid.com")
	v.SetDefault("mail.timeout", "20s")
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerSecond", 1)
	v.SetDefault("rateLimit.burst", 10)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 1)
	v.SetDefault("metrics.enabled", true)
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("webServer.port", "PORT")
	v.BindEnv("upload.token", "UPLOAD_TOKEN")
	v.BindEnv("mail.smtpHost", "SMTP_HOST")
	v.BindEnv("mail.smtpPort", "SMTP_PORT")
	v.BindEnv("mail.smtpUser", "SMTP_USER")
	v.BindEnv("mail.smtpPassword", "SMTP_PASSWORD")
	v.BindEnv("mail.to", "EMAIL_TO")
	v.BindEnv("mail.from", "EMAIL_FROM")
	v.BindEnv("mail.sendgridApiKey", "SENDGRID_API_KEY")
	v.BindEnv("logger.level", "STUDYMAIL_LOG_LEVEL")
	v.BindEnv("storage.dir", "STUDYMAIL_DATA_DIR")
	v.BindEnv("watcher.interval", "STUDYMAIL_INTERVAL")
}

// NewConfigProvider reads the YAML file named by the flags, overlays the
// environment and validates the result. A missing file is not an error:
// the service is usually configured through the environment alone.
func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)
	bindEnv(v)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if conf.Mail.From == "" {
		conf.Mail.From = conf.Mail.SMTPUser
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
