package logger

import (
	"os"
	"runtime"
)

type Config struct {
	Level      Level  `env:"LOG_LEVEL"       envDefault:"info"`
	Format     string `env:"LOG_FORMAT"      envDefault:"console"` // json, text, console
	Output     string `env:"LOG_OUTPUT"      envDefault:"stdout"`  // stdout, stderr, file
	FilePath   string `env:"LOG_FILE_PATH"`
	MaxSize    int    `env:"LOG_MAX_SIZE"    envDefault:"100"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"LOG_MAX_AGE"     envDefault:"28"` // days
	Compress   bool   `env:"LOG_COMPRESS"    envDefault:"true"`

	// Static fields attached to every entry.
	Fields map[string]string
}

// GetDefaultFields collects process and deployment metadata.
func GetDefaultFields() Fields {
	hostname, _ := os.Hostname()

	fields := Fields{
		"hostname":   hostname,
		"pid":        os.Getpid(),
		"go_version": runtime.Version(),
	}

	if podName := os.Getenv("KUBERNETES_POD_NAME"); podName != "" {
		fields["k8s_pod"] = podName
	}
	if appVersion := os.Getenv("APP_VERSION"); appVersion != "" {
		fields["app_version"] = appVersion
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		fields["environment"] = env
	}

	return fields
}

func NewDefaultConfig() *Config {
	config := &Config{
		Level:      LevelInfo,
		Format:     "console",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	config.WithDefaultFields()
	return config
}

// WithDefaultFields merges GetDefaultFields into Fields without overriding
// values that are already set.
func (c *Config) WithDefaultFields() *Config {
	if c.Fields == nil {
		c.Fields = make(map[string]string)
	}
	for k, v := range GetDefaultFields() {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if _, exists := c.Fields[k]; !exists {
			c.Fields[k] = str
		}
	}
	return c
}
