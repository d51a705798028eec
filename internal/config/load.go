package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. STUDYKIT_SERVER_PORT.
const EnvPrefix = "STUDYKIT"

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, and STUDYKIT_* environment variables, in increasing
// precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file instead of
// searching for config.yaml. An empty path falls back to the search.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("llm.model_name", "gemini-2.5-flash")
	v.SetDefault("llm.max_attempts", 5)
	v.SetDefault("llm.initial_backoff", "1s")
	v.SetDefault("llm.auto_summarize", true)
	v.SetDefault("redis.channel", "studykit.events")
	v.SetDefault("redis.db", 0)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
}

// bindEnvs registers keys that have no default so AutomaticEnv can see them
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"llm.gemini_api_key",
		"database.url",
		"redis.addr",
		"redis.password",
		"seed.path",
	} {
		_ = v.BindEnv(key)
	}
}
