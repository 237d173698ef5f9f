package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"affiliateScope/internal/flipside"
)

const envPrefix = "AFFILIATE"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Endpoint          string
	APIKey            string
	HTTPTimeout       time.Duration
	RateLimit         float64
	PollInterval      time.Duration
	MaxAttempts       int
	PollTimeout       time.Duration
	IgnoreFailedState bool
	ResultTTLHours    int
	MaxAgeMinutes     int
	DataSource        string
	DataProvider      string
	Tags              map[string]string
	PageSize          int
	Out               string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v), nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoint", flipside.DefaultEndpoint)
	v.SetDefault("http-timeout", 30*time.Second)
	v.SetDefault("rate-limit", 0.0)
	v.SetDefault("poll-interval", time.Second)
	v.SetDefault("max-attempts", 300)
	v.SetDefault("poll-timeout", 10*time.Minute)
	v.SetDefault("ignore-failed-state", false)
	v.SetDefault("result-ttl-hours", 1)
	v.SetDefault("max-age-minutes", 0)
	v.SetDefault("data-source", "snowflake-default")
	v.SetDefault("data-provider", "flipside")
	v.SetDefault("tags", "source=thorchain-analytics,env=production")
	v.SetDefault("page-size", 1000)
	v.SetDefault("out", "./data/result.html")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Endpoint:          v.GetString("endpoint"),
		APIKey:            v.GetString("api-key"),
		HTTPTimeout:       v.GetDuration("http-timeout"),
		RateLimit:         v.GetFloat64("rate-limit"),
		PollInterval:      v.GetDuration("poll-interval"),
		MaxAttempts:       v.GetInt("max-attempts"),
		PollTimeout:       v.GetDuration("poll-timeout"),
		IgnoreFailedState: v.GetBool("ignore-failed-state"),
		ResultTTLHours:    v.GetInt("result-ttl-hours"),
		MaxAgeMinutes:     v.GetInt("max-age-minutes"),
		DataSource:        v.GetString("data-source"),
		DataProvider:      v.GetString("data-provider"),
		Tags:              queryTags(v),
		PageSize:          v.GetInt("page-size"),
		Out:               v.GetString("out"),
		LogLevel:          v.GetString("log-level"),
	}
}

// RedactedKey hides the API key for logging.
func (c Config) RedactedKey() string {
	if c.APIKey == "" {
		return ""
	}
	return "***"
}

// queryTags reads the tags key, either a map from a config file or a
// "k=v,k=v" string from a flag or env var.
func queryTags(v *viper.Viper) map[string]string {
	switch raw := v.Get("tags").(type) {
	case map[string]interface{}:
		tags := make(map[string]string, len(raw))
		for name, value := range raw {
			tags[name] = fmt.Sprint(value)
		}
		return tags
	case string:
		return parseTags(raw)
	default:
		return map[string]string{}
	}
}

// parseTags skips entries without a name or a value.
func parseTags(input string) map[string]string {
	tags := make(map[string]string)
	for _, entry := range strings.Split(input, ",") {
		name, value, ok := strings.Cut(entry, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			continue
		}
		tags[name] = value
	}
	return tags
}
