package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FetchConfig holds configuration for the fetch command.
type FetchConfig struct {
	Source            string
	RPCURL            string
	Method            string
	Endpoint          string
	Collection        string
	Schema            string
	Publisher         string
	PageSize          int
	In                string
	Out               string
	Checkpoint        string
	CheckpointEnabled bool
	BatchSize         int
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadFetch merges config file, environment variables, and flags into FetchConfig.
func LoadFetch(cfgFile string, flags *pflag.FlagSet) (FetchConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"source":             "streams",
		"schema":             "social_interactions",
		"page-size":          1000,
		"out":                "./data/raw_records.jsonl",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"batch-size":         1000,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"log-level":          "info",
	})
	if err != nil {
		return FetchConfig{}, err
	}

	cfg := FetchConfig{
		Source:            v.GetString("source"),
		RPCURL:            v.GetString("rpc"),
		Method:            v.GetString("method"),
		Endpoint:          v.GetString("endpoint"),
		Collection:        v.GetString("collection"),
		Schema:            v.GetString("schema"),
		Publisher:         v.GetString("publisher"),
		PageSize:          v.GetInt("page-size"),
		In:                v.GetString("in"),
		Out:               v.GetString("out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		BatchSize:         v.GetInt("batch-size"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// newViper wires the shared env/file/flag precedence used by every command.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("AGGREGATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

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

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
