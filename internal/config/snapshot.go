package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	In        string
	Out       string
	PGDSN     string
	Targets   []string
	Since     string
	BatchSize int
	Print     bool
	LogLevel  string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":        "./data/snapshots.jsonl",
		"batch-size": 1000,
		"log-level":  "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		PGDSN:     v.GetString("pg-dsn"),
		Targets:   getStringSlice(v, "target"),
		Since:     v.GetString("since"),
		BatchSize: v.GetInt("batch-size"),
		Print:     v.GetBool("print"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}

// ParseTimestamp parses a timestamp value (unix milliseconds or RFC3339).
func ParseTimestamp(input string) (int64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return tm.UnixMilli(), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
