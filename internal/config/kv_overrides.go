package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides. Unknown keys
// and malformed values are ignored.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "backend":
			cfg.Backend = val
		case "model":
			cfg.Model = val
		case "theme":
			cfg.Theme = val
		case "max_history_length":
			if n, err := strconv.Atoi(val); err == nil {
				cfg.MaxHistoryLength = n
			}
		case "statefulness":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Statefulness = b
			}
		case "glass_intensity":
			if n, err := strconv.Atoi(val); err == nil {
				cfg.GlassIntensity = n
			}
		case "log_path":
			cfg.LogPath = val
		}
	}
	return cfg
}
