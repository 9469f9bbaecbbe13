package domain

// Config is the panel configuration persisted as its own JSON document.
// It is deliberately an open object: updates are a shallow merge, so a
// patch touching a nested object replaces that object wholesale and
// unknown keys survive round trips untouched.
type Config map[string]any

// DefaultConfig matches the fallback the panel substitutes when the
// config file is missing or unparsable.
func DefaultConfig() Config {
	return Config{
		"features":    []any{"monitoring"},
		"pm2":         map[string]any{"enabled": false, "manage": false},
		"maxActivity": float64(7),
	}
}

// Merge returns a copy of c with every top-level key of patch written
// over the corresponding key of c. Nested objects are not merged
// field-by-field; the patch value wins wholesale.
func (c Config) Merge(patch map[string]any) Config {
	merged := make(Config, len(c)+len(patch))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// Features returns the enabled feature names.
func (c Config) Features() []string {
	raw, _ := c["features"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// PM2Enabled reports whether process-manager integration is switched on.
func (c Config) PM2Enabled() bool {
	pm2, _ := c["pm2"].(map[string]any)
	enabled, _ := pm2["enabled"].(bool)
	return enabled
}

// MaxActivity is the number of recent activity entries the dashboard
// shows. Defaults to 7 when unset or not a number.
func (c Config) MaxActivity() int {
	n, ok := c["maxActivity"].(float64)
	if !ok || n <= 0 {
		return 7
	}
	return int(n)
}

// StartFolder is the configured file-browser root. Empty means the
// process working directory.
func (c Config) StartFolder() string {
	s, _ := c["startFolder"].(string)
	return s
}
