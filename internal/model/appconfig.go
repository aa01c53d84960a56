package model

const maxRecentExports = 10

// AppConfig holds user preferences persisted between sessions.
type AppConfig struct {
	DefaultViewMode string   `json:"default_view_mode"` // "table" or "chart"
	Theme           string   `json:"theme"`             // "light", "dark", "system"
	RecentExports   []string `json:"recent_exports"`
}

// DefaultAppConfig returns an AppConfig populated with defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultViewMode: "table",
		Theme:           "system",
		RecentExports:   []string{},
	}
}

// ViewMode returns the preferred initial view mode.
func (c AppConfig) ViewMode() ViewMode {
	m, _ := ParseViewMode(c.DefaultViewMode)
	return m
}

// AddRecentExport records an export path, most recent first, without
// duplicates and capped at maxRecentExports entries.
func (c *AppConfig) AddRecentExport(path string) {
	if path == "" {
		return
	}
	out := []string{path}
	for _, p := range c.RecentExports {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > maxRecentExports {
		out = out[:maxRecentExports]
	}
	c.RecentExports = out
}
