package types

type (
	// ScanConfig is the startup configuration of the server. It is built once
	// and never mutated afterwards.
	ScanConfig struct {
		Root           string   `json:"root" yaml:"root"`
		Extensions     []string `json:"extensions" yaml:"extensions"`
		Port           int      `json:"port" yaml:"port"`
		UIDir          string   `json:"uiDir" yaml:"ui-dir"`
		Ignore         []string `json:"ignore" yaml:"ignore"`
		Workers        int      `json:"workers" yaml:"workers"`
		NotesFile      string   `json:"notesFile" yaml:"notes-file"`
		CacheFile      string   `json:"cacheFile" yaml:"cache-file"`
		MaxNotesBytes  int64    `json:"maxNotesBytes" yaml:"max-notes-bytes"`
		LogLevel       string   `json:"logLevel" yaml:"log-level"`
		ConfigFileUsed string   `json:"configFile,omitempty" yaml:"-"`
	}

	// PathFilterConfig contains configuration for the path filter.
	PathFilterConfig struct {
		IgnoredPatterns   []string `json:"ignoredPatterns"`
		AllowedExtensions []string `json:"allowedExtensions"`
	}
)

// FilterConfig returns the path filter settings carried by the scan config.
func (c ScanConfig) FilterConfig() *PathFilterConfig {
	return &PathFilterConfig{
		IgnoredPatterns:   c.Ignore,
		AllowedExtensions: c.Extensions,
	}
}
