package grimoire

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the knobs the surrounding CLI layer supplies to the
// engine. Fields carry env tags so the binary can populate them from
// the environment; zero values fall back to DefaultConfig.
type Config struct {
	// CacheDir is the directory holding the official layer, the
	// homebrew file, and store metadata.
	CacheDir string `env:"GRIMOIRE_CACHE_DIR"`

	// Endpoint is the remote API base URL, one read endpoint per kind
	// underneath it.
	Endpoint string `env:"GRIMOIRE_ENDPOINT"`

	// Timeout bounds a single network request.
	Timeout time.Duration `env:"GRIMOIRE_TIMEOUT"`

	// MaxRetries is the number of retries after the initial attempt for
	// a transient per-kind fetch failure.
	MaxRetries int `env:"GRIMOIRE_MAX_RETRIES"`

	// MaxParallelKinds bounds how many kinds are fetched concurrently.
	MaxParallelKinds int `env:"GRIMOIRE_MAX_PARALLEL_KINDS"`

	// RequestsPerMinute rate-limits requests to the remote source.
	RequestsPerMinute int `env:"GRIMOIRE_REQUESTS_PER_MINUTE"`

	// HistoryDBPath is the SQLite sync journal location. Empty falls
	// back to history.db inside the cache directory; HistoryDisabled
	// turns the journal off.
	HistoryDBPath string `env:"GRIMOIRE_HISTORY_DB"`
}

// HistoryDisabled is the HistoryDBPath sentinel that turns the sync
// journal off.
const HistoryDisabled = "off"

// DefaultConfig returns the configuration used when nothing is supplied.
// The request budget matches the remote's documented 15 requests per
// minute allowance.
func DefaultConfig() Config {
	dir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".grimoire")
	}
	return Config{
		CacheDir:          dir,
		Endpoint:          "https://archerdnd.tech/api",
		Timeout:           10 * time.Second,
		MaxRetries:        3,
		MaxParallelKinds:  4,
		RequestsPerMinute: 15,
		HistoryDBPath:     filepath.Join(dir, "history.db"),
	}
}

// WithDefaults fills any zero-valued field from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.MaxParallelKinds <= 0 {
		c.MaxParallelKinds = def.MaxParallelKinds
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = def.RequestsPerMinute
	}
	if c.HistoryDBPath == "" {
		c.HistoryDBPath = filepath.Join(c.CacheDir, "history.db")
	}
	return c
}
