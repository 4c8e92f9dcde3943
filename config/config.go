package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// DataDirName is the directory created under the output root to hold run
// state (the conversion ledger). Overridable via AVIF_CONVERTER_DATA_DIR or
// the data_dir setting.
const DataDirName = ".avif-converter"

// DefaultPattern matches the formats the pipeline has dedicated encoders
// for. Matched against paths relative to the input root.
const DefaultPattern = "**/*.{jpg,jpeg,png,webp}"

// Config is the complete, validated description of one run. It is built once
// before any job starts and treated as read-only afterwards.
type Config struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`

	Quality     int    `toml:"quality"`     // encode quality for every artifact, 0-100
	Effort      int    `toml:"effort"`      // AVIF effort, 0 (fastest) to 9 (slowest)
	Resize      string `toml:"resize"`      // WxH, W x or xH; parsed and validated, the encode pipeline currently ignores it
	Pattern     string `toml:"pattern"`     // doublestar glob relative to InputDir
	Concurrency int    `toml:"concurrency"` // max jobs in flight, 0 means one per CPU

	CleanOutput bool   `toml:"clean_output"` // clear the output root before converting
	Resume      bool   `toml:"resume"`       // skip inputs whose previous success is still valid
	NoProgress  bool   `toml:"no_progress"`
	Verbose     bool   `toml:"verbose"`
	LogFile     string `toml:"log_file"`
	DataDir     string `toml:"data_dir"`

	Uploads []UploadTarget `toml:"upload"`
}

// UploadTarget mirrors finished artifacts to a remote store. Each write
// destination has a different credential shape, so the struct is a union
// keyed by Type.
type UploadTarget struct {
	Type   string `toml:"type"` // "s3", "gcs" or "sftp"
	Prefix string `toml:"prefix"`

	// s3 and gcs
	Bucket string `toml:"bucket"`

	// s3
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`

	// gcs
	CredentialsFile string `toml:"credentials_file"`
	CredentialsJSON string `toml:"credentials_json"`

	// sftp
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	PrivateKey string `toml:"private_key"` // PEM, raw or base64
	RemoteDir  string `toml:"remote_dir"`
}

// Default returns the settings a run starts from before the config file,
// environment and flags are layered on.
func Default() Config {
	return Config{
		Quality:     80,
		Effort:      4,
		Pattern:     DefaultPattern,
		Concurrency: runtime.NumCPU(),
		CleanOutput: true,
	}
}

// resizePattern accepts WxH with either side optional, but not both.
var resizePattern = regexp.MustCompile(`^(\d+x\d*|\d*x\d+)$`)

// Finalize resolves paths and fills derived defaults. Call after all sources
// have been applied and before Validate.
func (c *Config) Finalize() error {
	if c.InputDir != "" {
		abs, err := filepath.Abs(c.InputDir)
		if err != nil {
			return fmt.Errorf("resolve input dir: %w", err)
		}
		c.InputDir = abs
	}
	if c.OutputDir != "" {
		abs, err := filepath.Abs(c.OutputDir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		c.OutputDir = abs
	}
	if c.DataDir == "" && c.OutputDir != "" {
		c.DataDir = filepath.Join(c.OutputDir, DataDirName)
	}
	if c.Concurrency < 1 {
		c.Concurrency = runtime.NumCPU()
	}
	c.Pattern = strings.TrimSpace(c.Pattern)
	return nil
}

// Validate checks ranges and the directory layout. It never touches the
// filesystem; existence of the input root is checked at discovery.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if filepath.Dir(c.OutputDir) == c.OutputDir {
		return fmt.Errorf("refusing to use filesystem root %s as output", c.OutputDir)
	}
	if c.OutputDir == c.InputDir {
		return fmt.Errorf("output directory must differ from the input directory")
	}
	if isAncestor(c.OutputDir, c.InputDir) {
		return fmt.Errorf("output directory %s contains the input directory", c.OutputDir)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100, got %d", c.Quality)
	}
	if c.Effort < 0 || c.Effort > 9 {
		return fmt.Errorf("effort must be between 0 and 9, got %d", c.Effort)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Resize != "" && !resizePattern.MatchString(c.Resize) {
		return fmt.Errorf("resize must look like 800x600, 800x or x600, got %q", c.Resize)
	}
	if c.Pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	for i := range c.Uploads {
		if err := c.Uploads[i].validate(); err != nil {
			return fmt.Errorf("upload target %d: %w", i+1, err)
		}
	}
	return nil
}

func (t *UploadTarget) validate() error {
	switch t.Type {
	case "s3":
		if t.Bucket == "" || t.Region == "" {
			return fmt.Errorf("s3 needs bucket and region")
		}
		if t.AccessKey == "" || t.SecretKey == "" {
			return fmt.Errorf("s3 needs access_key and secret_key (or AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY)")
		}
	case "gcs":
		if t.Bucket == "" {
			return fmt.Errorf("gcs needs bucket")
		}
		if t.CredentialsFile != "" && t.CredentialsJSON != "" {
			return fmt.Errorf("gcs takes credentials_file or credentials_json, not both")
		}
	case "sftp":
		if t.Host == "" || t.User == "" || t.RemoteDir == "" {
			return fmt.Errorf("sftp needs host, user and remote_dir")
		}
		if t.Password == "" && t.PrivateKey == "" {
			return fmt.Errorf("sftp needs password or private_key")
		}
	case "":
		return fmt.Errorf("missing type")
	default:
		return fmt.Errorf("unknown type %q", t.Type)
	}
	return nil
}

// isAncestor reports whether dir is parent (or higher) of sub. Both paths
// must already be absolute and clean.
func isAncestor(dir, sub string) bool {
	rel, err := filepath.Rel(dir, sub)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// LedgerDBPath returns the pebble database location under the data dir.
func (c *Config) LedgerDBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}
