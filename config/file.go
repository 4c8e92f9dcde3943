package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file picked up from the working directory
// when --config is not given.
const DefaultFileName = "avif-converter.toml"

// ApplyFile layers settings from a TOML file onto c. Keys absent from the
// file leave the current values untouched.
func ApplyFile(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv layers environment overrides onto c. A .env file in the working
// directory is loaded into the process environment before this runs, so
// credentials can live there instead of the config file.
func ApplyEnv(c *Config) {
	if dir := os.Getenv("AVIF_CONVERTER_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if file := os.Getenv("AVIF_CONVERTER_LOG_FILE"); file != "" {
		c.LogFile = file
	}
	for i := range c.Uploads {
		t := &c.Uploads[i]
		if t.Type != "s3" {
			continue
		}
		if t.AccessKey == "" {
			t.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		}
		if t.SecretKey == "" {
			t.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		}
	}
}
