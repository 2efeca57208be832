package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed configs/*.yaml
var configFS embed.FS

// DefaultProfile is the profile every other profile and file overlays.
const DefaultProfile = "default"

// Load returns a validated copy of a built-in profile. Profiles other than
// "default" are overlaid on top of it.
func Load(name string) (*Config, error) {
	base, err := readProfile(DefaultProfile, nil)
	if err != nil {
		return nil, err
	}
	cfg := base
	if name != DefaultProfile {
		cfg, err = readProfile(name, base)
		if err != nil {
			return nil, err
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the validated default profile.
func Default() *Config {
	cfg, err := Load(DefaultProfile)
	if err != nil {
		panic(fmt.Sprintf("embedded default profile is invalid: %v", err))
	}
	return cfg
}

// Available returns the names of all built-in profiles.
func Available() []string {
	entries, err := configFS.ReadDir("configs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadFromFile overlays a user YAML file on the named built-in profile.
func LoadFromFile(filePath, profile string) (*Config, error) {
	base, err := Load(profile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := overlay(base, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	if cfg.Name == base.Name {
		cfg.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readProfile(name string, base *Config) (*Config, error) {
	data, err := configFS.ReadFile(path.Join("configs", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown profile: %s (available: %s)", name, strings.Join(Available(), ", "))
	}
	if base == nil {
		base = &Config{}
	}
	cfg, err := overlay(base, data)
	if err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", name, err)
	}
	return cfg, nil
}

func overlay(base *Config, data []byte) (*Config, error) {
	cfg := base.Clone()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
