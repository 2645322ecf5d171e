package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// File is the on-disk json5 configuration. Unset fields keep the value
// from the layer below. Durations are Go duration strings ("30s").
type File struct {
	Site      string            `json:"site"`
	Engine    string            `json:"engine"`
	Timeout   string            `json:"timeout"`
	ChromeTLS *bool             `json:"chrome_tls"`
	UserAgent string            `json:"user_agent"`
	Headers   map[string]string `json:"headers"`
	MaxPages  *int              `json:"max_pages"`
	Strict    *bool             `json:"strict"`
	OutputDir string            `json:"output_dir"`

	Selectors struct {
		Entry string `json:"entry"`
		Title string `json:"title"`
		Stars string `json:"stars"`
	} `json:"selectors"`

	Browser struct {
		Headless   *bool  `json:"headless"`
		NoSandbox  *bool  `json:"no_sandbox"`
		Stealth    *bool  `json:"stealth"`
		BrowserBin string `json:"browser_bin"`
	} `json:"browser"`

	Server struct {
		Host string `json:"host"`
		Port int    `json:"port"`
		Mode string `json:"mode"`
	} `json:"server"`

	APIKeys []string `json:"api_keys"`

	Webhook struct {
		URL    string `json:"url"`
		Secret string `json:"secret"`
	} `json:"webhook"`

	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`
}

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), strings.TrimPrefix(ext, ".")
}

// ReadFile reads name and merges <name>.local.<ext> over it, the local
// file taking priority. os.ErrNotExist is returned when neither exists.
func ReadFile(name string) (File, error) {
	var out File
	allNotFound := true

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		if err := json5.Unmarshal(defaultFile, &out); err != nil {
			return out, fmt.Errorf("config: parse %s: %w", name, err)
		}
		allNotFound = false
	}

	prefix, ext := splitExt(name)
	localPath := fmt.Sprintf("%s.local.%s", prefix, ext)
	localFile, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override File
		if err := json5.Unmarshal(localFile, &override); err != nil {
			return out, fmt.Errorf("config: parse %s: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride, mergo.WithoutDereference); err != nil {
			return out, fmt.Errorf("config: merge %s: %w", localPath, err)
		}
		slog.Debug("merging config with local overrides", "local", localPath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}
	return out, nil
}

func applyFile(cfg *Config, path string) error {
	f, err := ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return f.apply(cfg)
}

func (f File) apply(cfg *Config) error {
	setString(&cfg.Fetch.Site, f.Site)
	setString(&cfg.Fetch.Engine, f.Engine)
	setString(&cfg.Fetch.UserAgent, f.UserAgent)
	setString(&cfg.Export.OutputDir, f.OutputDir)
	setString(&cfg.Fetch.Selectors.Entry, f.Selectors.Entry)
	setString(&cfg.Fetch.Selectors.Title, f.Selectors.Title)
	setString(&cfg.Fetch.Selectors.Stars, f.Selectors.Stars)
	setString(&cfg.Browser.BrowserBin, f.Browser.BrowserBin)
	setString(&cfg.Server.Host, f.Server.Host)
	setString(&cfg.Server.Mode, f.Server.Mode)
	setString(&cfg.Webhook.URL, f.Webhook.URL)
	setString(&cfg.Webhook.Secret, f.Webhook.Secret)
	setString(&cfg.Log.Level, f.Log.Level)
	setString(&cfg.Log.Format, f.Log.Format)

	setBool(&cfg.Fetch.ChromeTLS, f.ChromeTLS)
	setBool(&cfg.Fetch.Strict, f.Strict)
	setBool(&cfg.Browser.Headless, f.Browser.Headless)
	setBool(&cfg.Browser.NoSandbox, f.Browser.NoSandbox)
	setBool(&cfg.Browser.Stealth, f.Browser.Stealth)

	if f.MaxPages != nil {
		cfg.Fetch.MaxPages = *f.MaxPages
	}
	if f.Server.Port != 0 {
		cfg.Server.Port = f.Server.Port
	}
	if len(f.Headers) > 0 {
		cfg.Fetch.Headers = f.Headers
	}
	if len(f.APIKeys) > 0 {
		cfg.Auth.APIKeys = f.APIKeys
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("config: invalid timeout %q: %w", f.Timeout, err)
		}
		cfg.Fetch.Timeout = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
