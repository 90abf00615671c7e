// Package config reads the optional imagepicker.yaml strings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/imagepicker/pkg/imagepicker"
)

// FileName is the strings file looked up in the project directory.
const FileName = "imagepicker.yaml"

// Config represents imagepicker.yaml.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Buttons ButtonsConfig `yaml:"buttons"`
	Errors  ErrorsConfig  `yaml:"errors"`
}

// AppConfig names the app in prompts and transcripts.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// ButtonsConfig overrides action titles.
type ButtonsConfig struct {
	Camera       string `yaml:"camera,omitempty"`
	PhotoLibrary string `yaml:"photo_library,omitempty"`
	Delete       string `yaml:"delete,omitempty"`
	Cancel       string `yaml:"cancel,omitempty"`
	OpenSettings string `yaml:"open_settings,omitempty"`
}

// ErrorsConfig overrides the settings prompt text per capability.
type ErrorsConfig struct {
	Camera       ErrorText `yaml:"camera"`
	PhotoLibrary ErrorText `yaml:"photo_library"`
}

// ErrorText is a prompt title and message.
type ErrorText struct {
	Title   string `yaml:"title,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string
	Strings    imagepicker.Config
}

// LoadOptional reads imagepicker.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Apply layers the file's non-empty strings over dst.
func (c *Config) Apply(dst *imagepicker.Config) {
	dst.SetButtonTitles(imagepicker.ButtonTitles{
		Camera:       strings.TrimSpace(c.Buttons.Camera),
		PhotoLibrary: strings.TrimSpace(c.Buttons.PhotoLibrary),
		Delete:       strings.TrimSpace(c.Buttons.Delete),
		Cancel:       strings.TrimSpace(c.Buttons.Cancel),
		OpenSettings: strings.TrimSpace(c.Buttons.OpenSettings),
	})
	dst.SetErrorText(imagepicker.Camera, strings.TrimSpace(c.Errors.Camera.Title), strings.TrimSpace(c.Errors.Camera.Message))
	dst.SetErrorText(imagepicker.PhotoLibrary, strings.TrimSpace(c.Errors.PhotoLibrary.Title), strings.TrimSpace(c.Errors.PhotoLibrary.Message))
}

// Resolve loads imagepicker.yaml (if present) from dir and resolves defaults.
// The app name falls back to the last element of the go.mod module path and
// then to the directory name.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	modulePath := readModulePath(dir)
	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	strs := imagepicker.DefaultConfig()
	cfg.Apply(&strs)
	return &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		AppName:    appName,
		Strings:    strs,
	}, nil
}

// FindProjectRoot walks up from dir to the nearest directory holding
// imagepicker.yaml or go.mod. Without either it returns dir itself.
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for cur := abs; ; {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(cur, name)); err == nil {
				return cur, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		cur = parent
	}
}

func readModulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	if modulePath != "" {
		prefix, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			if i := strings.LastIndex(prefix, "/"); i >= 0 {
				prefix = prefix[i+1:]
			}
			if prefix != "" {
				return prefix
			}
		}
	}
	if base := filepath.Base(dir); base != "" && base != "." && base != string(filepath.Separator) {
		return base
	}
	return "app"
}
