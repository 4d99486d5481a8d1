package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Point is a window position in screen coordinates.
type Point struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// Dimensions is a window size.
type Dimensions struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// Settings configure the window and the runtime around it. The reconciler
// never looks at them.
type Settings struct {
	// Pos is recorded for toolkits that place windows themselves; fyne
	// leaves placement to the window manager.
	Pos            *Point     `yaml:"position,omitempty"`
	Size           Dimensions `yaml:"size"`
	Resizable      bool       `yaml:"resizable"`
	CenterOnScreen bool       `yaml:"center_on_screen"`
	Theme          string     `yaml:"theme"`
	FontSize       float32    `yaml:"font_size,omitempty"`
	WorkerThreads  int        `yaml:"worker_threads,omitempty"`
	LogLevel       string     `yaml:"log_level"`
	JSONLogs       bool       `yaml:"json_logs"`
}

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

func DefaultSettings() Settings {
	return Settings{
		Size:      Dimensions{Width: 400, Height: 300},
		Resizable: true,
		Theme:     ThemeDark,
		LogLevel:  "info",
	}
}

// LoadSettings reads path over the defaults and then applies environment
// overrides. A missing file is not an error; an empty path skips the file.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return s, fmt.Errorf("read settings %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("parse settings %s: %w", path, err)
			}
		}
	}
	s.ApplyEnv()
	return s, s.Validate()
}

// ApplyEnv applies FLEMISH_LOG_LEVEL, DEBUG=1, FLEMISH_JSON_LOGS and
// FLEMISH_THEME.
func (s *Settings) ApplyEnv() {
	if level := os.Getenv("FLEMISH_LOG_LEVEL"); level != "" {
		s.LogLevel = level
	} else if os.Getenv("DEBUG") == "1" {
		s.LogLevel = "debug"
	}
	if os.Getenv("FLEMISH_JSON_LOGS") == "true" {
		s.JSONLogs = true
	}
	if t := os.Getenv("FLEMISH_THEME"); t != "" {
		s.Theme = t
	}
}

func (s Settings) Validate() error {
	if s.Size.Width <= 0 || s.Size.Height <= 0 {
		return fmt.Errorf("invalid window size %vx%v", s.Size.Width, s.Size.Height)
	}
	switch strings.ToLower(s.Theme) {
	case "", ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	if s.FontSize < 0 {
		return fmt.Errorf("invalid font size %v", s.FontSize)
	}
	return nil
}
