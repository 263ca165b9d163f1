package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where the shell looks for its config when none is given.
const DefaultPath = "~/.config/webdesk/config.toml"

type Config struct {
	AppName    string          `toml:"app_name"`
	AppID      string          `toml:"app_id"`
	SocketPath string          `toml:"socket_path"`
	ConfigDir  string          `toml:"config_dir"`
	Window     WindowConfig    `toml:"window"`
	Web        WebConfig       `toml:"web"`
	Wallpaper  WallpaperConfig `toml:"wallpaper"`
	Dock       DockConfig      `toml:"dock"`
	Power      PowerConfig     `toml:"power"`
	Tracker    TrackerConfig   `toml:"tracker"`
	Search     SearchConfig    `toml:"search"`
	IPC        IPCConfig       `toml:"ipc"`
	Log        LogConfig       `toml:"log"`
}

type WindowConfig struct {
	Title      string `toml:"title"`
	Fullscreen bool   `toml:"fullscreen"`
	Decorated  bool   `toml:"decorated"`
	KeepBelow  bool   `toml:"keep_below"`
	LayerShell bool   `toml:"layer_shell"` // background layer on wayland
}

type WebConfig struct {
	HTMLPath           string `toml:"html_path"`
	Debug              bool   `toml:"debug"`
	DisableCompositing bool   `toml:"disable_compositing"`
}

type WallpaperConfig struct {
	ConfigFile string `toml:"config_file"`
}

type DockConfig struct {
	CuratedFile   string   `toml:"curated_file"`
	UseXDGDirs    bool     `toml:"use_xdg_dirs"`
	ExtraDirs     []string `toml:"extra_dirs"`
	Watch         bool     `toml:"watch"`
	IconSize      int      `toml:"icon_size"`
	IconCacheSize int      `toml:"icon_cache_size"`
	ParseWorkers  int      `toml:"parse_workers"`
}

type PowerConfig struct {
	ServiceControl string `toml:"service_control"`
	IconSize       int    `toml:"icon_size"`
}

type TrackerConfig struct {
	Backend string `toml:"backend"` // auto, sway, x11, none
}

type SearchConfig struct {
	MaxResults int `toml:"max_results"`
}

type IPCConfig struct {
	Socket bool `toml:"socket"`
	DBus   bool `toml:"dbus"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

var DefaultConfig = Config{
	AppName:    "webdesk",
	AppID:      "io.github.chess10kp.WebDesk",
	SocketPath: "/tmp/webdesk_socket",
	ConfigDir:  "~/.config/webdesk",
	Window: WindowConfig{
		Title:      "WebDesk Shell",
		Fullscreen: true,
		Decorated:  false,
		KeepBelow:  true,
		LayerShell: true,
	},
	Web: WebConfig{
		HTMLPath:           "",
		Debug:              false,
		DisableCompositing: true,
	},
	Wallpaper: WallpaperConfig{
		ConfigFile: "",
	},
	Dock: DockConfig{
		CuratedFile:   "",
		UseXDGDirs:    true,
		ExtraDirs:     []string{},
		Watch:         true,
		IconSize:      48,
		IconCacheSize: 256,
		ParseWorkers:  8,
	},
	Power: PowerConfig{
		ServiceControl: "systemctl",
		IconSize:       48,
	},
	Tracker: TrackerConfig{
		Backend: "auto",
	},
	Search: SearchConfig{
		MaxResults: 10,
	},
	IPC: IPCConfig{
		Socket: true,
		DBus:   true,
	},
	Log: LogConfig{
		Level: "info",
		File:  "",
	},
}

// Default returns a copy of DefaultConfig with its paths expanded.
func Default() *Config {
	cfg := DefaultConfig
	cfg.Dock.ExtraDirs = append([]string{}, DefaultConfig.Dock.ExtraDirs...)
	cfg.expandPaths()
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	expandedPath := expandPath(path)

	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, err
	}

	// Keys missing from the file keep their default values.
	cfg := DefaultConfig
	cfg.Dock.ExtraDirs = append([]string{}, DefaultConfig.Dock.ExtraDirs...)
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", expandedPath, err)
	}

	cfg.expandPaths()
	return &cfg, nil
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// expandPaths expands ~ and places the page, wallpaper and dock files left
// unset inside ConfigDir.
func (c *Config) expandPaths() {
	c.SocketPath = expandPath(c.SocketPath)
	c.ConfigDir = expandPath(c.ConfigDir)
	c.Web.HTMLPath = inConfigDir(c.ConfigDir, c.Web.HTMLPath, "desktop.html")
	c.Wallpaper.ConfigFile = inConfigDir(c.ConfigDir, c.Wallpaper.ConfigFile, "config.json")
	c.Dock.CuratedFile = inConfigDir(c.ConfigDir, c.Dock.CuratedFile, "dock.json")
	c.Web.HTMLPath = expandPath(c.Web.HTMLPath)
	c.Wallpaper.ConfigFile = expandPath(c.Wallpaper.ConfigFile)
	c.Dock.CuratedFile = expandPath(c.Dock.CuratedFile)
	for i, dir := range c.Dock.ExtraDirs {
		c.Dock.ExtraDirs[i] = expandPath(dir)
	}
	c.Log.File = expandPath(c.Log.File)
}

func inConfigDir(configDir, path, name string) string {
	if path == "" && configDir != "" {
		return filepath.Join(configDir, name)
	}
	return path
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.validateApp(); err != nil {
		return err
	}
	if err := c.validateWeb(); err != nil {
		return err
	}
	if err := c.validateDock(); err != nil {
		return err
	}
	if err := c.validatePower(); err != nil {
		return err
	}
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	return nil
}

// validateApp checks AppID, which doubles as the D-Bus well-known name.
func (c *Config) validateApp() error {
	if c.AppID == "" || !strings.Contains(c.AppID, ".") || strings.HasPrefix(c.AppID, ".") || strings.HasSuffix(c.AppID, ".") {
		return fmt.Errorf("invalid app_id: %q (must be a reverse-DNS name such as io.github.user.App)", c.AppID)
	}
	return nil
}

func (c *Config) validateWeb() error {
	if c.Web.HTMLPath == "" {
		return fmt.Errorf("web.html_path must not be empty")
	}
	if c.Wallpaper.ConfigFile == "" {
		return fmt.Errorf("wallpaper.config_file must not be empty")
	}
	return nil
}

func (c *Config) validateDock() error {
	d := c.Dock
	if d.IconSize < 16 || d.IconSize > 512 {
		return fmt.Errorf("invalid dock icon_size: %d (must be 16-512)", d.IconSize)
	}
	if d.IconCacheSize < 10 || d.IconCacheSize > 10000 {
		return fmt.Errorf("invalid icon_cache_size: %d (must be 10-10000)", d.IconCacheSize)
	}
	if d.ParseWorkers < 1 || d.ParseWorkers > 64 {
		return fmt.Errorf("invalid parse_workers: %d (must be 1-64)", d.ParseWorkers)
	}
	return nil
}

func (c *Config) validatePower() error {
	p := c.Power
	if p.ServiceControl == "" {
		return fmt.Errorf("power.service_control must not be empty")
	}
	if p.IconSize < 16 || p.IconSize > 512 {
		return fmt.Errorf("invalid power icon_size: %d (must be 16-512)", p.IconSize)
	}
	return nil
}

func (c *Config) validateTracker() error {
	t := c.Tracker
	validBackends := map[string]bool{"auto": true, "sway": true, "x11": true, "none": true}
	if !validBackends[t.Backend] {
		return fmt.Errorf("invalid tracker backend: %s (must be one of: auto, sway, x11, none)", t.Backend)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 1000 {
		return fmt.Errorf("invalid max_results: %d (must be 1-1000)", c.Search.MaxResults)
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Log.Level)
}

func ValidateConfig(path string) error {
	_, err := LoadAndValidateConfig(path)
	return err
}
