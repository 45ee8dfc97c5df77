package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Scratch workspace layout below WorkDir
const (
	TypesDirName    = "types_xmls"
	CommandsDirName = "commands_xmls"
)

// Report formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// CommonDirName is the directory holding the shared, non board specific XML files
const CommonDirName = "common"

// EnvConfigPath overrides the default config file location
const EnvConfigPath = "CMDLIST_CONFIG"

// DefaultBoards lists the hardware variants with their own XML directory
var DefaultBoards = []string{
	"esr1000", "esr1200", "esr15", "esr15xx", "esr1700", "esr1x", "esr200",
	"esr2x", "esr3100", "esr3200", "esr3300", "esr3x", "vesr", "wlc30",
}

// Config represents cmdlist configuration options
type Config struct {
	// Boards are the directory names treated as board directories
	Boards []string `yaml:"boards"`

	// Substring is searched for in ptype patterns, as is and with "/" escaped
	Substring string `yaml:"substring"`

	// WorkDir is the scratch directory created for the duration of a run
	WorkDir string `yaml:"work_dir"`

	// Output is the path of the generated report
	Output string `yaml:"output"`

	// Format selects the report layout (text, markdown, html)
	Format string `yaml:"format"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// WorkspaceConfig describes the scratch workspace and how source directories are classified
type WorkspaceConfig struct {
	Root   string   // Scratch root, removed at the end of the run
	Boards []string // Board directory names
}

// TypesDir returns the folder collecting type definition files.
func (w WorkspaceConfig) TypesDir() string {
	return filepath.Join(w.Root, TypesDirName)
}

// CommandsDir returns the folder collecting command definition files.
func (w WorkspaceConfig) CommandsDir() string {
	return filepath.Join(w.Root, CommandsDirName)
}

// DefaultConfig returns a Config with the stock board list and interface-range substring
func DefaultConfig() *Config {
	return &Config{
		Boards:    append([]string(nil), DefaultBoards...),
		Substring: "[1-2]/",
		WorkDir:   "./xmls",
		Output:    "commands.list",
		Format:    FormatText,
		LogLevel:  "info",
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if len(fileCfg.Boards) > 0 {
		cfg.Boards = fileCfg.Boards
	}
	if fileCfg.Substring != "" {
		cfg.Substring = fileCfg.Substring
	}
	if fileCfg.WorkDir != "" {
		cfg.WorkDir = fileCfg.WorkDir
	}
	if fileCfg.Output != "" {
		cfg.Output = fileCfg.Output
	}
	if fileCfg.Format != "" {
		cfg.Format = fileCfg.Format
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}

	return cfg, nil
}

// DefaultConfigPath returns $CMDLIST_CONFIG when set, otherwise
// .cmdlist/config.yaml below the current working directory.
func DefaultConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(cwd, ".cmdlist", "config.yaml"), nil
}

// Overrides carries CLI flag values; nil fields were not given on the command line
type Overrides struct {
	Boards    *[]string
	Substring *string
	WorkDir   *string
	Output    *string
	Format    *string
	LogLevel  *string
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(o Overrides) {
	if o.Boards != nil {
		c.Boards = *o.Boards
	}
	if o.Substring != nil {
		c.Substring = *o.Substring
	}
	if o.WorkDir != nil {
		c.WorkDir = *o.WorkDir
	}
	if o.Output != nil {
		c.Output = *o.Output
	}
	if o.Format != nil {
		c.Format = *o.Format
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
}

// Validate validates the configuration values and drops duplicate boards
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Substring == "" {
		return fmt.Errorf("substring cannot be empty")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir cannot be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	c.Boards = lo.Uniq(lo.Compact(c.Boards))
	if len(c.Boards) == 0 {
		return fmt.Errorf("at least one board must be configured")
	}
	if lo.Contains(c.Boards, CommonDirName) {
		return fmt.Errorf("%q is reserved and cannot be used as a board name", CommonDirName)
	}

	switch c.Format {
	case FormatText, FormatMarkdown, FormatHTML:
	default:
		return fmt.Errorf("invalid format %q, must be one of: text, markdown, html", c.Format)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	return nil
}

// Workspace derives the scratch workspace settings.
func (c *Config) Workspace() WorkspaceConfig {
	return WorkspaceConfig{
		Root:   c.WorkDir,
		Boards: c.Boards,
	}
}
