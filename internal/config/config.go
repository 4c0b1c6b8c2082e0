package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/mlvtools/mlvtools/internal/assemble"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".mlvtools"

// DefaultIgnoreKey marks notebook cells with no effect on generated scripts.
const DefaultIgnoreKey = "# No effect"

var varName = regexp.MustCompile(`^[a-zA-Z]\w*$`)

// Config holds the mlvtools configuration of one project.
type Config struct {
	Path       *PathConfig   `yaml:"path"`
	IgnoreKeys []string      `yaml:"ignore_keys"`
	Journal    JournalConfig `yaml:"journal"`

	DvcVarPythonCmdPath string `yaml:"dvc_var_python_cmd_path"`
	DvcVarPythonCmdName string `yaml:"dvc_var_python_cmd_name"`
	DvcVarMetaFilename  string `yaml:"dvc_var_meta_filename"`

	// TopDirectory is the working directory every configured path is
	// relative to. It is never read from the file.
	TopDirectory string `yaml:"-"`
}

// PathConfig locates generated artifacts under the top directory.
type PathConfig struct {
	PythonScriptRootDir string `yaml:"python_script_root_dir"`
	DvcCmdRootDir       string `yaml:"dvc_cmd_root_dir"`
	DvcMetadataRootDir  string `yaml:"dvc_metadata_root_dir"`
}

// JournalConfig controls the generation journal.
type JournalConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig(topDir string) *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		IgnoreKeys:          []string{DefaultIgnoreKey},
		DvcVarPythonCmdPath: "MLV_PY_CMD_PATH",
		DvcVarPythonCmdName: "MLV_PY_CMD_NAME",
		DvcVarMetaFilename:  "MLV_DVC_META_FILENAME",
		Journal: JournalConfig{
			Path: filepath.Join(home, ".local", "share", "mlvtools", "journal.jsonl"),
		},
		TopDirectory: topDir,
	}
}

// DefaultPath returns the standard config file path for a working directory.
func DefaultPath(workDir string) string {
	return filepath.Join(workDir, FileName)
}

// LoadFrom reads the config at path, relative to topDir. If the file doesn't
// exist, returns the validated default config.
func LoadFrom(path, topDir string) (*Config, error) {
	cfg := DefaultConfig(topDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, toolerr.Wrap(toolerr.Config, err, "cannot load conf from file %s", path)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, toolerr.Wrap(toolerr.Config, err, "cannot load conf from file %s, wrong format", path)
	}

	if cfg.Path != nil && cfg.Path.DvcMetadataRootDir == "" {
		cfg.Path.DvcMetadataRootDir = "."
	}

	// Expand ~ in journal path.
	if cfg.Journal.Path != "" && cfg.Journal.Path[0] == '~' {
		home, _ := os.UserHomeDir()
		cfg.Journal.Path = filepath.Join(home, cfg.Journal.Path[1:])
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("conf %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks variable names and that every configured directory exists.
func (c *Config) Validate() error {
	vars := []struct{ field, value string }{
		{"dvc_var_python_cmd_path", c.DvcVarPythonCmdPath},
		{"dvc_var_python_cmd_name", c.DvcVarPythonCmdName},
		{"dvc_var_meta_filename", c.DvcVarMetaFilename},
	}
	for _, v := range vars {
		if !varName.MatchString(v.value) {
			return toolerr.New(toolerr.Config,
				"configuration error %s must be a valid bash variable name: %q", v.field, v.value)
		}
	}

	if _, err := os.Stat(c.TopDirectory); err != nil {
		return toolerr.Wrap(toolerr.Config, err,
			"configuration error, can not find top directory %s", c.TopDirectory)
	}
	if c.Path == nil {
		return nil
	}

	dirs := []struct {
		field, value string
		required     bool
	}{
		{"python_script_root_dir", c.Path.PythonScriptRootDir, true},
		{"dvc_cmd_root_dir", c.Path.DvcCmdRootDir, true},
		{"dvc_metadata_root_dir", c.Path.DvcMetadataRootDir, false},
	}
	for _, d := range dirs {
		if d.required && d.value == "" {
			return toolerr.New(toolerr.Config, "configuration error path.%s is required", d.field)
		}
		if _, err := os.Stat(filepath.Join(c.TopDirectory, d.value)); err != nil {
			return toolerr.Wrap(toolerr.Config, err,
				"configuration error %s, can not find directory %s", d.field, d.value)
		}
	}
	return nil
}

// HasPaths reports whether output locations can be derived from the config.
func (c *Config) HasPaths() bool {
	return c.Path != nil
}

// DvcCmdOutputPath returns where the DVC command of script is generated.
// It must only be called when HasPaths is true.
func (c *Config) DvcCmdOutputPath(script string) string {
	return filepath.Join(c.TopDirectory, c.Path.DvcCmdRootDir, assemble.ToDvcCmdName(filepath.Base(script)))
}

// DvcMetadataOutputPath returns where the DVC metadata file of script lands.
// It must only be called when HasPaths is true.
func (c *Config) DvcMetadataOutputPath(script string) string {
	return filepath.Join(c.TopDirectory, c.Path.DvcMetadataRootDir, assemble.ToDvcMetaFilename(filepath.Base(script)))
}

// MetaFileRootDir returns the metadata directory relative to the top
// directory, empty when metadata files live in it directly.
func (c *Config) MetaFileRootDir() string {
	if c.Path == nil || filepath.Clean(c.Path.DvcMetadataRootDir) == "." {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(c.Path.DvcMetadataRootDir))
}
