package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/melih-ucgun/ifprop/internal/crypto"
)

// Config represents the root structure of ifprop.yaml.
type Config struct {
	Vars      map[string]string `yaml:"vars,omitempty"`     // Global variables
	Includes  []string          `yaml:"includes,omitempty"` // Other config files to include
	Imports   []string          `yaml:"imports,omitempty"`  // Alias for includes
	Resources []ResourceConfig  `yaml:"resources"`          // Resource list
	Hosts     []Host            `yaml:"hosts,omitempty"`    // Remote hosts (Optional)
}

// ResourceConfig holds the configuration of one resource.
type ResourceConfig struct {
	ID        string                 `yaml:"id,omitempty"`
	Name      string                 `yaml:"name"`
	Type      string                 `yaml:"type"`
	State     string                 `yaml:"state,omitempty"`
	When      string                 `yaml:"when,omitempty"` // Conditional execution logic
	DependsOn []string               `yaml:"depends_on,omitempty"`
	Params    map[string]interface{} `yaml:"params,omitempty"`
}

// Host holds connection information for a remote host.
type Host struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	User           string `yaml:"user"`
	Port           int    `yaml:"port"`
	SSHKeyPath     string `yaml:"ssh_key_path"`
	Password       string `yaml:"password"`
	KnownHostsPath string `yaml:"known_hosts_path"`
	BecomeMethod   string `yaml:"become_method"`   // sudo, pfexec
	BecomePassword string `yaml:"become_password"` // Optional (Recommended to come encrypted)
}

// DefaultID is the ID a resource gets when none is configured.
func DefaultID(resType, name string) string {
	return fmt.Sprintf("%s:%s", resType, name)
}

// FindHost returns the host with the given name.
func (c *Config) FindHost(name string) (*Host, error) {
	for i := range c.Hosts {
		if c.Hosts[i].Name == name {
			return &c.Hosts[i], nil
		}
	}
	return nil, fmt.Errorf("host %q not found in config", name)
}

// LoadConfig reads the YAML file at the specified path and converts it into a Config struct.
func LoadConfig(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// .env next to the config wins; otherwise the working directory is tried.
	envPath := filepath.Join(filepath.Dir(absPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if loadErr := godotenv.Load(envPath); loadErr != nil {
			pterm.Warning.Printf("Failed to load .env file: %v\n", loadErr)
		}
	} else {
		_ = godotenv.Load()
	}

	visited := make(map[string]bool)
	cfg, err := loadConfigRecursive(absPath, visited)
	if err != nil {
		return nil, err
	}

	expandConfig(cfg)
	if err := decryptConfig(cfg, MasterKey); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigRecursive(path string, visited map[string]bool) (*Config, error) {
	if visited[path] {
		return &Config{}, nil
	}
	visited[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file read error (%s): %w", path, err)
	}

	if len(data) == 0 {
		return &Config{}, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("yaml parse error (%s): %w", path, err)
	}

	includes := append(cfg.Includes, cfg.Imports...)
	baseDir := filepath.Dir(path)

	var allResources []ResourceConfig
	for _, includePath := range includes {
		includePath = os.ExpandEnv(includePath)
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		// A directory include means its main.yaml.
		if info, err := os.Stat(includePath); err == nil && info.IsDir() {
			includePath = filepath.Join(includePath, "main.yaml")
		}

		subCfg, err := loadConfigRecursive(filepath.Clean(includePath), visited)
		if err != nil {
			return nil, err
		}

		allResources = append(allResources, subCfg.Resources...)
		cfg.Hosts = append(cfg.Hosts, subCfg.Hosts...)

		if cfg.Vars == nil {
			cfg.Vars = make(map[string]string)
		}
		for k, v := range subCfg.Vars {
			if _, exists := cfg.Vars[k]; !exists {
				cfg.Vars[k] = v
			}
		}
	}

	cfg.Resources = append(allResources, cfg.Resources...)
	cfg.Includes, cfg.Imports = nil, nil

	return &cfg, nil
}

// expandConfig performs Env Var substitution on all string values in the configuration.
// Vars are exported first so resources can reference them.
func expandConfig(cfg *Config) {
	for k, v := range cfg.Vars {
		expanded := os.ExpandEnv(v)
		cfg.Vars[k] = expanded
		os.Setenv(k, expanded)
	}

	for i := range cfg.Resources {
		expandResource(&cfg.Resources[i])
	}

	for i := range cfg.Hosts {
		h := &cfg.Hosts[i]
		h.Address = os.ExpandEnv(h.Address)
		h.User = os.ExpandEnv(h.User)
		h.Password = os.ExpandEnv(h.Password)
		h.BecomePassword = os.ExpandEnv(h.BecomePassword)
		h.SSHKeyPath = os.ExpandEnv(h.SSHKeyPath)
		h.KnownHostsPath = os.ExpandEnv(h.KnownHostsPath)
		if h.Port == 0 {
			h.Port = 22
		}
	}
}

func expandResource(res *ResourceConfig) {
	res.Name = os.ExpandEnv(res.Name)
	res.Type = os.ExpandEnv(res.Type)
	res.State = os.ExpandEnv(res.State)

	if res.ID == "" {
		res.ID = DefaultID(res.Type, res.Name)
	}

	expandMap(res.Params)
}

func expandMap(m map[string]interface{}) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			m[k] = os.ExpandEnv(val)
		case map[string]interface{}:
			expandMap(val)
		case []interface{}:
			for i, item := range val {
				if str, ok := item.(string); ok {
					val[i] = os.ExpandEnv(str)
				} else if subMap, ok := item.(map[string]interface{}); ok {
					expandMap(subMap)
				}
			}
		}
	}
}

// Security & Decryption

func decryptConfig(cfg *Config, keyFn func() string) error {
	if !hasEncryptedContent(cfg) {
		return nil
	}

	key := keyFn()
	if key == "" {
		return fmt.Errorf("config contains encrypted values but no master key is available (set IFPROP_MASTER_KEY)")
	}

	decrypt := func(v string) (string, error) {
		return crypto.Decrypt(v, key)
	}

	for k, v := range cfg.Vars {
		plain, err := decrypt(v)
		if err != nil {
			return fmt.Errorf("var %s: %w", k, err)
		}
		cfg.Vars[k] = plain
		if plain != v {
			os.Setenv(k, plain)
		}
	}

	for i := range cfg.Resources {
		if err := walkStrings(cfg.Resources[i].Params, decrypt); err != nil {
			return fmt.Errorf("resource %s: %w", cfg.Resources[i].ID, err)
		}
	}

	for i := range cfg.Hosts {
		h := &cfg.Hosts[i]
		var err error
		if h.Password, err = decrypt(h.Password); err != nil {
			return fmt.Errorf("host %s password: %w", h.Name, err)
		}
		if h.BecomePassword, err = decrypt(h.BecomePassword); err != nil {
			return fmt.Errorf("host %s become_password: %w", h.Name, err)
		}
	}

	return nil
}

func hasEncryptedContent(cfg *Config) bool {
	for _, v := range cfg.Vars {
		if crypto.IsEncrypted(v) {
			return true
		}
	}

	found := false
	probe := func(v string) (string, error) {
		if crypto.IsEncrypted(v) {
			found = true
		}
		return v, nil
	}
	for i := range cfg.Resources {
		_ = walkStrings(cfg.Resources[i].Params, probe)
	}

	for _, h := range cfg.Hosts {
		if crypto.IsEncrypted(h.Password) || crypto.IsEncrypted(h.BecomePassword) {
			return true
		}
	}

	return found
}

// walkStrings replaces every string in m, recursing into maps and lists.
func walkStrings(m map[string]interface{}, fn func(string) (string, error)) error {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out, err := fn(val)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			m[k] = out
		case map[string]interface{}:
			if err := walkStrings(val, fn); err != nil {
				return fmt.Errorf("%s.%w", k, err)
			}
		case []interface{}:
			for i, item := range val {
				switch it := item.(type) {
				case string:
					out, err := fn(it)
					if err != nil {
						return fmt.Errorf("%s[%d]: %w", k, i, err)
					}
					val[i] = out
				case map[string]interface{}:
					if err := walkStrings(it, fn); err != nil {
						return fmt.Errorf("%s[%d].%w", k, i, err)
					}
				}
			}
		}
	}
	return nil
}

// MasterKey finds the key for age encrypted values: IFPROP_MASTER_KEY,
// then ~/.ifprop/master.key, then an interactive prompt.
func MasterKey() string {
	// 1. Env Var
	if key := os.Getenv("IFPROP_MASTER_KEY"); key != "" {
		return key
	}

	// 2. File (~/.ifprop/master.key)
	if home, err := os.UserHomeDir(); err == nil {
		keyPath := filepath.Join(home, ".ifprop", "master.key")
		if content, err := os.ReadFile(keyPath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	// 3. Interactive Prompt
	if isInteractive() {
		pterm.Println()
		pterm.Warning.Println("Encrypted content detected but IFPROP_MASTER_KEY not found.")
		key, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			WithDefaultText("Enter Master Key for decryption").
			Show()
		if err == nil && key != "" {
			return key
		}
	}

	return ""
}

func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
