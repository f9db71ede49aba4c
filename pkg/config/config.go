package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAssistantID = "ai@campusconnect.com"
	defaultModel       = "gpt-4o-mini"
	defaultAPIKeyEnv   = "OPENAI_API_KEY"
	defaultSweepCron   = "0 * * * *"
)

// EffectiveConfigResult holds the merged configuration plus the resolved
// listen address, storage path and a description of where values came
// from (defaults, file, env).
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string
}

// Addr joins address and port into a dialable listen address.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := c.Server.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

// Defaults returns a config populated with the built-in defaults.
func Defaults() *Config {
	var c Config
	c.Server.Address = "127.0.0.1"
	c.Server.Port = 8080
	c.Server.DBPath = "./db"
	c.Logging.Level = "info"
	c.Assistant.ID = DefaultAssistantID
	c.Assistant.Model = defaultModel
	c.Assistant.APIKeyEnv = defaultAPIKeyEnv
	c.Assistant.RPS = 1
	c.Assistant.Burst = 3
	c.Assistant.Timeout = Duration(30 * time.Second)
	c.Sweep.Enabled = true
	c.Sweep.Cron = defaultSweepCron
	c.Undo.Grace = Duration(3 * time.Second)
	c.Undo.LongPress = Duration(time.Second)
	return &c
}

// ParseCommandFlags defines and parses command-line flags and returns
// their values plus a set of flags the user explicitly provided.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrFlag := flag.String("addr", "", "listen address (host:port)")
	dbFlag := flag.String("db", "", "path to the storage directory")
	cfgFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrFlag, *dbFlag, *cfgFlag, setFlags
}

// ResolveConfigPath decides the config file path using the flag-provided
// value when set, then the env var, then the conventional default.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet && flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("CAMPUSCONNECT_CONFIG"); p != "" {
		return p
	}
	return "campusconnect.yaml"
}

// LoadEffective loads the config file (when present), applies env
// overrides and returns the effective result. A missing file is not an
// error; defaults plus env apply.
func LoadEffective(path string) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult
	cfg := Defaults()
	source := "defaults"

	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return res, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			source = "file:" + path
		} else if !os.IsNotExist(err) {
			return res, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if applyEnv(cfg) {
		source += "+env"
	}

	res.Config = cfg
	res.Addr = cfg.Addr()
	res.DBPath = cfg.Server.DBPath
	res.Source = source
	return res, nil
}

// applyEnv overlays CAMPUSCONNECT_* env vars onto cfg and reports
// whether any were used.
func applyEnv(cfg *Config) bool {
	used := false
	if v := os.Getenv("CAMPUSCONNECT_ADDR"); v != "" {
		cfg.Server.Address = v
		used = true
	}
	if v := os.Getenv("CAMPUSCONNECT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
			used = true
		}
	}
	if v := os.Getenv("CAMPUSCONNECT_DB"); v != "" {
		cfg.Server.DBPath = v
		used = true
	}
	if v := os.Getenv("CAMPUSCONNECT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
		used = true
	}
	if v := os.Getenv("CAMPUSCONNECT_ASSISTANT_ID"); v != "" {
		cfg.Assistant.ID = v
		used = true
	}
	if v := os.Getenv("CAMPUSCONNECT_SWEEP_CRON"); v != "" {
		cfg.Sweep.Cron = v
		used = true
	}
	return used
}
