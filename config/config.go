// Package config loads mathlink settings from defaults, an optional YAML
// file and MATHLINK_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/mathlink/internal/logging"
)

// Config is the full set of settings.
type Config struct {
	Kernel KernelConfig `yaml:"kernel" mapstructure:"kernel"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// KernelConfig selects and launches the kernel process.
type KernelConfig struct {
	Program string   `yaml:"program" mapstructure:"program"`
	Args    []string `yaml:"args" mapstructure:"args"`
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	PTY     bool     `yaml:"pty" mapstructure:"pty"`
	// Heads are extra FullForm heads the codec accepts in replies.
	Heads []string `yaml:"heads" mapstructure:"heads"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CacheConfig picks the reply cache: "none", "memory" or "redis".
type CacheConfig struct {
	Mode          string        `yaml:"mode" mapstructure:"mode"`
	Size          int           `yaml:"size" mapstructure:"size"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type ServerConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"`
}

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Kernel: KernelConfig{
			Program: "wolfram",
			Args:    []string{"-rawterm"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Mode:      CacheNone,
			Size:      1024,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// envKeys maps environment variables onto config paths.
var envKeys = map[string][2]string{
	"MATHLINK_PROGRAM":        {"kernel", "program"},
	"MATHLINK_ARGS":           {"kernel", "args"},
	"MATHLINK_DIR":            {"kernel", "dir"},
	"MATHLINK_PTY":            {"kernel", "pty"},
	"MATHLINK_HEADS":          {"kernel", "heads"},
	"MATHLINK_LOG_LEVEL":      {"log", "level"},
	"MATHLINK_LOG_FORMAT":     {"log", "format"},
	"MATHLINK_CACHE":          {"cache", "mode"},
	"MATHLINK_CACHE_SIZE":     {"cache", "size"},
	"MATHLINK_CACHE_TTL":      {"cache", "ttl"},
	"MATHLINK_REDIS_ADDR":     {"cache", "redis_addr"},
	"MATHLINK_REDIS_PASSWORD": {"cache", "redis_password"},
	"MATHLINK_REDIS_DB":       {"cache", "redis_db"},
	"MATHLINK_LISTEN":         {"server", "listen"},
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	env := map[string]any{}
	for name, key := range envKeys {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		section, _ := env[key[0]].(map[string]any)
		if section == nil {
			section = map[string]any{}
			env[key[0]] = section
		}
		switch key[1] {
		case "args":
			section[key[1]] = strings.Fields(v)
		case "heads":
			section[key[1]] = splitList(v)
		default:
			section[key[1]] = v
		}
	}
	if err := decode(env, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid environment: %w", err)
	}

	return cfg, cfg.Validate()
}

func decode(raw map[string]any, cfg *Config) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Kernel.Program == "" {
		errs = append(errs, errors.New("kernel.program is empty"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Cache.Mode {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("cache.mode must be none, memory or redis, got %q", c.Cache.Mode))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	return errors.Join(errs...)
}
