// Package config loads service configuration from YAML with environment
// overrides.
package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"JUDGE_HTTP_ADDR" env-default:":8090"`
	ReadTimeout  time.Duration `yaml:"readTimeout" env:"JUDGE_HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"JUDGE_HTTP_WRITE_TIMEOUT" env-default:"120s"`
	IdleTimeout  time.Duration `yaml:"idleTimeout" env:"JUDGE_HTTP_IDLE_TIMEOUT" env-default:"90s"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level      string `yaml:"level" env:"JUDGE_LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"JUDGE_LOG_FORMAT" env-default:"console"`
	OutputPath string `yaml:"outputPath" env:"JUDGE_LOG_OUTPUT" env-default:"stdout"`
}

// JudgeConfig holds engine settings. The compile timeout is deliberately a
// long ceiling; the run timeout is the short per-case ceiling.
type JudgeConfig struct {
	WorkRoot       string        `yaml:"workRoot" env:"JUDGE_WORK_ROOT" env-default:"/tmp/judgecore/work"`
	CacheDir       string        `yaml:"cacheDir" env:"JUDGE_CACHE_DIR" env-default:"/tmp/judgecore/cache"`
	CompileTimeout time.Duration `yaml:"compileTimeout" env:"JUDGE_COMPILE_TIMEOUT" env-default:"30s"`
	RunTimeout     time.Duration `yaml:"runTimeout" env:"JUDGE_RUN_TIMEOUT" env-default:"3s"`
	MaxOutputBytes int64         `yaml:"maxOutputBytes" env:"JUDGE_MAX_OUTPUT_BYTES" env-default:"65536"`
	PoolSize       int           `yaml:"poolSize" env:"JUDGE_POOL_SIZE" env-default:"4"`
	SkipWarmUp     bool          `yaml:"skipWarmUp" env:"JUDGE_SKIP_WARMUP" env-default:"false"`
}

// AppConfig is the root configuration.
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Judge  JudgeConfig  `yaml:"judge"`
}

// Load reads the YAML file when it exists, otherwise falls back to
// environment variables and tag defaults.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return AppConfig{}, err
			}
			return cfg, nil
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
