package config

import (
    "os"
    "strconv"

    yaml "gopkg.in/yaml.v3"

    "agrinav/internal/opt"
)

// Config holds service settings. Values come from an optional YAML file,
// then environment variables on top.
type Config struct {
    ListenAddr     string      `yaml:"listen_addr"`
    DatabaseURL    string      `yaml:"database_url"`
    RedisURL       string      `yaml:"redis_url"`
    SpeedKmph      float64     `yaml:"speed_kmph"`
    DefaultWeights opt.Weights `yaml:"default_weights"`
    RateRPS        float64     `yaml:"rate_rps"`
    RateBurst      int         `yaml:"rate_burst"`
}

func Default() Config {
    return Config{
        ListenAddr:     ":8080",
        SpeedKmph:      opt.AssumedSpeedKmph,
        DefaultWeights: opt.DefaultWeights(),
        RateRPS:        50,
        RateBurst:      100,
    }
}

// Load reads path (or CONFIG_PATH when path is empty), overlays the file on
// the defaults, then applies environment overrides. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" { path = os.Getenv("CONFIG_PATH") }
    if path != "" {
        data, err := os.ReadFile(path)
        if err == nil {
            if err := yaml.Unmarshal(data, &cfg); err != nil { return Config{}, err }
        } else if !os.IsNotExist(err) {
            return Config{}, err
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.ListenAddr = ":" + v }
    if v := os.Getenv("DATABASE_URL"); v != "" { cfg.DatabaseURL = v }
    if v := os.Getenv("REDIS_URL"); v != "" { cfg.RedisURL = v }
    if v := os.Getenv("SPEED_KMPH"); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 { cfg.SpeedKmph = f }
    }
    if v := os.Getenv("RATE_RPS"); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 { cfg.RateRPS = f }
    }
    if v := os.Getenv("RATE_BURST"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 { cfg.RateBurst = n }
    }
}
