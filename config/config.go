package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "battleship.yaml"

type Config struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	GameTTL       time.Duration `yaml:"game_ttl"`
	LogLevel      string        `yaml:"log_level"`
	Seed          int64         `yaml:"seed"`
	RankingKey    string        `yaml:"ranking_key"`
	EventsChannel string        `yaml:"events_channel"`
	SimGames      int           `yaml:"sim_games"`
}

func Defaults() Config {
	return Config{
		GameTTL:       24 * time.Hour,
		LogLevel:      "info",
		RankingKey:    "ranking",
		EventsChannel: "game-progress",
		SimGames:      10,
	}
}

// LoadConfig layers defaults, the optional YAML file named by
// BATTLESHIP_CONFIG, and the environment (after loading .env).
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found. Using environment variables.")
	}

	cfg := Defaults()
	path := os.Getenv("BATTLESHIP_CONFIG")
	if path == "" {
		path = defaultConfigFile
	}
	if err := loadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"REDIS_ADDR":     &cfg.RedisAddr,
		"REDIS_PASSWORD": &cfg.RedisPassword,
		"LOG_LEVEL":      &cfg.LogLevel,
		"RANKING_KEY":    &cfg.RankingKey,
		"EVENTS_CHANNEL": &cfg.EventsChannel,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("GAME_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GAME_TTL: %w", err)
		}
		cfg.GameTTL = d
	}
	if v := os.Getenv("SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SEED: %w", err)
		}
		cfg.Seed = n
	}
	if v := os.Getenv("SIM_GAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SIM_GAMES: %w", err)
		}
		cfg.SimGames = n
	}
	return nil
}
