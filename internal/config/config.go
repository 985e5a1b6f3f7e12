package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"pineapplepoker-server/internal/util"
)

// Config provides configuration for Pineapple Poker
type Config struct {
	loaded         bool
	ListenAddr     string `yaml:"listenAddr" envconfig:"listen_addr"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		Format            string `yaml:"format" envconfig:"format"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Game struct {
		PlacementTimeout time.Duration `yaml:"placementTimeout" envconfig:"placement_timeout"`
		InterRoundDelay  time.Duration `yaml:"interRoundDelay" envconfig:"inter_round_delay"`
		BotMoveDelay     time.Duration `yaml:"botMoveDelay" envconfig:"bot_move_delay"`
		MaxPlayers       int           `yaml:"maxPlayers" envconfig:"max_players"`
		TotalRounds      int           `yaml:"totalRounds" envconfig:"total_rounds"`
		RoomRetention    time.Duration `yaml:"roomRetention" envconfig:"room_retention"`
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration.
// A missing config file is not an error; defaults and environment variables
// still apply. An empty pgDsn selects the in-memory store.
func Load() error {
	config = defaultConfig()

	configFile := util.Getenv("PPS_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("pps", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}

func defaultConfig() Config {
	c := Config{
		ListenAddr:     ":5080",
		MigrationsPath: "sql",
	}
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Game.PlacementTimeout = time.Minute
	c.Game.InterRoundDelay = 10 * time.Second
	c.Game.BotMoveDelay = 2 * time.Second
	c.Game.MaxPlayers = 4
	c.Game.TotalRounds = 3
	c.Game.RoomRetention = 24 * time.Hour

	return c
}
