package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds configuration from defaults, an optional config file, and
// MAXXOS_* environment variables. Precedence: defaults < file < env.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	// Every key needs a default so AutomaticEnv can feed Unmarshal.
	v.SetDefault("token", "")
	v.SetDefault("guild_id", "")
	v.SetDefault("trigger_channel_id", "")
	v.SetDefault("control_channel_id", "")
	v.SetDefault("category_id", "")
	v.SetDefault("reclaim_delay", cfg.ReclaimDelay)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("panel_addr", cfg.PanelAddr)
	v.SetDefault("music_dir", cfg.MusicDir)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix("MAXXOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = "config.yaml"
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Token == "" {
		return cfg, errors.New("token is required (MAXXOS_TOKEN or config file)")
	}
	if cfg.TriggerChannelID == "" || cfg.ControlChannelID == "" {
		return cfg, errors.New("trigger_channel_id and control_channel_id are required")
	}

	return cfg, nil
}
