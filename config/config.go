package config

import "time"

// Config holds all runtime settings for the bot and the web panel.
type Config struct {
	Token string `mapstructure:"token"`

	GuildID          string `mapstructure:"guild_id"`
	TriggerChannelID string `mapstructure:"trigger_channel_id"`
	ControlChannelID string `mapstructure:"control_channel_id"`
	CategoryID       string `mapstructure:"category_id"`

	ReclaimDelay time.Duration `mapstructure:"reclaim_delay"`

	DBPath    string `mapstructure:"db_path"`
	PanelAddr string `mapstructure:"panel_addr"`
	MusicDir  string `mapstructure:"music_dir"`
	LogLevel  string `mapstructure:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ReclaimDelay: 3 * time.Second,
		DBPath:       "maxxos.db",
		PanelAddr:    ":22020",
		MusicDir:     "music",
		LogLevel:     "info",
	}
}
