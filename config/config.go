package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Match    MatchConfig    `mapstructure:"match"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	// Driver selects the persistence implementation: "gorm" (default) or
	// "sql" for the plain database/sql driver.
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// MatchConfig carries the defaults applied when a create request leaves
// setup fields empty.
type MatchConfig struct {
	GameScoreLimit int  `mapstructure:"game_score_limit"`
	SinkPoints     int  `mapstructure:"sink_points"`
	WinByTwo       bool `mapstructure:"win_by_two"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("match.game_score_limit", 11)
	viper.SetDefault("match.sink_points", 3)
	viper.SetDefault("match.win_by_two", true)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
