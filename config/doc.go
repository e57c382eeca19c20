// Package config provides configuration loading for speechkit services.
//
// It uses Viper to merge YAML config files, .env files (via godotenv), and
// process environment variables into a single struct. Services embed
// ServiceConfig in their own config type and call LoadConfig with it.
//
// # Usage
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("sttd", &cfg)
package config
