// Package config loads process configuration from environment variables into
// typed structs using github.com/caarlos0/env, with optional .env file support
// via github.com/joho/godotenv.
//
// Each configuration struct type is parsed exactly once per process and cached,
// so components can independently call Load for the config they need without
// coordinating startup order:
//
//	var mailCfg email.Config
//	config.MustLoad(&mailCfg)
package config
