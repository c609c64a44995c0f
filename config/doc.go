// Package config loads application configuration with viper.
//
// LoadConfig looks for config.yml and .env files in the usual places
// (cmd/<service>/, config/, the working directory), reads the YAML, loads the
// .env file with godotenv and lets environment variables override any key:
// CONTAINER_EAGER_SINGLETONS maps to container.eager_singletons.
//
//	var cfg AppConfig
//	err := config.Load("hello", &cfg)
//
// Load also runs ApplyDefaults and Validate when the target implements them.
package config
