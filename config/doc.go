// Package config loads and validates configuration for dikit applications.
//
// LoadConfig layers a YAML file, an optional .env file and the process
// environment using Viper. Files are found in the usual places for a
// service (./cmd/<name>/config.yml, ./config.yml, .env.<name>, .env) unless
// given explicitly.
//
//	var cfg MyConfig
//	if err := config.LoadConfig("my-service", &cfg, config.WithEnvPrefix("MYSVC")); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Environment names map onto nested keys by splitting on underscores, so
// MYSVC_CONTAINER_LOG_RESOLUTIONS sets container.log_resolutions.
package config
