// Package config provides configuration management for the merge tool.
//
// It utilizes Viper for loading configuration from environment
// variables and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided
// into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details for the merge history
//   - Storage: S3/MinIO credentials and snapshot bucket settings
//   - Log: Logging level and format
//   - Merge: merge engine toggles (currently inert)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
