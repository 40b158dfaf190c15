// Package config provides configuration management for the Partition Manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP trigger server settings (port, API key)
//   - Storage: S3/MinIO credentials and connection settings
//   - Catalog: Glue data catalog region, profile and endpoint
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.Region)
package config
