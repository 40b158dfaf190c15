package catalog

// Config holds configuration for the partition catalog (AWS Glue).
type Config struct {
	// Region is the AWS region hosting the Glue catalog.
	Region string `mapstructure:"region" default:""`
	// Profile selects a shared-config credentials profile.
	// Empty uses the default credential chain.
	Profile string `mapstructure:"profile" default:""`
	// Endpoint overrides the Glue service endpoint (for local emulators).
	Endpoint string `mapstructure:"endpoint" default:""`
}
