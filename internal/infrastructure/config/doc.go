// Package config handles loading and validating FleetAuth configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with FLEETAUTH_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Secrets (storage secret, JWT secret, broker password, InfluxDB token)
//     should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - Both the storage secret and the JWT secret must be at least 32 characters
//
// Usage:
//
//	cfg, err := config.Load(config.PathFromEnv())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
