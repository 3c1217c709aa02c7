package config

const (
	defaultDataDir           = "~/.local/share/fieldaudit"
	defaultLogDir            = "~/.local/share/fieldaudit/logs"
	defaultAPIBaseURL        = "https://api.auditpro.io/api/"
	defaultAPITimeoutSeconds = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
