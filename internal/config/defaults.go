package config

const (
	defaultStateDir             = "~/.local/share/transmute"
	defaultLogDir               = "~/.local/share/transmute/logs"
	defaultRulesPath            = "~/.config/transmute/rules.toml"
	defaultBatchOutputThreshold = 5
	defaultPollIntervalMS       = 50
	defaultCancelGraceTicks     = 50
	defaultTempDirectory        = "/tmp"
	defaultTempFilePrefix       = "transmute_"
	defaultTempFileSuffix       = ".tmp"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
			RulesPath: defaultRulesPath,
		},
		Conversion: Conversion{
			UseCanonicalFormats:  true,
			BatchOutputThreshold: defaultBatchOutputThreshold,
			PollIntervalMS:       defaultPollIntervalMS,
			CancelGraceTicks:     defaultCancelGraceTicks,
		},
		Temporary: Temporary{
			Directory:  defaultTempDirectory,
			FilePrefix: defaultTempFilePrefix,
			FileSuffix: defaultTempFileSuffix,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			Enabled: false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
