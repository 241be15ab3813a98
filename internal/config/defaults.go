package config

const (
	defaultStateDir              = "~/.local/share/streamwarden"
	defaultLogDir                = "~/.local/share/streamwarden/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultRequestTimeout        = 15
	defaultRetryAttempts         = 3
	defaultNotifyRequestTimeout  = 10
	defaultPauseTimeoutSeconds   = 300
	defaultPausePollSeconds      = 20
	defaultPauseScanSeconds      = 60
	defaultPauseMessage          = "Your stream was paused too long and has been stopped."
	defaultMaxPerUser            = 2
	defaultQuotaWindowHours      = 24
	defaultQuotaMode             = "plays"
	defaultTranscodeMode         = "always"
	defaultSerialWindowDays      = 7
	defaultSerialThresholdPct    = 50
	defaultSerialGroupBy         = "player"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		MediaServer: MediaServer{
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
		},
		MonitorService: MonitorService{
			RequestTimeout: defaultRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Pause: Pause{
			TimeoutSeconds:      defaultPauseTimeoutSeconds,
			PollIntervalSeconds: defaultPausePollSeconds,
			ScanIntervalSeconds: defaultPauseScanSeconds,
			Message:             defaultPauseMessage,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Policies: Policies{
			ConcurrentStreams: ConcurrentStreams{
				MaxPerUser: defaultMaxPerUser,
			},
			Transcode: Transcode{
				Mode: defaultTranscodeMode,
			},
			WatchQuota: WatchQuota{
				WindowHours: defaultQuotaWindowHours,
				Mode:        defaultQuotaMode,
			},
			SerialTranscode: SerialTranscode{
				WindowDays:       defaultSerialWindowDays,
				ThresholdPercent: defaultSerialThresholdPct,
				GroupBy:          defaultSerialGroupBy,
			},
		},
	}
}
