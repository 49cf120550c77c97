package config

const (
	defaultWatchDir            = "~/.local/share/hopper/inbox"
	defaultArchiveDir          = "~/.local/share/hopper/archive"
	defaultMasterFile          = "~/.local/share/hopper/master.csv"
	defaultMetadataFile        = "~/.local/share/hopper/master.meta.json"
	defaultLogDir              = "~/.local/share/hopper/logs"
	defaultKeyColumn           = "id"
	defaultChecksumWaitSeconds = 5
	defaultChunkSize           = 4096
	defaultMaxFileSizeMB       = 500
	defaultCSVDelimiter        = ","
	defaultCSVEncoding         = "utf-8"
	defaultMaxKeysInSummary    = 20
	defaultLockTimeoutSeconds  = 30
	defaultLockRetryMillis     = 250
	defaultPollIntervalSeconds = 30
	defaultSettleSeconds       = 2
	defaultJournalRetention    = 90
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir:     defaultWatchDir,
			ArchiveDir:   defaultArchiveDir,
			MasterFile:   defaultMasterFile,
			MetadataFile: defaultMetadataFile,
			LogDir:       defaultLogDir,
		},
		Ingest: Ingest{
			KeyColumn:            defaultKeyColumn,
			SupportedExtensions:  []string{".csv"},
			ChecksumWaitSeconds:  defaultChecksumWaitSeconds,
			ChunkSize:            defaultChunkSize,
			MaxFileSizeMB:        defaultMaxFileSizeMB,
			CSVDelimiter:         defaultCSVDelimiter,
			CSVEncoding:          defaultCSVEncoding,
			MaxKeysInSummary:     defaultMaxKeysInSummary,
			PruneObsoleteColumns: true,
		},
		Locking: Locking{
			TimeoutSeconds:      defaultLockTimeoutSeconds,
			RetryIntervalMillis: defaultLockRetryMillis,
		},
		Watch: Watch{
			PollIntervalSeconds: defaultPollIntervalSeconds,
			SettleSeconds:       defaultSettleSeconds,
		},
		Journal: Journal{
			Enabled:       true,
			RetentionDays: defaultJournalRetention,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
