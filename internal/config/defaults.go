package config

const (
	defaultConfigPath           = "~/.config/mangarchive/config.toml"
	defaultLibraryDir           = "."
	defaultStateDir             = "~/.local/share/mangarchive"
	defaultLogDir               = "~/.local/share/mangarchive/logs"
	defaultAPIBaseURL           = "https://api.mangadex.org"
	defaultUploadsURL           = "https://uploads.mangadex.org"
	defaultUserAgent            = "mangarchive/0.1.0"
	defaultTimeoutSeconds       = 60
	defaultListingDelaySeconds  = 5
	defaultMetadataDelaySeconds = 5
	defaultAssetDelaySeconds    = 2
	defaultPageSize             = 100
	defaultContentType          = "chapter"
	defaultRenderCommand        = "asciidoctor-epub3"
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

var (
	defaultContentRatings = []string{"safe", "suggestive", "erotica", "pornographic"}
	defaultIncludes       = []string{"scanlation_group", "user"}
	defaultRenderArgs     = []string{"-d", "book", "-S", "unsafe"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		API: API{
			BaseURL:        defaultAPIBaseURL,
			UploadsURL:     defaultUploadsURL,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Pacing: Pacing{
			ListingDelaySeconds:  defaultListingDelaySeconds,
			MetadataDelaySeconds: defaultMetadataDelaySeconds,
			AssetDelaySeconds:    defaultAssetDelaySeconds,
		},
		Catalog: Catalog{
			PageSize:       defaultPageSize,
			ContentType:    defaultContentType,
			ContentRatings: append([]string(nil), defaultContentRatings...),
			Includes:       append([]string(nil), defaultIncludes...),
		},
		Render: Render{
			Enabled: true,
			Command: defaultRenderCommand,
			Args:    append([]string(nil), defaultRenderArgs...),
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
