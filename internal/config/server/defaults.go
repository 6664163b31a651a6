package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path: "./mystrava.db",
			},
		},
		Strava: StravaServerConfig{
			BaseURL:         "https://www.strava.com/api/v3",
			AuthURL:         "https://www.strava.com/oauth/token",
			PerPage:         200,
			RetryMax:        3,
			Timeout:         "30s",
			WithDescription: false,
		},
		Sync: SyncServerConfig{
			Schedule: "@every 6h",
			OnStart:  false,
		},
		HTTP: HTTPServerConfig{
			Address: "127.0.0.1:8080",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)

	viper.SetDefault("strava.base_url", defaults.Strava.BaseURL)
	viper.SetDefault("strava.auth_url", defaults.Strava.AuthURL)
	viper.SetDefault("strava.client_id", defaults.Strava.ClientID)
	viper.SetDefault("strava.client_secret", defaults.Strava.ClientSecret)
	viper.SetDefault("strava.access_token", defaults.Strava.AccessToken)
	viper.SetDefault("strava.refresh_token", defaults.Strava.RefreshToken)
	viper.SetDefault("strava.expires_at", defaults.Strava.ExpiresAt)
	viper.SetDefault("strava.per_page", defaults.Strava.PerPage)
	viper.SetDefault("strava.retry_max", defaults.Strava.RetryMax)
	viper.SetDefault("strava.timeout", defaults.Strava.Timeout)
	viper.SetDefault("strava.with_description", defaults.Strava.WithDescription)

	viper.SetDefault("sync.schedule", defaults.Sync.Schedule)
	viper.SetDefault("sync.on_start", defaults.Sync.OnStart)

	viper.SetDefault("http.address", defaults.HTTP.Address)
}
