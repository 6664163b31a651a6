package server

// StravaServerConfig holds the API endpoints and the OAuth credentials of the
// connected athlete.
type StravaServerConfig struct {
	BaseURL         string `mapstructure:"base_url"         yaml:"base_url"`
	AuthURL         string `mapstructure:"auth_url"         yaml:"auth_url"`
	ClientID        string `mapstructure:"client_id"        yaml:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"    yaml:"client_secret"`
	AccessToken     string `mapstructure:"access_token"     yaml:"access_token"`
	RefreshToken    string `mapstructure:"refresh_token"    yaml:"refresh_token"`
	ExpiresAt       int64  `mapstructure:"expires_at"       yaml:"expires_at"`
	PerPage         int    `mapstructure:"per_page"         yaml:"per_page"`
	RetryMax        int    `mapstructure:"retry_max"        yaml:"retry_max"`
	Timeout         string `mapstructure:"timeout"          yaml:"timeout"`
	WithDescription bool   `mapstructure:"with_description" yaml:"with_description"`
}

// SyncServerConfig controls the periodic resynchronisation of the agent.
type SyncServerConfig struct {
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
	OnStart  bool   `mapstructure:"on_start" yaml:"on_start"`
}

type HTTPServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
}
