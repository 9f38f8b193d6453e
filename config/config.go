package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes humane duration strings ("15m", "168h") from toml.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Configs struct {
	Env string `toml:"env"`

	ApiServer ServerConfigs    `toml:"api_server"`
	Database  DatabaseConfigs  `toml:"database"`
	Auth      AuthConfigs      `toml:"auth"`
	Session   SessionConfigs   `toml:"session"`
	Mail      MailConfigs      `toml:"mail"`
	Redis     RedisConfigs     `toml:"redis"`
	Frontend  FrontendConfigs  `toml:"frontend"`
	MagicLink MagicLinkConfigs `toml:"magic_link"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	// PublicURL is the externally reachable base url of this server. It is
	// embedded into oauth2 redirect urls and magic-link consumption urls.
	PublicURL string `toml:"public_url"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type AuthConfigs struct {
	AccessToken  TokenConfigs `toml:"access_token"`
	RefreshToken TokenConfigs `toml:"refresh_token"`

	Google   OAuth2Configs `toml:"google"`
	LinkedIn OAuth2Configs `toml:"linkedin"`
}

type TokenConfigs struct {
	Name       string   `toml:"name"`
	Secret     string   `toml:"secret"`
	Expiration Duration `toml:"expiration"`
}

type OAuth2Configs struct {
	Name         string   `toml:"name"`
	Issuer       string   `toml:"issuer"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Scopes       []string `toml:"scopes"`

	// Timeout bounds every outbound call to the provider: discovery, code
	// exchange and key fetch.
	Timeout Duration `toml:"timeout"`
}

type SessionConfigs struct {
	Name   string `toml:"name"`
	Secret string `toml:"secret"`
}

type MailConfigs struct {
	Region    string   `toml:"region"`
	AccessKey string   `toml:"access_key"`
	SecretKey string   `toml:"secret_key"`
	Endpoint  string   `toml:"endpoint"`
	Sender    string   `toml:"sender"`
	Timeout   Duration `toml:"timeout"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type FrontendConfigs struct {
	// URL is the base url of the frontend. Successful logins redirect to
	// {URL}/auth/callback, failed redirect logins to {URL}/auth/error.
	URL string `toml:"url"`
}

type MagicLinkConfigs struct {
	Expiration Duration `toml:"expiration"`

	// RequestsPerHour limits how many magic links a single email address
	// can request within an hour.
	RequestsPerHour int `toml:"requests_per_hour"`
}

// Load reads the configuration from the toml file at path, then overrides
// secrets with environment variables if they are set.
func Load(path string) (*Configs, error) {
	cfg := defaultConfigs()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	overrideEnv(&cfg.Database.Password, "DB_PASSWORD")
	overrideEnv(&cfg.Auth.AccessToken.Secret, "ACCESS_TOKEN_SECRET")
	overrideEnv(&cfg.Auth.RefreshToken.Secret, "REFRESH_TOKEN_SECRET")
	overrideEnv(&cfg.Auth.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	overrideEnv(&cfg.Auth.LinkedIn.ClientSecret, "LINKEDIN_CLIENT_SECRET")
	overrideEnv(&cfg.Session.Secret, "SESSION_SECRET")
	overrideEnv(&cfg.Mail.AccessKey, "MAIL_ACCESS_KEY")
	overrideEnv(&cfg.Mail.SecretKey, "MAIL_SECRET_KEY")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfigs() *Configs {
	return &Configs{
		Env: "local",
		ApiServer: ServerConfigs{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: Duration(15 * time.Minute),
			},
			RefreshToken: TokenConfigs{
				Name:       "refresh_token",
				Expiration: Duration(7 * 24 * time.Hour),
			},
			Google: OAuth2Configs{
				Name:    "google",
				Issuer:  "https://accounts.google.com",
				Scopes:  []string{"openid", "profile", "email"},
				Timeout: Duration(10 * time.Second),
			},
			LinkedIn: OAuth2Configs{
				Name:    "linkedin",
				Issuer:  "https://www.linkedin.com/oauth",
				Scopes:  []string{"openid", "profile", "email"},
				Timeout: Duration(10 * time.Second),
			},
		},
		Session: SessionConfigs{
			Name: "hemolens_session",
		},
		Mail: MailConfigs{
			Timeout: Duration(10 * time.Second),
		},
		MagicLink: MagicLinkConfigs{
			Expiration:      Duration(900 * time.Second),
			RequestsPerHour: 10,
		},
	}
}

func (c *Configs) validate() error {
	var missing []string

	if c.Database.Host == "" {
		missing = append(missing, "database.host")
	}

	if c.Auth.AccessToken.Secret == "" {
		missing = append(missing, "auth.access_token.secret")
	}

	if c.Auth.RefreshToken.Secret == "" {
		missing = append(missing, "auth.refresh_token.secret")
	}

	if c.Auth.AccessToken.Secret != "" && c.Auth.AccessToken.Secret == c.Auth.RefreshToken.Secret {
		return fmt.Errorf("access token and refresh token must not share a secret")
	}

	if c.Session.Secret == "" {
		missing = append(missing, "session.secret")
	}

	if c.Frontend.URL == "" {
		missing = append(missing, "frontend.url")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configs: %s", strings.Join(missing, ", "))
	}

	return nil
}

func overrideEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
