package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr        = ":3000"
	DefaultSiteName          = "guildgate"
	DefaultStateTTL          = 10 * time.Minute
	DefaultRequestTimeout    = 10 * time.Second
	DefaultMemberAddInterval = 1 * time.Second
	DefaultRefreshInterval   = 24 * time.Hour
)

type PostgresConfig struct {
	ConnStr         string `yaml:"connStr"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	ConnMaxIdleTime int    `yaml:"connMaxIdleTime"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"`
}

// DiscordConfig holds the OAuth application and bot credentials.
type DiscordConfig struct {
	ClientID              string `yaml:"clientId"`
	ClientSecret          string `yaml:"clientSecret"`
	BotToken              string `yaml:"botToken"`
	RedirectURL           string `yaml:"redirectUrl"`
	InteractionsPublicKey string `yaml:"interactionsPublicKey"`
}

type Config struct {
	Debug             bool           `yaml:"debug"`
	ListenAddr        string         `yaml:"address"`
	SiteName          string         `yaml:"siteName"`
	RedisURL          string         `yaml:"redisUrl"`
	StateTTL          time.Duration  `yaml:"stateTtl"`
	RequestTimeout    time.Duration  `yaml:"requestTimeout"`
	MemberAddInterval time.Duration  `yaml:"memberAddInterval"`
	RefreshInterval   time.Duration  `yaml:"refreshInterval"`
	Postgres          PostgresConfig `yaml:"postgres"`
	Discord           DiscordConfig  `yaml:"discord"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.SiteName == "" {
		c.SiteName = DefaultSiteName
	}
	if c.StateTTL == 0 {
		c.StateTTL = DefaultStateTTL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MemberAddInterval == 0 {
		c.MemberAddInterval = DefaultMemberAddInterval
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	required := map[string]string{
		"discord.clientId":              c.Discord.ClientID,
		"discord.clientSecret":          c.Discord.ClientSecret,
		"discord.botToken":              c.Discord.BotToken,
		"discord.redirectUrl":           c.Discord.RedirectURL,
		"discord.interactionsPublicKey": c.Discord.InteractionsPublicKey,
		"postgres.connStr":              c.Postgres.ConnStr,
	}
	for key, val := range required {
		if val == "" {
			return fmt.Errorf("missing required config value: %s", key)
		}
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("GUILDGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	decodeOpt := func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }
	if err := viper.Unmarshal(&config, decodeOpt); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
