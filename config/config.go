package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings of swapd, loaded from a config file, SWAP_*
// environment variables and flags, later sources winning.
type Config struct {
	Listen       string
	ProgramID    string
	RPC          string
	RPCNodes     []string
	DBUrl        string
	DBScheme     string
	DBUser       string
	DBPasswd     string
	DingUrl      string
	TokensFile   string
	LogLevel     string
	LogPath      string
	NotifyBuffer int
	NetStatus    bool
}

func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("db-scheme", "swap")
	v.SetDefault("log-level", "info")
	v.SetDefault("notify-buffer", 1024)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Listen:       v.GetString("listen"),
		ProgramID:    v.GetString("program-id"),
		RPC:          v.GetString("rpc"),
		RPCNodes:     getStringSlice(v, "rpc-nodes"),
		DBUrl:        v.GetString("db-url"),
		DBScheme:     v.GetString("db-scheme"),
		DBUser:       v.GetString("db-user"),
		DBPasswd:     v.GetString("db-passwd"),
		DingUrl:      v.GetString("ding-url"),
		TokensFile:   v.GetString("tokens-file"),
		LogLevel:     v.GetString("log-level"),
		LogPath:      v.GetString("log-path"),
		NotifyBuffer: v.GetInt("notify-buffer"),
		NetStatus:    v.GetBool("net-status"),
	}
	if cfg.NotifyBuffer <= 0 {
		return Config{}, fmt.Errorf("notify-buffer must be positive, got %d", cfg.NotifyBuffer)
	}
	return cfg, nil
}

// Endpoint is the RPC node to use when no latency probe picks one.
func (c Config) Endpoint() string {
	if len(c.RPCNodes) > 0 {
		return c.RPCNodes[0]
	}
	return c.RPC
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
