// Package config loads node settings from defaults, a .env file, ZKNFT_
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/log"
	"github.com/kysee/zknft/token"
	"github.com/kysee/zknft/types"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ZKNFT"

	DefaultDBType    = db.TypePebble
	DefaultAPIHost   = "0.0.0.0"
	DefaultAPIPort   = 9090
	DefaultLogLevel  = "info"
	DefaultLogOutput = "stderr"
	defaultDatadir   = ".zknft" // prefixed with the user's home directory
)

type Config struct {
	Datadir  string         `mapstructure:"datadir"`
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	API      APIConfig      `mapstructure:"api"`
	Token    TokenConfig    `mapstructure:"token"`
	Verifier VerifierConfig `mapstructure:"verifier"`
}

type DBConfig struct {
	Type string `mapstructure:"type"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type TokenConfig struct {
	Name    string `mapstructure:"name"`
	Symbol  string `mapstructure:"symbol"`
	BaseURI string `mapstructure:"baseuri"`
	// Owner is the contract owner address, also used as the operator
	// account of the API and CLI.
	Owner string `mapstructure:"owner"`
}

type VerifierConfig struct {
	// Key is the path of a ZoKrates verification.key. Empty accepts every
	// proof.
	Key string `mapstructure:"key"`
}

func defaultDatadirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, defaultDatadir)
}

// Flags registers every configuration key as a flag on flags.
func Flags(flags *flag.FlagSet) {
	flags.StringP("datadir", "d", defaultDatadirPath(), "data directory for the database")
	flags.String("db.type", DefaultDBType, fmt.Sprintf("database backend (%s, %s, %s, %s)",
		db.TypePebble, db.TypeLevelDB, db.TypeBadger, db.TypeInMemory))
	flags.StringP("log.level", "l", DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringP("log.output", "o", DefaultLogOutput, "log output (stdout, stderr or filepath)")
	flags.StringP("api.host", "a", DefaultAPIHost, "API host")
	flags.IntP("api.port", "p", DefaultAPIPort, "API port")
	flags.String("token.name", token.DefaultName, "token collection name")
	flags.String("token.symbol", token.DefaultSymbol, "token collection symbol")
	flags.String("token.baseuri", token.DefaultBaseURI, "base URI of token metadata")
	flags.String("token.owner", "", "contract owner address, the only account allowed to mint")
	flags.String("verifier.key", "", "path of the ZoKrates verification.key (empty accepts every proof)")
}

// Load reads the configuration. A missing .env file is not an error. flags
// may be nil.
func Load(flags *flag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return load(flags)
}

func load(flags *flag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("datadir", defaultDatadirPath())
	v.SetDefault("db.type", DefaultDBType)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.output", DefaultLogOutput)
	v.SetDefault("api.host", DefaultAPIHost)
	v.SetDefault("api.port", DefaultAPIPort)
	v.SetDefault("token.name", token.DefaultName)
	v.SetDefault("token.symbol", token.DefaultSymbol)
	v.SetDefault("token.baseuri", token.DefaultBaseURI)
	v.SetDefault("token.owner", "")
	v.SetDefault("verifier.key", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Type {
	case db.TypePebble, db.TypeLevelDB, db.TypeBadger, db.TypeInMemory:
	default:
		return fmt.Errorf("invalid db.type %q", c.DB.Type)
	}
	if !log.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port %d", c.API.Port)
	}
	if c.Token.Owner != "" {
		if _, err := types.ParseAddress(c.Token.Owner); err != nil {
			return fmt.Errorf("invalid token.owner: %w", err)
		}
	}
	return nil
}

// Owner returns the contract owner, failing if none is configured.
func (c *Config) Owner() (common.Address, error) {
	if c.Token.Owner == "" {
		return common.Address{}, fmt.Errorf("token.owner is required (use --token.owner or %s_TOKEN_OWNER)", EnvPrefix)
	}
	return types.ParseAddress(c.Token.Owner)
}

func (c *Config) Metadata() token.Metadata {
	return token.Metadata{Name: c.Token.Name, Symbol: c.Token.Symbol, BaseURI: c.Token.BaseURI}
}

// DBPath is where the database lives inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Datadir, "db")
}
