package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/token"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const ownerHex = "0x1d41247a91dbcb4699b08987cc172cf746c241a5"

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultDBType, cfg.DB.Type)
	require.Equal(t, DefaultAPIPort, cfg.API.Port)
	require.Equal(t, DefaultLogLevel, cfg.Log.Level)
	require.Equal(t, token.DefaultBaseURI, cfg.Token.BaseURI)
	require.Equal(t, filepath.Join(cfg.Datadir, "db"), cfg.DBPath())
	require.Empty(t, cfg.Verifier.Key)

	_, err = cfg.Owner()
	require.Error(t, err)
}

func TestEnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ZKNFT_DB_TYPE", db.TypeBadger)
	t.Setenv("ZKNFT_API_PORT", "8081")
	t.Setenv("ZKNFT_TOKEN_OWNER", ownerHex)

	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	Flags(flags)
	require.NoError(t, flags.Parse([]string{"--api.port=7070", "--token.symbol=HOU"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.Equal(t, db.TypeBadger, cfg.DB.Type)
	// flags win over the environment
	require.Equal(t, 7070, cfg.API.Port)
	require.Equal(t, "HOU", cfg.Token.Symbol)
	require.Equal(t, token.DefaultName, cfg.Metadata().Name)

	owner, err := cfg.Owner()
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(ownerHex), owner)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ZKNFT_VERIFIER_KEY=/keys/verification.key\nZKNFT_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ZKNFT_VERIFIER_KEY")
		os.Unsetenv("ZKNFT_LOG_LEVEL")
	})

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "/keys/verification.key", cfg.Verifier.Key)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	for name, env := range map[string][2]string{
		"db":    {"ZKNFT_DB_TYPE", "mongodb"},
		"level": {"ZKNFT_LOG_LEVEL", "loud"},
		"port":  {"ZKNFT_API_PORT", "70000"},
		"owner": {"ZKNFT_TOKEN_OWNER", "0x1234"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load(nil)
			require.Error(t, err)
		})
	}
}
