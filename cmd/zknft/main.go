package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kysee/zknft/config"
	"github.com/kysee/zknft/db/metadb"
	"github.com/kysee/zknft/ledger"
	"github.com/kysee/zknft/log"
	"github.com/kysee/zknft/registry"
	"github.com/kysee/zknft/verifier"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "zknft",
	Short:         "Mint tokens against unique zk-SNARK solutions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.Flags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(
		serveCmd(),
		keyCmd(),
		checkCmd(),
		addSolutionCmd(),
		mintCmd(),
		ownerOfCmd(),
		supplyCmd(),
		exportVerifierCmd(),
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and starts the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootCmd.PersistentFlags())
	if err != nil {
		return nil, err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
		return nil, fmt.Errorf("invalid log.output: %w", err)
	}
	return cfg, nil
}

// openLedger opens the configured database and verifier.
func openLedger(cfg *config.Config) (*ledger.Ledger, error) {
	owner, err := cfg.Owner()
	if err != nil {
		return nil, err
	}
	var v verifier.Verifier
	if cfg.Verifier.Key != "" {
		vk, err := verifier.LoadVerifyingKey(cfg.Verifier.Key)
		if err != nil {
			return nil, err
		}
		g, err := verifier.NewGroth16(vk)
		if err != nil {
			return nil, err
		}
		log.Infow("verification key loaded", "path", cfg.Verifier.Key, "inputs", g.NbInputs())
		v = g
	}
	database, err := metadb.New(cfg.DB.Type, cfg.DBPath())
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(database, &ledger.Config{
		Owner:     owner,
		Metadata:  cfg.Metadata(),
		Verifier:  v,
		CacheSize: registry.DefaultCacheSize,
	})
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return l, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
