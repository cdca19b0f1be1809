package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kysee/zknft/log"
	"github.com/kysee/zknft/verifier"
	"github.com/spf13/cobra"
)

func exportVerifierCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-verifier",
		Short: "Write a Solidity verifier contract for the configured verification key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Verifier.Key == "" {
				return fmt.Errorf("verifier.key is required")
			}
			vk, err := verifier.LoadVerifyingKey(cfg.Verifier.Key)
			if err != nil {
				return err
			}
			g, err := verifier.NewGroth16(vk)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := g.ExportSolidity(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to export verifier: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Infow("solidity verifier generated", "path", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", filepath.Join("contracts", "Verifier.sol"), "output file")
	return cmd
}
