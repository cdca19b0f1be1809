package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/zknft/registry"
	"github.com/kysee/zknft/types"
	"github.com/spf13/cobra"
)

type solutionFlags struct {
	to    string
	proof string
}

func (f *solutionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.to, "to", "", "recipient address")
	cmd.Flags().StringVar(&f.proof, "proof", "", "path of the ZoKrates proof.json")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("proof")
}

// load parses the recipient and reads the proof file.
func (f *solutionFlags) load() (common.Address, *types.ProofFile, error) {
	to, err := types.ParseAddress(f.to)
	if err != nil {
		return common.Address{}, nil, err
	}
	pf, err := types.LoadProofFile(f.proof)
	if err != nil {
		return common.Address{}, nil, err
	}
	return to, pf, nil
}

func keyCmd() *cobra.Command {
	f := &solutionFlags{}
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the solution key of a proof",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			to, pf, err := f.load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), registry.KeyOf(to, pf.Proof, pf.Inputs).Hex())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func checkCmd() *cobra.Command {
	f := &solutionFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether a proof has already been used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			to, pf, err := f.load()
			if err != nil {
				return err
			}
			l, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			key := l.BuildKey(to, pf.Proof, pf.Inputs)
			exists, err := l.CheckIfSolutionExists(key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "exists": exists})
		},
	}
	f.register(cmd)
	return cmd
}

func addSolutionCmd() *cobra.Command {
	f := &solutionFlags{}
	cmd := &cobra.Command{
		Use:   "add-solution",
		Short: "Verify a proof and record its solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			to, pf, err := f.load()
			if err != nil {
				return err
			}
			l, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			receipt, err := l.AddSolution(to, pf.Proof, pf.Inputs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), receipt)
		},
	}
	f.register(cmd)
	return cmd
}

func mintCmd() *cobra.Command {
	f := &solutionFlags{}
	var tokenID string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Verify a proof, record its solution and mint a token as the contract owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			id, err := types.ParseWord(tokenID)
			if err != nil {
				return fmt.Errorf("invalid token id: %w", err)
			}
			to, pf, err := f.load()
			if err != nil {
				return err
			}
			l, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			receipt, err := l.MintNFT(l.Owner(), to, id, pf.Proof, pf.Inputs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), receipt)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&tokenID, "token-id", "", "token id to mint (decimal or 0x hex)")
	_ = cmd.MarkFlagRequired("token-id")
	return cmd
}
