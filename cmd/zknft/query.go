package main

import (
	"github.com/kysee/zknft/types"
	"github.com/spf13/cobra"
)

func ownerOfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner-of <tokenId>",
		Short: "Print the owner and metadata URI of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := types.ParseWord(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			owner, err := l.OwnerOf(id)
			if err != nil {
				return err
			}
			uri, err := l.TokenURI(id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"tokenId": id, "owner": owner, "uri": uri})
		},
	}
}

func supplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supply",
		Short: "Print the collection metadata, total supply and solution count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer l.Close()
			total, err := l.TotalSupply()
			if err != nil {
				return err
			}
			solutions, err := l.SolutionCount()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"name":        l.Name(),
				"symbol":      l.Symbol(),
				"owner":       l.Owner(),
				"totalSupply": total,
				"solutions":   solutions,
			})
		},
	}
}
