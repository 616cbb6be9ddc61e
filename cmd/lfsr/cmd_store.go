// Copyright (C) 2018. See AUTHORS.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacemonkeygo/lfsr"
)

func newCreateCmd(g *globals) *cobra.Command {
	var seed uint16

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Store a named generator",
		Long: `Stores a generator under NAME, replacing any existing one. Without
--seed a non-zero seed is drawn from the configured seed source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = lfsr.NonZeroSeed(g.cfg.SeedSource())
			}

			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Create(cmd.Context(), args[0], seed); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", args[0], seed)
			return err
		},
	}

	cmd.Flags().Uint16Var(&seed, "seed", 0, "register seed")
	return cmd
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a named generator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			return st.Delete(cmd.Context(), args[0])
		},
	}
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named generators and their states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				gen, err := st.Load(cmd.Context(), name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", name, gen.State()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
