// Copyright (C) 2018. See AUTHORS.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spacemonkeygo/lfsr"
)

func newNextCmd(g *globals) *cobra.Command {
	var (
		seed    uint16
		count   int
		name    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the next values of a generator",
		Long: `Advances a generator and prints each value on its own line.

With --name the generator is loaded from the store and its new state is
saved back. Otherwise a fresh generator is seeded from --seed, or from
the configured seed source when --seed is absent.`,
		Example: `  lfsr next --seed 1            # 32768
  lfsr next --seed 1 --count 4
  lfsr next --name counter --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive: %d", count)
			}
			if name != "" && cmd.Flags().Changed("seed") {
				return errors.New("--seed and --name are mutually exclusive")
			}

			var vals []uint16
			if name != "" {
				st, err := g.openStore()
				if err != nil {
					return err
				}
				defer st.Close()

				vals, err = st.Advance(cmd.Context(), name, count)
				if err != nil {
					return err
				}
				g.logger.Debug("advanced stored generator",
					slog.String("name", name), slog.Int("count", count))
			} else {
				vals = make([]uint16, count)
				g.generator(cmd, seed).Fill(vals)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(struct {
					Values []uint16 `json:"values"`
					State  uint16   `json:"state"`
				}{vals, vals[len(vals)-1]})
			}
			return writeValues(cmd.OutOrStdout(), slices.Values(vals))
		},
	}

	cmd.Flags().Uint16Var(&seed, "seed", 0, "register seed")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of values")
	cmd.Flags().StringVar(&name, "name", "", "stored generator to advance")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print a JSON object")
	return cmd
}

func newEnumerateCmd(g *globals) *cobra.Command {
	var seed uint16

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Print one full period of the sequence",
		Long: `Prints the 65535 values of one full period, one per line. Every
non-zero 16 bit value appears exactly once for a non-zero seed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeValues(cmd.OutOrStdout(), g.generator(cmd, seed).All())
		},
	}

	cmd.Flags().Uint16Var(&seed, "seed", 0, "register seed")
	return cmd
}

func newCheckCmd(g *globals) *cobra.Command {
	var seed uint16

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the generator has a period of exactly 65535",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cmd.Flags().Changed("seed") {
				err = lfsr.CheckSeed(seed)
			} else {
				err = lfsr.CheckSource(g.cfg.SeedSource())
			}
			if err != nil {
				g.logger.Error("period check failed", slog.String("error", err.Error()))
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: period %d\n", lfsr.Period)
			return err
		},
	}

	cmd.Flags().Uint16Var(&seed, "seed", 0, "register seed")
	return cmd
}

// writeValues prints each value of seq on its own line.
func writeValues(w io.Writer, seq iter.Seq[uint16]) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for v := range seq {
		buf = strconv.AppendUint(buf[:0], uint64(v), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
