package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/simulate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	var (
		runs    int
		workers int
		mode    string
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play many draws offline and report how many come out valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			sum, err := simulate.Run(cmd.Context(), simulate.Options{
				Runs:      runs,
				Workers:   workers,
				Mode:      simulate.Mode(mode),
				Seed:      seed,
				Lookahead: cfg.Draw.Lookahead,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mode=%s lookahead=%v seed=%d\n%s\n", mode, cfg.Draw.Lookahead, seed, sum)
			return nil
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 1000, "number of draws to play")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent draws")
	cmd.Flags().StringVar(&mode, "mode", string(simulate.ModeStepwise), "stepwise or batch")
	cmd.Flags().Int64Var(&seed, "seed", 0, "base seed (default: time based)")
	cmd.Flags().Bool("lookahead", true, "keep every choice completable (overrides draw.lookahead)")
	_ = v.BindPFlag("draw.lookahead", cmd.Flags().Lookup("lookahead"))
	return cmd
}
