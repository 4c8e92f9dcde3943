package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mnishina/avif-converter/config"
	"github.com/mnishina/avif-converter/ledger"
	"github.com/mnishina/avif-converter/logger"
	"github.com/mnishina/avif-converter/report"
)

func newHistoryCommand() *cobra.Command {
	var (
		dataDir string
		prune   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history [output-dir]",
		Short: "Show what previous runs did to each file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir
			if dir == "" {
				if len(args) == 0 {
					return fmt.Errorf("pass the output dir or --data-dir")
				}
				dir = filepath.Join(args[0], config.DataDirName)
			}

			store, err := ledger.Open(filepath.Join(dir, "ledger.db"))
			if err != nil {
				return err
			}
			defer store.Close()

			if prune > 0 {
				removed, err := store.Prune(prune)
				if err != nil {
					return err
				}
				logger.Infof("pruned %d records older than %s", removed, prune)
				return nil
			}

			entries, err := store.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				logger.Info("no records yet")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				avif, fallback := "", ""
				if e.Record.Status == ledger.StatusSuccess {
					avif = humanize.IBytes(uint64(e.Record.AvifSize))
					fallback = humanize.IBytes(uint64(e.Record.FallbackSize))
				}
				rows = append(rows, []string{
					e.Rel,
					e.Record.Status,
					avif,
					fallback,
					humanize.Time(e.Record.Timestamp),
				})
			}
			fmt.Println(report.Table([]string{"FILE", "STATUS", "AVIF", "FALLBACK", "WHEN"}, rows, 3, 4))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "ledger location (default <output-dir>/"+config.DataDirName+")")
	cmd.Flags().DurationVar(&prune, "prune", 0, "instead of listing, drop records older than this (e.g. 720h)")
	return cmd
}
