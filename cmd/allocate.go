package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberops/wildfire/app"
	"github.com/emberops/wildfire/config"
	"github.com/emberops/wildfire/infra/logger"
)

var (
	batchPath    string
	strategyName string
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run one allocation over a CSV batch and print the report",
	RunE:  allocate,
}

func init() {
	allocateCmd.Flags().StringVarP(&batchPath, "file", "f", "", "CSV batch file")
	allocateCmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "strategy override (greedy or optimal)")
	_ = allocateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(allocateCmd)
}

func allocate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("allocate-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	report, err := svc.Process(ctx, batchPath, strategyName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
