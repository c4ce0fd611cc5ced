// Command importer registers assets from a spreadsheet (.xlsx) or seed
// file (.yaml) and prints a per-row report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/config"
	"github.com/KevinKickass/OpenAssetCore/internal/importer"
	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/KevinKickass/OpenAssetCore/internal/system"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	file := flag.String("file", "", "spreadsheet (.xlsx) or seed file (.yaml) to import")
	actor := flag.String("actor", "importador", "user recorded on the imported assets")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file assets.xlsx [-config configs/config.yaml]")
		return 2
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return 1
	}

	rows, err := importer.ReadFile(*file)
	if err != nil {
		logger.Error("Failed to read import file", zap.String("file", *file), zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lm, err := system.NewLifecycleManager(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize system", zap.Error(err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = lm.Shutdown(shutdownCtx)
	}()

	report, err := importer.New(lm.Engine(), logger).Import(lifecycle.WithActor(ctx, *actor), rows)
	if err != nil {
		logger.Error("Import interrupted", zap.Error(err))
	}

	for _, row := range report.Rows {
		if row.Status == importer.StatusCreated {
			continue
		}
		fmt.Printf("linha %d\t%s\t%s\t%s\n", row.Line, row.AssetCode, row.Status, row.Message)
	}
	fmt.Printf("criados: %d  ignorados: %d  falhas: %d\n", report.Created, report.Skipped, report.Failed)

	if report.Failed > 0 || err != nil {
		return 1
	}
	return 0
}
