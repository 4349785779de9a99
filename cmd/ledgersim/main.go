package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/ledgersim/ledgersim/infrastructure/config"
	"github.com/ledgersim/ledgersim/infrastructure/logger"
	"github.com/ledgersim/ledgersim/util/panics"
	"github.com/ledgersim/ledgersim/util/profiling"
	"github.com/ledgersim/ledgersim/version"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

const (
	logFilename    = "ledgersim.log"
	errLogFilename = "ledgersim_err.log"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer panics.HandlePanic(log, "main", nil)

	cfg, _, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		return 1
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if cfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		return 0
	}
	if cfg.DebugLevel == "show" {
		fmt.Printf("Supported subsystems %s\n", logger.SupportedSubsystems())
		return 0
	}

	err = initLog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing the logger: %s\n", err)
		return 1
	}
	defer logger.BackendLog.Close()

	if cfg.NoColor {
		pterm.DisableColor()
	}

	log.Infof("Version %s", version.Version())
	log.Infof("Running with %s params, difficulty %d", cfg.Params.Name, cfg.Params.Difficulty)

	if cfg.Profile != "" {
		err := profiling.Start(cfg.Profile, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting the profile server: %s\n", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = runScenario(ctx, cfg)
	if err != nil {
		log.Criticalf("Scenario failed: %+v", err)
		pterm.Error.Printfln("Scenario failed: %s", err)
		return 1
	}
	return 0
}

func initLog(cfg *config.Config) error {
	if cfg.LogDir != "" {
		logger.InitLog(filepath.Join(cfg.LogDir, logFilename), filepath.Join(cfg.LogDir, errLogFilename))
		return nil
	}

	err := logger.BackendLog.AddLogWriter(os.Stderr, logger.LevelTrace)
	if err != nil {
		return err
	}
	return logger.BackendLog.Run()
}
