package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"blockflow/config"
	"blockflow/misc"
	"blockflow/state"
)

// errorLogged is set when command error went to the log, so main does not
// print it again.
var errorLogged bool

// beforeCommand runs after command line is parsed. It loads configuration and
// sets up debug report and logging.
func beforeCommand(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help or version only
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	var err error
	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to load configuration: %w", err)
	}

	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to create debug report: %w", err)
		}
		if err := storeInputs(env.Rpt, env.Cfg, configFile); err != nil {
			return ctx, err
		}
	}

	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to set up logging: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Starting",
		zap.Strings("args", os.Args),
		zap.String("version", misc.GetVersion()),
		zap.String("go", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Debug report requested", zap.String("file", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("No configuration file, using defaults")
	}
	return ctx, nil
}

// storeInputs puts effective configuration and external stylesheet into
// debug report.
func storeInputs(rpt *config.Report, cfg *config.Config, configFile string) error {
	if len(configFile) > 0 {
		if data, err := config.Dump(cfg); err == nil {
			rpt.StoreData("config/"+filepath.Base(configFile), data)
		}
	}
	if path := cfg.Document.StylesheetPath; len(path) > 0 {
		if err := rpt.StoreCopy("config/"+filepath.Base(path), path); err != nil {
			return fmt.Errorf("unable to store stylesheet in debug report: %w", err)
		}
	}
	return nil
}

// afterCommand closes logging and debug report. Nothing could be logged
// after report is closed.
func afterCommand(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Finished", zap.Duration("elapsed", env.Uptime()), zap.Strings("args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to finalize debug report: %w", er))
		}
	}

	if env.Cfg == nil || len(env.Cfg.Logging.FileLogger.Destination) == 0 {
		return err
	}
	// crash output was redirected next to the log file, drop it when empty
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	crash := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
	if fi, er := os.Stat(crash); er == nil && fi.Size() == 0 {
		if er := os.Remove(crash); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove empty crash log '%s': %w", crash, er))
		}
	}
	return err
}

// logExitError is called before afterCommand, while logger is still open.
func logExitError(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Command failed", zap.Error(err))
		errorLogged = true
	}
}

func passUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func unknownCommand(ctx context.Context, _ *cli.Command, name string) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Warn("Unknown command ignored", zap.String("command", name))
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
}
