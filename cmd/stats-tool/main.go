// Command stats-tool is a plugin process exposing a single "stats" tool over
// line-delimited JSON on stdin and stdout. Logs go to stderr.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"stats-tool/internal/server"
	"stats-tool/internal/version"
	"stats-tool/pkg/config"
	"stats-tool/pkg/logging"
	"stats-tool/pkg/stats"
)

const serviceName = "stats-tool"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run wires configuration, logging and the plugin server, and returns the
// process exit code. End of input is a normal exit.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg, err := config.ParseConfig(fs, args, nil)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return 2
	}

	if cfg.ShowVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	logOutput, closeLogOutput, err := config.OpenLogOutput(cfg.LogOutput, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return 1
	}
	defer closeLogOutput()

	startTime := time.Now()

	// Initialize logging system
	loggingManager := logging.NewLoggingManager(logOutput)
	loggingManager.SetLogLevel(cfg.LogLevel)
	loggingManager.SetGlobalContext("service", serviceName)
	loggingManager.SetGlobalContext("version", version.Version)
	loggingManager.SetGlobalContext("session_id", uuid.NewString())
	logger := loggingManager.GetLogger("main")

	loggingManager.LogStartupSequence("config_loaded", map[string]interface{}{
		"log_level":   loggingManager.GetLogLevel().String(),
		"log_output":  cfg.LogOutput,
		"config_file": cfg.ConfigFile,
	}, time.Since(startTime), true)

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pluginServer, err := server.NewPluginServer(stats.NewStatsTool(), loggingManager)
	if err != nil {
		logger.WithError(err).Error("Failed to create plugin server")
		return 1
	}

	if cfg.ConfigFile != "" {
		stopWatching, err := watchConfigFile(cfg, loggingManager)
		if err != nil {
			// the process still serves with the settings it started with
			logger.WithError(err).Warn("Config file changes will not be applied")
		} else {
			defer stopWatching()
		}
	}

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- pluginServer.Start(ctx, stdin, stdout)
	}()

	exitCode := 0
	select {
	case err := <-errChan:
		if err != nil {
			loggingManager.LogError("main", err, "Plugin server stopped", map[string]interface{}{
				"tool_invocations": pluginServer.ToolStats().TotalInvocations,
			})
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal, gracefully shutting down...")
	}

	if err := pluginServer.Shutdown(context.Background()); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}

	return exitCode
}
