package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	singleinstance "github.com/allan-simon/go-singleinstance"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chess10kp/webdesk/internal/config"
	"github.com/chess10kp/webdesk/internal/core"
	"github.com/chess10kp/webdesk/internal/logging"
)

const replaceTimeout = 5 * time.Second

func lockPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("webdesk-%s.lock", os.Getenv("USER")))
}

// acquireInstance takes the instance lock. When another shell holds it, that
// shell is asked to quit through stop and the lock is retried until timeout.
// The pid comes from the lock file, so it always names the current holder.
func acquireInstance(path string, stop func(pid int) error, timeout time.Duration) (*os.File, error) {
	lockFile, err := singleinstance.CreateLockFile(path)
	if err == nil {
		return lockFile, nil
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("instance lock held but unreadable: %w", readErr)
	}
	pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if convErr != nil {
		return nil, fmt.Errorf("instance lock held by unknown process: %w", err)
	}
	if err := stop(pid); err != nil {
		return nil, fmt.Errorf("failed to stop running instance %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		lockFile, err = singleinstance.CreateLockFile(path)
		if err == nil {
			return lockFile, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("instance %d did not exit: %w", pid, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

type options struct {
	configPath string
	debug      bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "webdesk",
		Short:         "Web-rendered desktop shell",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to config file")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging and web inspector")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of stderr")
	return cmd
}

func run(opts *options) error {
	cfg, cfgErr := config.LoadAndValidateConfig(opts.configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	if opts.debug {
		cfg.Log.Level = "debug"
		cfg.Web.Debug = true
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closer.Close()

	if cfgErr != nil {
		logger.Warn("failed to load config, using defaults", "path", opts.configPath, "err", cfgErr)
	}

	// Must be set before the web engine starts.
	if cfg.Web.DisableCompositing {
		if _, ok := os.LookupEnv("WEBKIT_DISABLE_COMPOSITING_MODE"); !ok {
			os.Setenv("WEBKIT_DISABLE_COMPOSITING_MODE", "1")
		}
	}

	lockFile, err := acquireInstance(lockPath(), terminate, replaceTimeout)
	if err != nil {
		return fmt.Errorf("failed to ensure single instance: %w", err)
	}
	defer lockFile.Close()

	app, err := core.NewApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return app.Run()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("webdesk exited", "err", err)
		os.Exit(1)
	}
}
