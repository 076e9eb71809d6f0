package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/xackery/launchdemo/client"
	"github.com/xackery/launchdemo/config"
	"github.com/xackery/launchdemo/gui"
)

var (
	version string
	cfg     *config.Config
	log     *slog.Logger
	view    *gui.Console
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "launchdemo",
	Short: "Keep the game installation in sync with the patch server and start it",
	Long: `launchdemo checks whether the patch server is reachable, compares the local
installation with the server file list, deletes files the server does not know,
downloads missing or resized files and starts the game.

Configuration is loaded from <name>.yml next to the launcher, a .env file
or LAUNCHDEMO_* environment variables.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runPatch,
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context, ver string) error {
	version = ver
	defer func() {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config base name, defaults to the executable name")
	rootCmd.PersistentFlags().String("base-url", "", "Override patch server url from config")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Override install directory from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	baseName, err := configBaseName(cmd)
	if err != nil {
		return err
	}

	cfg, err = config.New(cmd.Context(), baseName)
	if err != nil {
		return fmt.Errorf("config.new: %w", err)
	}
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.InstallDir = dir
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = config.LogLevelDebug
	}
	err = cfg.Verify()
	if err != nil {
		return fmt.Errorf("verify config: %w", err)
	}

	if logFile != nil {
		logFile.Close()
	}
	f, err := os.Create(baseName + ".txt")
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	logFile = f

	log, err = newLogger(cfg.LogLevel, io.MultiWriter(os.Stderr, f))
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	view = gui.New(cmd.OutOrStdout())

	log.Info("Starting launcher", slog.String("version", version), slog.String("base_url", cfg.BaseURL), slog.String("dir", cfg.InstallDir))
	return nil
}

// configBaseName follows the executable name unless --config is given.
func configBaseName(cmd *cobra.Command) (string, error) {
	if name, _ := cmd.Flags().GetString("config"); name != "" {
		return strings.TrimSuffix(name, filepath.Ext(name)), nil
	}
	exeName, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("executable: %w", err)
	}
	baseName := filepath.Base(exeName)
	if strings.Contains(baseName, ".") {
		baseName = baseName[0:strings.Index(baseName, ".")]
	}
	return baseName, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, lo)).With(slog.String("run_id", makeRunID())), nil
}

func makeRunID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UTC().UnixNano())
	}
	return "run-" + id.String()
}

func newClient() (*client.Client, error) {
	c, err := client.New(cfg, client.WithLogger(log), client.WithProgress(view.SetProgress))
	if err != nil {
		return nil, fmt.Errorf("client.new: %w", err)
	}
	return c, nil
}

// runPatch probes the server, optionally updates the launcher itself, then patches
// and plays according to auto_patch and auto_play.
func runPatch(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	c, err := newClient()
	if err != nil {
		return err
	}

	view.SetConnected(c.IsConnected(ctx))

	if cfg.SelfUpdate {
		err = c.SelfUpdate(ctx)
		if err != nil {
			log.Warn("Failed self update, skipping", slog.Any("error", err))
		}
	}

	if !cfg.IsAutoPatch {
		view.SetPatchText("Auto patch is disabled, use the update or launch command")
		return nil
	}

	report, err := c.Launch(ctx, cfg.IsAutoPlay)
	if err != nil {
		return err
	}
	err = saveReport(report)
	if err != nil {
		return err
	}

	log.Info(fmt.Sprintf("Finished in %0.2f seconds", time.Since(start).Seconds()))
	return nil
}

// saveReport writes <baseName>-report.yml and remembers the applied manifest size
// when every file was fetched.
func saveReport(report *client.Report) error {
	if report == nil {
		return nil
	}
	view.SetPatchText(report.Summary())

	path := cfg.BaseName() + "-report.yml"
	err := report.Save(afero.NewOsFs(), path)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	log.Info("Patch report written", slog.String("path", path))

	if len(report.Failed) > 0 {
		return nil
	}
	err = cfg.SaveVersion(fmt.Sprintf("%d", report.TotalSize))
	if err != nil {
		log.Warn("Failed to save version to config", slog.Any("error", err))
	}
	return nil
}
