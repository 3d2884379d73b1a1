package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/violet/backend/internal/app"
	"github.com/zhouzirui/violet/backend/internal/config"
)

var version = "dev"

var (
	// Global flags
	envFile  string
	logLevel string
	noClap   bool
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "violet",
	Short: "VIOLET - a voice and text personal assistant",
	Long: `VIOLET answers spoken or typed commands: time and date, weather, news,
opening apps, web and YouTube search, reminders, translation, arithmetic, and
open questions through a chain of language-model providers.

Three claps near the microphone trigger the configured action.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to VIOLET in the terminal; say exit, quit, bye or stop to leave",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve VIOLET as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", ".env", "Env file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log", "l", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noClap, "no-clap", false, "Disable clap detection")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Timeout for a single request")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(mcpCmd)
}

// setup loads configuration, installs the logger and wires the services.
// Logs go to stderr so stdout stays clean for replies and the MCP transport.
func setup(ctx context.Context, clap bool) (*app.App, error) {
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file loaded", "path", envFile, "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log value %q: %w", logLevel, err)
		}
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))

	if noClap || !clap {
		cfg.Clap.Enabled = false
	}
	return app.Build(ctx, cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
