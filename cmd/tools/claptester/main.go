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
	cli "github.com/spf13/pflag"

	"github.com/zhouzirui/violet/backend/internal/ambient/chime"
	"github.com/zhouzirui/violet/backend/internal/ambient/clap"
	"github.com/zhouzirui/violet/backend/internal/ambient/mic"
	"github.com/zhouzirui/violet/backend/internal/config"
	"github.com/zhouzirui/violet/backend/internal/service/events"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	file := cli.StringP("file", "f", "", "Replay a wav/mp3/ogg recording instead of the microphone")
	duration := cli.DurationP("duration", "d", 30*time.Second, "How long to listen in live mode")
	threshold := cli.IntP("threshold", "t", 0, "Peak threshold override (1..32767)")
	verbose := cli.BoolP("verbose", "v", false, "Log every loud frame")
	playChime := cli.Bool("chime", false, "Play the confirmation chime on each trigger")
	cli.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.StampMilli,
	})))

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("no env file loaded", "path", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if *threshold > 0 {
		cfg.Clap.Threshold = *threshold
	}
	dcfg := clap.ConfigFrom(cfg.Clap)

	if *file != "" {
		if err := replay(*file, dcfg); err != nil {
			slog.Error("replay failed", "file", *file, "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	if err := live(ctx, cfg.Clap, dcfg, *playChime); err != nil {
		slog.Error("live detection failed", "err", err)
		os.Exit(1)
	}
}

func replay(path string, cfg clap.Config) error {
	src, err := clap.OpenFile(path, false)
	if err != nil {
		return err
	}
	defer src.Close()

	hits, err := clap.Replay(cfg, src, src.SampleRate())
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d trigger(s) at threshold %d\n", path, len(hits), cfg.Threshold)
	for i, at := range hits {
		fmt.Printf("  %d. %s\n", i+1, at.Round(time.Millisecond))
	}
	return nil
}

func live(ctx context.Context, raw config.ClapConfig, cfg clap.Config, playChime bool) error {
	hub := events.NewHub()
	defer hub.Close()
	sub, unsubscribe := hub.Subscribe(4)
	defer unsubscribe()

	var opts []clap.Option
	if playChime {
		opts = append(opts, clap.WithChime(func() {
			if err := chime.Play(); err != nil {
				slog.Warn("chime failed", "err", err)
			}
		}))
	}

	// The action only logs; the tester never opens apps.
	d := clap.New(cfg, mic.Opener(raw.SampleRate, raw.FrameSize), hub, func(context.Context) {
		slog.Info("action would run now", "query", raw.Query)
	}, opts...)

	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	slog.Info("listening for three claps", "threshold", cfg.Threshold, "window", cfg.Window, "rate", raw.SampleRate)

	count := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("%d trigger(s) detected\n", count)
			return nil
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			count++
			fmt.Printf("[%s] %s\n", ev.Timestamp.Local().Format(time.TimeOnly), ev.Message)
		}
	}
}
