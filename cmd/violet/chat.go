package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/violet/backend/internal/mcpserver"
	"github.com/zhouzirui/violet/backend/internal/service/speech"
	"github.com/zhouzirui/violet/backend/internal/tui"
)

const (
	greeting = "Voice assistant activated. I'm listening. Say something!"
	commands = "📋 Commands: time, date, weather, news, open [app], search [query], exit"
	farewell = "Goodbye!"
)

type assistant interface {
	Route(ctx context.Context, text string) string
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.StartDetector(cmd.Context())

	out := cmd.OutOrStdout()
	speaker := speech.NewSpeaker(a.Config.Speech, out)
	listener := speech.NewLineListener(cmd.InOrStdin(), func() { fmt.Fprint(out, "\nYou: ") })

	fmt.Fprintln(out, commands)
	return chatLoop(cmd.Context(), a.Router, listener, speaker)
}

// chatLoop reads utterances until an exit word, end of input or cancellation.
func chatLoop(ctx context.Context, a assistant, l speech.Listener, s speech.Speaker) error {
	if err := s.Speak(ctx, greeting); err != nil {
		return err
	}

	for {
		text, ok := l.Listen(ctx)
		if !ok {
			return nil
		}
		if speech.ExitRequested(text) {
			return s.Speak(ctx, farewell)
		}

		rctx, cancel := context.WithTimeout(ctx, timeout)
		reply := a.Route(rctx, text)
		cancel()

		if err := s.Speak(ctx, reply); err != nil {
			return err
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	return ask(cmd.Context(), a.Router, strings.Join(args, " "), cmd.OutOrStdout())
}

func ask(ctx context.Context, a assistant, message string, out io.Writer) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message cannot be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := fmt.Fprintln(out, a.Route(ctx, message))
	return err
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.StartDetector(cmd.Context())

	evs, cancel := a.Events.Subscribe(4)
	defer cancel()

	return tui.Run(a.Router, evs, timeout)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(os.Stderr, "VIOLET MCP server ready on stdio")
	return mcpserver.ServeStdio(mcpserver.New(version, a.Router, a.Session))
}
