package speech

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zhouzirui/violet/backend/internal/config"
)

func TestConsoleSpeaker(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSpeaker(&buf)

	if err := s.Speak(context.Background(), "Hello boss!"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}
	if buf.String() != "VIOLET: Hello boss!\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestEspeakSpeakerArgs(t *testing.T) {
	var buf bytes.Buffer
	var gotName string
	var gotArgs []string

	s := NewEspeakSpeaker("en+f3", 165, NewConsoleSpeaker(&buf))
	s.run = func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	if err := s.Speak(context.Background(), "🎵 Playing 'x'\non YouTube"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}
	if gotName != "espeak-ng" {
		t.Fatalf("expected espeak-ng, got %s", gotName)
	}
	want := []string{"-v", "en+f3", "-s", "165", "Playing 'x' on YouTube"}
	if strings.Join(gotArgs, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected args %q", gotArgs)
	}
	if !strings.Contains(buf.String(), "🎵") {
		t.Fatalf("console echo should keep the original text, got %q", buf.String())
	}
}

func TestEspeakSpeakerError(t *testing.T) {
	s := NewEspeakSpeaker("en", 150, nil)
	s.run = func(context.Context, string, ...string) error { return errors.New("not installed") }

	if err := s.Speak(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
	if err := s.Speak(context.Background(), "🌡️"); err != nil {
		t.Fatalf("emoji-only text should be skipped, got %v", err)
	}
}

func TestNewSpeaker(t *testing.T) {
	if _, ok := NewSpeaker(config.SpeechConfig{Engine: "console"}, &bytes.Buffer{}).(*ConsoleSpeaker); !ok {
		t.Fatal("expected console speaker")
	}
	if _, ok := NewSpeaker(config.SpeechConfig{Engine: "espeak"}, &bytes.Buffer{}).(*EspeakSpeaker); !ok {
		t.Fatal("expected espeak speaker")
	}
}

func TestLineListener(t *testing.T) {
	prompts := 0
	l := NewLineListener(strings.NewReader("hello\n\n  time  \n"), func() { prompts++ })
	ctx := context.Background()

	for _, want := range []string{"hello", "time"} {
		got, ok := l.Listen(ctx)
		if !ok || got != want {
			t.Fatalf("expected %q, got %q (ok=%v)", want, got, ok)
		}
	}
	if _, ok := l.Listen(ctx); ok {
		t.Fatal("expected end of input")
	}
	if prompts != 4 {
		t.Fatalf("expected 4 prompts, got %d", prompts)
	}
}

func TestExitRequested(t *testing.T) {
	cases := map[string]bool{
		"exit":               true,
		"Okay, bye!":         true,
		"please STOP":        true,
		"quit.":              true,
		"open the stopwatch": false,
		"what time is it":    false,
		"goodbye":            false,
		"":                   false,
	}
	for in, want := range cases {
		if got := ExitRequested(in); got != want {
			t.Errorf("ExitRequested(%q) = %v, want %v", in, got, want)
		}
	}
}
