package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/zhouzirui/violet/backend/internal/config"
)

// Speaker 将回复播报给用户。
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener 获取用户的下一句话；ok 为 false 表示输入已结束。
type Listener interface {
	Listen(ctx context.Context) (text string, ok bool)
}

// ConsoleSpeaker 把回复打印到终端。
type ConsoleSpeaker struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
}

// NewConsoleSpeaker 创建终端播报器。
func NewConsoleSpeaker(w io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{w: w, prefix: "VIOLET: "}
}

// Speak 实现 Speaker。
func (s *ConsoleSpeaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, s.prefix+text)
	return err
}

// CommandRunner 执行一个阻塞的外部命令。
type CommandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// EspeakSpeaker 通过 espeak-ng 朗读回复，同时回显到终端。
type EspeakSpeaker struct {
	echo  Speaker
	voice string
	rate  int
	run   CommandRunner
}

// NewEspeakSpeaker 创建 espeak-ng 播报器，echo 可为 nil。
func NewEspeakSpeaker(voice string, rate int, echo Speaker) *EspeakSpeaker {
	return &EspeakSpeaker{echo: echo, voice: voice, rate: rate, run: runCommand}
}

// Speak 实现 Speaker。
func (s *EspeakSpeaker) Speak(ctx context.Context, text string) error {
	if s.echo != nil {
		if err := s.echo.Speak(ctx, text); err != nil {
			return err
		}
	}

	spoken := Speakable(text)
	if spoken == "" {
		return nil
	}

	args := []string{"-v", s.voice, "-s", strconv.Itoa(s.rate), spoken}
	if err := s.run(ctx, "espeak-ng", args...); err != nil {
		return fmt.Errorf("espeak-ng: %w", err)
	}
	return nil
}

// Speakable 去掉不适合朗读的表情符号和多余空白。
func Speakable(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF, r >= 0x2300 && r <= 0x23FF, r >= 0x2600 && r <= 0x27BF, r == 0xFE0F:
			continue
		case r == '\n':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NewSpeaker 根据配置选择播报器。
func NewSpeaker(cfg config.SpeechConfig, out io.Writer) Speaker {
	console := NewConsoleSpeaker(out)
	if cfg.Engine == "espeak" {
		return NewEspeakSpeaker(cfg.Voice, cfg.Rate, console)
	}
	return console
}

// LineListener 从 io.Reader 中逐行读取输入，忽略空行。
type LineListener struct {
	scanner *bufio.Scanner
	prompt  func()
}

// NewLineListener 创建行读取器；prompt 在每次读取前调用，可为 nil。
func NewLineListener(r io.Reader, prompt func()) *LineListener {
	return &LineListener{scanner: bufio.NewScanner(r), prompt: prompt}
}

// Listen 实现 Listener。
func (l *LineListener) Listen(ctx context.Context) (string, bool) {
	for {
		if ctx.Err() != nil {
			return "", false
		}
		if l.prompt != nil {
			l.prompt()
		}
		if !l.scanner.Scan() {
			return "", false
		}
		if line := strings.TrimSpace(l.scanner.Text()); line != "" {
			return line, true
		}
	}
}

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true, "stop": true}

// ExitRequested 判断一句话中是否含有结束对话的词（exit、quit、bye、stop）。
func ExitRequested(text string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if exitWords[w] {
			return true
		}
	}
	return false
}
