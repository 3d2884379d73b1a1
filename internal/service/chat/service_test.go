package chat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	chatmodel "github.com/zhouzirui/violet/backend/internal/model/chat"
	chat "github.com/zhouzirui/violet/backend/internal/service/chat"
)

func texts(turns []chatmodel.Turn) []string {
	out := make([]string, 0, len(turns))
	for _, t := range turns {
		out = append(out, t.Text)
	}
	return out
}

func TestServiceHistoryEvictsOldest(t *testing.T) {
	svc := chat.NewService(10)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		if _, err := svc.AppendTurn(ctx, chatmodel.User, fmt.Sprintf("turn-%d", i)); err != nil {
			t.Fatalf("AppendTurn err: %v", err)
		}
	}

	history := svc.History(ctx)
	if len(history) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(history))
	}

	want := make([]string, 0, 10)
	for i := 1; i < 11; i++ {
		want = append(want, fmt.Sprintf("turn-%d", i))
	}
	if diff := cmp.Diff(want, texts(history)); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceHistoryBeforeWrap(t *testing.T) {
	svc := chat.NewService(4)
	ctx := context.Background()

	svc.AppendExchange(ctx, "hi", "Hello boss!")

	got := svc.History(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].Speaker != chatmodel.User || got[1].Speaker != chatmodel.Assistant {
		t.Fatalf("unexpected speakers: %s, %s", got[0].Speaker, got[1].Speaker)
	}
}

func TestServiceHistoryIsCopy(t *testing.T) {
	svc := chat.NewService(4)
	ctx := context.Background()
	svc.AppendExchange(ctx, "a", "b")

	got := svc.History(ctx)
	got[0].Text = "mutated"

	if svc.History(ctx)[0].Text != "a" {
		t.Fatal("History must return a copy")
	}
}

func TestServiceAppendTurnValidation(t *testing.T) {
	svc := chat.NewService(4)
	ctx := context.Background()

	if _, err := svc.AppendTurn(ctx, chatmodel.User, "  "); err != chat.ErrEmptyText {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := svc.AppendTurn(ctx, "robot", "hello"); err != chat.ErrUnknownRole {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestServiceDefaultLimit(t *testing.T) {
	svc := chat.NewService(0)
	if svc.HistoryLimit() != chat.DefaultHistoryLimit {
		t.Fatalf("expected default limit %d, got %d", chat.DefaultHistoryLimit, svc.HistoryLimit())
	}
}

func TestServiceReminders(t *testing.T) {
	svc := chat.NewService(10)
	ctx := context.Background()

	if _, err := svc.AddReminder(ctx, "", "5:00 PM"); err != chat.ErrEmptyTask {
		t.Fatalf("expected ErrEmptyTask, got %v", err)
	}

	if _, err := svc.AddReminder(ctx, "gym", "5:00 PM"); err != nil {
		t.Fatalf("AddReminder err: %v", err)
	}
	if _, err := svc.AddReminder(ctx, "call mom", ""); err != nil {
		t.Fatalf("AddReminder err: %v", err)
	}

	reminders := svc.Reminders(ctx)
	if len(reminders) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(reminders))
	}
	if reminders[0].Task != "gym" || reminders[0].DisplayTime() != "5:00 PM" {
		t.Fatalf("unexpected first reminder: %+v", reminders[0])
	}
	if reminders[1].DisplayTime() != "No specific time" {
		t.Fatalf("unexpected display time: %q", reminders[1].DisplayTime())
	}

	if n := svc.ClearReminders(ctx); n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	if len(svc.Reminders(ctx)) != 0 {
		t.Fatal("expected no reminders after clear")
	}
}

func TestServiceConcurrentAppends(t *testing.T) {
	svc := chat.NewService(10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.AppendExchange(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	history := svc.History(ctx)
	if len(history) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(history))
	}
	for i := 0; i < len(history); i += 2 {
		if history[i].Speaker != chatmodel.User || history[i+1].Speaker != chatmodel.Assistant {
			t.Fatalf("exchange split at %d: %s/%s", i, history[i].Speaker, history[i+1].Speaker)
		}
		if "a"+history[i].Text[1:] != history[i+1].Text {
			t.Fatalf("exchange mismatch: %q/%q", history[i].Text, history[i+1].Text)
		}
	}
}
