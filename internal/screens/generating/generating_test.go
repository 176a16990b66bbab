package generating

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intertest/internal/testgen"
)

func TestGenerate_DeliversResult(t *testing.T) {
	want := &testgen.Test{Text: "1. Explain ACID.", Provider: "gemini"}
	m := New(context.Background(), "Generating", func(ctx context.Context) (*testgen.Test, error) {
		return want, nil
	})

	msg := m.generate()()
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command after result")
	}

	got, err := m.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if got != want {
		t.Errorf("result = %+v, want %+v", got, want)
	}
	if line := m.line(); line != "" {
		t.Errorf("view should be empty once done, got %q", line)
	}
}

func TestGenerate_PropagatesError(t *testing.T) {
	boom := errors.New("all LLM providers failed")
	m := New(context.Background(), "Generating", func(ctx context.Context) (*testgen.Test, error) {
		return nil, boom
	})

	m.Update(m.generate()())

	if _, err := m.Result(); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestEscCancelsGeneration(t *testing.T) {
	var seen context.Context
	m := New(context.Background(), "Generating", func(ctx context.Context) (*testgen.Test, error) {
		seen = ctx
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected quit command on esc")
	}
	if _, err := m.Result(); !errors.Is(err, ErrCanceled) {
		t.Errorf("err = %v, want ErrCanceled", err)
	}

	// The generation goroutine observes the cancellation.
	m.generate()()
	if seen == nil || seen.Err() == nil {
		t.Error("generation context should be canceled")
	}
}

func TestResultBeforeDone(t *testing.T) {
	m := New(context.Background(), "Generating", nil)
	if _, err := m.Result(); err == nil {
		t.Error("expected error before generation completes")
	}
	if m.line() == "" {
		t.Error("expected spinner line while running")
	}
}
