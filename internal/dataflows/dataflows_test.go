package dataflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/equilens/equilens/config"
)

func TestCacheManagerRoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)

	in := map[string]string{"hello": "world"}
	if err := cm.Set("test", "roundtrip", "key", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out map[string]string
	if !cm.Get("test", "roundtrip", "key", &out) {
		t.Fatal("expected cache hit")
	}
	if out["hello"] != "world" {
		t.Fatalf("unexpected cached value: %v", out)
	}
}

func TestCacheManagerExpiry(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), -time.Second, true)

	if err := cm.Set("test", "expiry", "key", "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out string
	if cm.Get("test", "expiry", "key", &out) {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCacheManagerDisabled(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, false)

	if err := cm.Set("test", "disabled", "key", "value"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out string
	if cm.Get("test", "disabled", "key", &out) {
		t.Fatal("disabled cache must always miss")
	}
}

func TestWithRetryStopsOnNotFound(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), DefaultRetryConfig(), func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("NotFound must not be retried, got %d calls", calls)
	}
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	calls := 0
	err := WithRetry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return ErrUnavailable
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestValidateSymbol(t *testing.T) {
	if err := ValidateSymbol("aapl"); err != nil {
		t.Fatalf("lowercase symbol should normalize: %v", err)
	}
	if err := ValidateSymbol(""); err == nil {
		t.Fatal("empty symbol must fail")
	}
	if err := ValidateSymbol("WAYTOOLONGSYM"); err == nil {
		t.Fatal("overlong symbol must fail")
	}
}

type fixedCompleter struct {
	reply string
	err   error
}

func (f fixedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return f.reply, f.err
}

func TestLLMPeersParsesReply(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	svc := NewService(cfg, fixedCompleter{reply: "MSFT, GOOGL, META"})

	peers, err := svc.llmPeers(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("llmPeers: %v", err)
	}
	want := []string{"MSFT", "GOOGL", "META"}
	if len(peers) != len(want) {
		t.Fatalf("expected %v, got %v", want, peers)
	}
	for i := range want {
		if peers[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, peers)
		}
	}
}

func TestLLMPeersExcludesSubject(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	svc := NewService(cfg, fixedCompleter{reply: "AAPL, MSFT, GOOGL, META"})

	peers, err := svc.llmPeers(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("llmPeers: %v", err)
	}
	for _, p := range peers {
		if p == "AAPL" {
			t.Fatal("subject ticker must not appear in its own peer group")
		}
	}
}

func TestLLMPeersRejectsShortReply(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	svc := NewService(cfg, fixedCompleter{reply: "MSFT"})

	if _, err := svc.llmPeers(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error when fewer peers than requested")
	}
}

func TestPeersForFallsBackToETFs(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	svc := NewService(cfg, nil) // no finnhub key, no completer

	peers := svc.peersFor(context.Background(), "AAPL")
	if len(peers) != len(fallbackPeers) {
		t.Fatalf("expected fallback peers %v, got %v", fallbackPeers, peers)
	}
}
