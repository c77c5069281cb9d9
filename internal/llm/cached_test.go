package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/cache"
)

type countingProvider struct {
	calls int
	resp  *GenerateResponse
	err   error
}

func (p *countingProvider) Name() string                         { return "counting" }
func (p *countingProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *countingProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	p.calls++
	return p.resp, p.err
}

func TestCachedProvider_ServesRepeatFromCache(t *testing.T) {
	inner := &countingProvider{resp: &GenerateResponse{Text: "generated", Model: "m", TokensUsed: 42}}
	p := NewCachedProvider(inner, cache.NewMemoryCache(time.Minute), time.Minute)

	req := GenerateRequest{System: "sys", Prompt: "prompt", Model: "m"}

	first, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if first.Cached {
		t.Error("first response should not be marked cached")
	}

	second, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !second.Cached {
		t.Error("second response should be served from cache")
	}
	if second.Text != "generated" || second.TokensUsed != 42 {
		t.Errorf("cached response = %+v", second)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestCachedProvider_DistinctPromptsMiss(t *testing.T) {
	inner := &countingProvider{resp: &GenerateResponse{Text: "x"}}
	p := NewCachedProvider(inner, cache.NewMemoryCache(time.Minute), time.Minute)

	_, _ = p.Generate(context.Background(), GenerateRequest{Prompt: "a"})
	_, _ = p.Generate(context.Background(), GenerateRequest{Prompt: "b"})

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("boom")}
	p := NewCachedProvider(inner, cache.NewMemoryCache(time.Minute), time.Minute)

	req := GenerateRequest{Prompt: "p"}
	if _, err := p.Generate(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}

	inner.err = nil
	inner.resp = &GenerateResponse{Text: "recovered"}
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Cached {
		t.Error("error must not have been cached")
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}
