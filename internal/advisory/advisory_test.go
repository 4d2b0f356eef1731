package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Simplici0/atelier/internal/pricing"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	release chan struct{}
	fail    int
}

func (f *fakeProvider) ID() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.prompts = append(f.prompts, req.Prompt)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call <= f.fail {
		return nil, errors.New("upstream unavailable")
	}
	return &CompletionResponse{Text: "margin looks healthy", Model: "fake-1"}, nil
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *countingRecorder) AdvisoryFinished(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestAdvisorRequestReturnsPendingImmediately(t *testing.T) {
	provider := &fakeProvider{release: make(chan struct{})}
	rec := &countingRecorder{}
	a := NewAdvisor(provider, nil, rec)
	defer a.Close()

	ins := a.Request("q1", Inputs{TotalCost: 1000, ProfitAmount: 250, ProfitMargin: 25, TotalPrice: 1250})
	if ins.Status != StatusPending {
		t.Fatalf("status = %s, want pending", ins.Status)
	}
	got, ok := a.Insight("q1")
	if !ok || got.Status != StatusPending {
		t.Fatalf("insight = %+v, %v, want pending", got, ok)
	}

	// A second request while pending does not start another call.
	a.Request("q1", Inputs{})

	close(provider.release)
	a.Wait()

	got, _ = a.Insight("q1")
	if got.Status != StatusReady {
		t.Fatalf("status = %s, want ready", got.Status)
	}
	if got.Text != "margin looks healthy" || got.Model != "fake-1" {
		t.Fatalf("insight = %+v", got)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "ready" {
		t.Fatalf("outcomes = %v, want [ready]", rec.outcomes)
	}
}

func TestAdvisorRecordsFailure(t *testing.T) {
	provider := &fakeProvider{fail: 1}
	a := NewAdvisor(provider, nil, nil)
	defer a.Close()

	a.Request("q1", Inputs{TotalCost: 10})
	a.Wait()

	got, _ := a.Insight("q1")
	if got.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if !strings.Contains(got.Error, "upstream unavailable") {
		t.Fatalf("error = %q", got.Error)
	}

	// A finished request can be retried.
	a.Request("q1", Inputs{TotalCost: 10})
	a.Wait()
	got, _ = a.Insight("q1")
	if got.Status != StatusReady {
		t.Fatalf("status after retry = %s, want ready", got.Status)
	}
}

func TestInsightUnknownQuote(t *testing.T) {
	a := NewAdvisor(&fakeProvider{}, nil, nil)
	defer a.Close()
	if _, ok := a.Insight("missing"); ok {
		t.Fatalf("expected no insight for unknown quote")
	}
}

func TestPromptUsesOnlyFourScalars(t *testing.T) {
	fv := pricing.FormValues{ProfitMargin: 25, Materials: []pricing.Material{{Name: "Secret fabric", Quantity: 1, UnitCost: 1000}}}
	c := pricing.Calculations{TotalCost: 1000, ProfitAmount: 250, TotalPrice: 1250}
	p := Prompt(InputsFrom(fv, c))

	for _, want := range []string{"KES 1,000.00", "KES 250.00", "25.00%", "KES 1,250.00"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt %q missing %q", p, want)
		}
	}
	if strings.Contains(p, "Secret fabric") {
		t.Fatalf("prompt leaked line items: %q", p)
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"raise the margin"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithClient("gpt-test", "test-key", srv.URL, srv.Client())
	resp, err := p.Complete(context.Background(), CompletionRequest{System: "sys", Prompt: "hello"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "raise the margin" || resp.Model != "gpt-test" {
		t.Fatalf("resp = %+v", resp)
	}
	if got.Model != "gpt-test" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hello" {
		t.Fatalf("request = %+v", got)
	}
	if p.ID() != "openai:gpt-test" {
		t.Fatalf("id = %q", p.ID())
	}
}

func TestOpenAIProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithClient("", "k", srv.URL, srv.Client())
	if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error on non-200 status")
	}

	noKey := NewOpenAIProvider("", "")
	if _, err := noKey.Complete(context.Background(), CompletionRequest{Prompt: "x"}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestResilientProviderMissingKeyFailsFast(t *testing.T) {
	p := NewResilientProvider(NewOpenAIProvider("", ""), DefaultResilience())
	start := time.Now()
	if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("missing key should not be retried")
	}
}

func TestResilientProviderRetries(t *testing.T) {
	inner := &fakeProvider{fail: 1}
	p := NewResilientProvider(inner, ResilienceConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, Timeout: 5 * time.Second})
	resp, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text == "" || inner.calls != 2 {
		t.Fatalf("resp = %+v calls = %d", resp, inner.calls)
	}
}
