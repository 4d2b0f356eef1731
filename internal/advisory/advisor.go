package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Simplici0/atelier/internal/pricing"
)

// Status is the lifecycle of one insight request.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Inputs are the only figures sent to the provider.
type Inputs struct {
	TotalCost    float64 `json:"totalCost"`
	ProfitAmount float64 `json:"profitAmount"`
	ProfitMargin float64 `json:"profitMargin"`
	TotalPrice   float64 `json:"totalPrice"`
}

// InputsFrom picks the advisory inputs out of a quote's figures.
func InputsFrom(fv pricing.FormValues, c pricing.Calculations) Inputs {
	return Inputs{
		TotalCost:    c.TotalCost,
		ProfitAmount: c.ProfitAmount,
		ProfitMargin: fv.ProfitMargin,
		TotalPrice:   c.TotalPrice,
	}
}

// Insight is the latest advisory result for a quote.
type Insight struct {
	QuoteID     string    `json:"quoteId"`
	Status      Status    `json:"status"`
	Text        string    `json:"text,omitempty"`
	Model       string    `json:"model,omitempty"`
	Error       string    `json:"error,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// Recorder observes finished requests.
type Recorder interface {
	AdvisoryFinished(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) AdvisoryFinished(string) {}

const systemPrompt = "You are a pricing advisor for an interior design studio in Kenya. " +
	"Comment briefly on whether the quote's margin is healthy and suggest one adjustment."

type entry struct {
	insight Insight
	gen     uint64
}

// Advisor runs insight requests in the background, one at a time per quote.
type Advisor struct {
	provider Provider
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	gen      uint64
	insights map[string]entry
}

func NewAdvisor(provider Provider, logger *slog.Logger, recorder Recorder) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Advisor{
		provider: provider,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		insights: make(map[string]entry),
	}
}

// Request starts generation for quoteID and returns at once. A request that
// is still pending for the same quote is returned instead of starting another.
func (a *Advisor) Request(quoteID string, in Inputs) Insight {
	a.mu.Lock()
	if cur, ok := a.insights[quoteID]; ok && cur.insight.Status == StatusPending {
		a.mu.Unlock()
		return cur.insight
	}
	a.gen++
	gen := a.gen
	ins := Insight{QuoteID: quoteID, Status: StatusPending, RequestedAt: a.now().UTC()}
	a.insights[quoteID] = entry{insight: ins, gen: gen}
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.generate(quoteID, gen, in)
	}()
	return ins
}

// Insight returns the latest state for quoteID.
func (a *Advisor) Insight(quoteID string) (Insight, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cur, ok := a.insights[quoteID]
	return cur.insight, ok
}

// Wait blocks until every in-flight request has finished.
func (a *Advisor) Wait() {
	a.wg.Wait()
}

// Close cancels in-flight requests and waits for them.
func (a *Advisor) Close() {
	a.cancel()
	a.wg.Wait()
}

func (a *Advisor) generate(quoteID string, gen uint64, in Inputs) {
	resp, err := a.provider.Complete(a.ctx, CompletionRequest{
		System:    systemPrompt,
		Prompt:    Prompt(in),
		MaxTokens: 300,
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	cur, ok := a.insights[quoteID]
	if !ok || cur.gen != gen {
		return
	}
	ins := cur.insight
	ins.CompletedAt = a.now().UTC()
	if err != nil {
		ins.Status = StatusFailed
		ins.Error = err.Error()
		a.recorder.AdvisoryFinished(string(StatusFailed))
		a.logger.Warn("advisory request failed", "quote", quoteID, "provider", a.provider.ID(), "err", err)
	} else {
		ins.Status = StatusReady
		ins.Text = resp.Text
		ins.Model = resp.Model
		a.recorder.AdvisoryFinished(string(StatusReady))
		a.logger.Info("advisory ready", "quote", quoteID, "provider", a.provider.ID())
	}
	a.insights[quoteID] = entry{insight: ins, gen: gen}
}

// Prompt renders the four inputs for the model.
func Prompt(in Inputs) string {
	return fmt.Sprintf(
		"Total cost: %s\nProfit amount: %s\nProfit margin: %.2f%%\nTotal price: %s\n",
		pricing.FormatKES(in.TotalCost),
		pricing.FormatKES(in.ProfitAmount),
		in.ProfitMargin,
		pricing.FormatKES(in.TotalPrice),
	)
}
