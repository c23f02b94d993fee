package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/terra-clan/backoffice/pkg/client"
)

var (
	// ErrEmptySelection is returned when a bulk action starts with no rows selected
	ErrEmptySelection = errors.New("no rows selected")
	// ErrInvalidState is returned when a step does not fit the current phase
	ErrInvalidState = errors.New("invalid bulk action state")
)

var outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "bulk",
	Name:      "items_total",
	Help:      "Bulk action items by action and outcome.",
}, []string{"action", "outcome"})

// Phase of a bulk action
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConfirming Phase = "confirming"
	PhaseExecuting  Phase = "executing"
)

// Action is a per-row mutation applied to a selection. Confirm and Success
// take the selection size through a single %d verb.
type Action struct {
	Name        string
	Confirm     string
	Success     string
	Failure     string
	Destructive bool
	// Permission is what an operator must hold on the resource to run it
	Permission string
	Run        func(ctx context.Context, id string) error
}

// ItemResult is the outcome for one row
type ItemResult struct {
	ID     string `json:"id"`
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Outcome summarizes an executed bulk action
type Outcome struct {
	Action    string       `json:"action"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Message   string       `json:"message"`
	Items     []ItemResult `json:"items"`
}

// OK reports whether every row succeeded
func (o Outcome) OK() bool {
	return o.Failed == 0
}

// Flow walks one bulk action through confirm and execute
type Flow struct {
	mu      sync.Mutex
	phase   Phase
	action  *Action
	ids     []string
	onClear func()
}

// NewFlow creates a flow. onClear runs after every execution, successful or
// not, so the caller can drop its row selection.
func NewFlow(onClear func()) *Flow {
	return &Flow{phase: PhaseIdle, onClear: onClear}
}

// Phase returns the current phase
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Begin captures the selection and asks for confirmation
func (f *Flow) Begin(action Action, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	if action.Run == nil {
		return fmt.Errorf("%s: %w", action.Name, ErrInvalidState)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase == PhaseExecuting {
		return fmt.Errorf("%s already executing: %w", f.action.Name, ErrInvalidState)
	}

	f.action = &action
	f.ids = ids
	f.phase = PhaseConfirming
	return nil
}

// Describe returns the confirmation prompt
func (f *Flow) Describe() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.action == nil {
		return ""
	}
	return format(f.action.Confirm, len(f.ids))
}

// Selection returns the captured ids
func (f *Flow) Selection() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

// Cancel drops the pending action without touching the selection
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != PhaseConfirming {
		return
	}
	f.reset()
}

// Execute runs the action for every captured id in parallel and waits for
// all of them. Success is reported only when every row succeeded.
func (f *Flow) Execute(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.phase != PhaseConfirming {
		f.mu.Unlock()
		return Outcome{}, fmt.Errorf("execute from %s: %w", f.phase, ErrInvalidState)
	}
	f.phase = PhaseExecuting
	action := *f.action
	ids := append([]string(nil), f.ids...)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.reset()
		f.mu.Unlock()
		if f.onClear != nil {
			f.onClear()
		}
	}()

	return Run(ctx, action, ids), nil
}

// Run applies action to ids in parallel without the confirmation step
func Run(ctx context.Context, action Action, ids []string) Outcome {
	items := make([]ItemResult, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			items[i] = ItemResult{ID: id}
			if err := action.Run(ctx, id); err != nil {
				items[i].Failed = true
				items[i].Error = client.Message(err)
				if items[i].Error == "" {
					items[i].Error = client.FallbackMessage
				}
				slog.Warn("bulk action item failed", "action", action.Name, "id", id, "error", err)
			}
		}(i, id)
	}
	wg.Wait()

	out := Outcome{Action: action.Name, Total: len(ids), Items: items}
	for _, it := range items {
		if it.Failed {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	outcomes.WithLabelValues(action.Name, "success").Add(float64(out.Succeeded))
	outcomes.WithLabelValues(action.Name, "error").Add(float64(out.Failed))

	if out.Failed == 0 {
		out.Message = format(action.Success, out.Total)
	} else {
		out.Message = action.Failure
	}

	slog.Info("bulk action finished",
		"action", action.Name,
		"total", out.Total,
		"succeeded", out.Succeeded,
		"failed", out.Failed,
	)
	return out
}

func (f *Flow) reset() {
	f.phase = PhaseIdle
	f.action = nil
	f.ids = nil
}

func format(tmpl string, n int) string {
	if strings.Contains(tmpl, "%d") {
		return fmt.Sprintf(tmpl, n)
	}
	return tmpl
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
