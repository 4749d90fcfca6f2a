package notifier

import (
	"context"
	"fmt"
	"strings"

	"PulseAtlas/internal/model"
)

// Notifier delivers pipeline alerts.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Noop is used when no alert channel is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Send(_ context.Context, _ string) error { return nil }

// FormatActions renders new high-priority actions as one alert message.
// Returns "" when there is nothing worth sending.
func FormatActions(actions []model.Action) string {
	var investigate []model.Action
	for _, a := range actions {
		if a.Type == model.ActionInvestigate {
			investigate = append(investigate, a)
		}
	}
	if len(investigate) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔴 %d new investigate action(s)\n", len(investigate))
	for _, a := range investigate {
		fmt.Fprintf(&b, "• [p%d] %s", a.Priority, a.Title)
		if a.URL != "" {
			fmt.Fprintf(&b, "\n  %s", a.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}
