// Package sla derives the delivery-promise display state of an order purely
// from timestamps. It keeps no state of its own: callers re-evaluate on
// whatever cadence their display needs.
package sla

import (
	"fmt"
	"time"

	"github.com/onedream/storefront/internal/models"
)

// Window is how long a Pending order is considered on time.
const Window = 30 * time.Minute

// Phase of the delivery countdown.
type Phase string

const (
	// PhaseInactive means the order is not Pending, so no countdown applies.
	PhaseInactive Phase = "inactive"
	// PhaseCountdown means the order is Pending and inside the window.
	PhaseCountdown Phase = "countdown"
	// PhaseOverdue means the order has been Pending longer than the window.
	// Needs operator attention; not an error.
	PhaseOverdue Phase = "overdue"
)

// State is the evaluated countdown for one order at one instant.
type State struct {
	Phase     Phase         `json:"phase"`
	Remaining time.Duration `json:"-"`
	// Display is Remaining rendered as M:SS, empty outside the countdown.
	Display string `json:"display,omitempty"`
}

// Evaluate maps (createdAt, status, now) to a display state. Deterministic
// for a fixed input triple.
func Evaluate(createdAt time.Time, status string, now time.Time) State {
	if status != models.OrderStatusPending {
		return State{Phase: PhaseInactive}
	}

	elapsed := now.Sub(createdAt)
	if elapsed >= Window {
		return State{Phase: PhaseOverdue}
	}

	remaining := Window - elapsed
	return State{
		Phase:     PhaseCountdown,
		Remaining: remaining,
		Display:   formatClock(remaining),
	}
}

// formatClock renders a duration as whole minutes:seconds, e.g. "29:59".
func formatClock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
