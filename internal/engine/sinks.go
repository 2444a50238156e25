package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/citystates/internal/civ"
)

// Popup is a blocking alert for a human player, queued until the UI (or a
// headless consumer) drains it.
type Popup struct {
	ID      string        `json:"id"`
	Target  civ.ID        `json:"target"`
	Alert   civ.AlertType `json:"alert"`
	Payload string        `json:"payload"`
}

// PopupQueue collects popups raised during a turn. Implements civ.PopupSink.
type PopupQueue struct {
	pending []Popup
}

func NewPopupQueue() *PopupQueue {
	return &PopupQueue{}
}

// RaisePopup queues an alert for the target player.
func (p *PopupQueue) RaisePopup(target civ.ID, alert civ.AlertType, payload string) {
	popup := Popup{
		ID:      uuid.NewString(),
		Target:  target,
		Alert:   alert,
		Payload: payload,
	}
	p.pending = append(p.pending, popup)
	slog.Debug("popup raised", "id", popup.ID, "target", target, "alert", string(alert))
}

// Drain returns and clears all pending popups.
func (p *PopupQueue) Drain() []Popup {
	out := p.pending
	p.pending = nil
	return out
}

// Pending returns the queued popups without clearing them.
func (p *PopupQueue) Pending() []Popup {
	return p.pending
}
