package civ

import "github.com/talgya/citystates/internal/worldmap"

// Notification is a fire-and-forget message addressed to one civilization.
// Delivery is the sink's concern; the engine never reads them back.
type Notification struct {
	Target   ID
	Text     string
	Location *worldmap.HexCoord
	Icon     string
}

// Notifier delivers notifications. Implementations may silently drop
// messages (AI players, spectators).
type Notifier interface {
	Notify(n Notification)
}

// AlertType tags popups that need a human decision.
type AlertType string

const (
	AlertBulliedProtectedMinor  AlertType = "bullied-protected-minor"
	AlertAttackedProtectedMinor AlertType = "attacked-protected-minor"
)

// PopupSink raises blocking choices for human players. Fire-and-forget from
// the engine's side; the host resolves them between turns.
type PopupSink interface {
	RaisePopup(target ID, alert AlertType, payload string)
}

// NopNotifier drops everything. Useful default and test double.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

// NopPopupSink drops everything.
type NopPopupSink struct{}

func (NopPopupSink) RaisePopup(ID, AlertType, string) {}
