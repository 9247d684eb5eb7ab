// Package events describes what the order engine announces after a change
// has been committed, and fans it out to interested listeners (websocket
// displays, the message broker, caches).
package events

import (
	"context"
	"time"
)

type Type string

const (
	OrderCreated       Type = "order_created"
	OrderUpdated       Type = "order_updated"
	OrderPaid          Type = "order_paid"
	OrderDeleted       Type = "order_deleted"
	DetailAdded        Type = "order_detail_added"
	DetailRemoved      Type = "order_detail_removed"
	DetailStatusUpdate Type = "order_detail_status"
	TableUpdated       Type = "table_update"
	StockUpdated       Type = "stock_update"
)

type Event struct {
	Type    Type        `json:"event"`
	OrderID uint        `json:"order_id,omitempty"`
	TableID uint        `json:"table_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	At      time.Time   `json:"at"`
}

func New(t Type, orderID, tableID uint, data interface{}) Event {
	return Event{
		Type:    t,
		OrderID: orderID,
		TableID: tableID,
		Data:    data,
		At:      time.Now(),
	}
}

// Notifier receives events after commit. Implementations must not block the
// caller for long and report their own delivery failures.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

type NotifierFunc func(ctx context.Context, evt Event)

func (f NotifierFunc) Notify(ctx context.Context, evt Event) {
	f(ctx, evt)
}

// Discard drops every event.
var Discard Notifier = NotifierFunc(func(context.Context, Event) {})

// Multi delivers each event to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, evt Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, evt)
		}
	}
}
