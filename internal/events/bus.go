// Package events provides an in-process publish/subscribe bus for engine
// lifecycle and trading events.
package events

import (
	"sync"
	"time"
)

// EventType represents different types of events in the system.
type EventType string

const (
	EventSignalGenerated EventType = "SIGNAL_GENERATED"
	EventPositionOpened  EventType = "POSITION_OPENED"
	EventPositionClosed  EventType = "POSITION_CLOSED"
	EventPositionUpdate  EventType = "POSITION_UPDATE"
	EventCapitalUpdate   EventType = "CAPITAL_UPDATE"
	EventPriceUpdate     EventType = "PRICE_UPDATE"
	EventEngineStarted   EventType = "ENGINE_STARTED"
	EventEngineStopped   EventType = "ENGINE_STOPPED"
	EventError           EventType = "ERROR"
)

// Event represents a system event.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events.
type Subscriber func(Event)

// Bus manages event publishing and subscriptions.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific event type.
func (b *Bus) Subscribe(eventType EventType, subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for all events.
func (b *Bus) SubscribeAll(subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, subscriber)
}

// Publish sends an event to all subscribers. Subscribers run in their own
// goroutines so a slow consumer cannot block the publisher.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, sub := range b.subscribers[event.Type] {
		go sub(event)
	}
	for _, sub := range b.allSubs {
		go sub(event)
	}
}

// PublishSignal publishes a signal generated event.
func (b *Bus) PublishSignal(instrument, side, strategy, reason string, price, confidence float64) {
	b.Publish(Event{
		Type: EventSignalGenerated,
		Data: map[string]interface{}{
			"instrument": instrument,
			"side":       side,
			"strategy":   strategy,
			"reason":     reason,
			"price":      price,
			"confidence": confidence,
		},
	})
}

// PublishPositionOpened publishes a position opened event.
func (b *Bus) PublishPositionOpened(instrument, side string, entryPrice, quantity float64, leverage int) {
	b.Publish(Event{
		Type: EventPositionOpened,
		Data: map[string]interface{}{
			"instrument":  instrument,
			"side":        side,
			"entry_price": entryPrice,
			"quantity":    quantity,
			"leverage":    leverage,
		},
	})
}

// PublishPositionClosed publishes a position closed event.
func (b *Bus) PublishPositionClosed(instrument, reason string, entryPrice, exitPrice, quantity, netPnl float64) {
	b.Publish(Event{
		Type: EventPositionClosed,
		Data: map[string]interface{}{
			"instrument":  instrument,
			"reason":      reason,
			"entry_price": entryPrice,
			"exit_price":  exitPrice,
			"quantity":    quantity,
			"net_pnl":     netPnl,
		},
	})
}

// PublishCapitalUpdate publishes a capital update event.
func (b *Bus) PublishCapitalUpdate(currentCapital, totalReturn float64) {
	b.Publish(Event{
		Type: EventCapitalUpdate,
		Data: map[string]interface{}{
			"current_capital": currentCapital,
			"total_return":    totalReturn,
		},
	})
}

// PublishPriceUpdate publishes a price update event.
func (b *Bus) PublishPriceUpdate(instrument string, price float64) {
	b.Publish(Event{
		Type: EventPriceUpdate,
		Data: map[string]interface{}{
			"instrument": instrument,
			"price":      price,
		},
	})
}

// PublishError publishes an error event.
func (b *Bus) PublishError(source, message string, err error) {
	data := map[string]interface{}{
		"source":  source,
		"message": message,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	b.Publish(Event{
		Type: EventError,
		Data: data,
	})
}
