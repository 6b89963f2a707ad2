package events

import (
	"context"
	"time"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/ledger"
)

// Dispatcher turns ledger changes into table events and publishes them on
// its own goroutine, in commit order.
type Dispatcher struct {
	pub     Publisher
	log     *logger.Logger
	timeout time.Duration
	queue   chan TableEvent
	done    chan struct{}
}

func NewDispatcher(pub Publisher, log *logger.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		pub:     pub,
		log:     log,
		timeout: 5 * time.Second,
		queue:   make(chan TableEvent, buffer),
		done:    make(chan struct{}),
	}
	go d.loop()
	return d
}

// Observe is a ledger.Observer.
func (d *Dispatcher) Observe(ch ledger.Change) {
	for _, ev := range FromChange(ch) {
		d.Emit(ev)
	}
}

// Emit queues ev without blocking; events are dropped when the queue is full.
func (d *Dispatcher) Emit(ev TableEvent) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("table_event_dropped", map[string]any{"event_id": ev.ID, "table_number": ev.TableNumber, "event_type": string(ev.Type)})
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.pub.Publish(ctx, ev)
		cancel()
		if err != nil {
			d.log.Error("table_event_publish_failed", err, map[string]any{"event_id": ev.ID, "table_number": ev.TableNumber})
			continue
		}
		d.log.Debug("table_event_published", map[string]any{"event_id": ev.ID, "routing_key": ev.RoutingKey()})
	}
}

// Close publishes what is queued and stops. No Emit may follow Close.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
