package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/ledger"
	"restaurant-pos/internal/storage"
)

// Key is the single slot the ledger is stored under.
const Key = "ledger_state"

var ErrPersist = errors.New("persist ledger")

// Adapter serializes the whole ledger into one KV slot.
type Adapter struct {
	kv  storage.KV
	log *logger.Logger
}

func New(kv storage.KV, log *logger.Logger) *Adapter {
	return &Adapter{kv: kv, log: log}
}

func (a *Adapter) Save(ctx context.Context, l ledger.Ledger) error {
	body, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := a.kv.Put(ctx, Key, body); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Load returns the stored ledger. A missing or unreadable slot is logged and
// reported as false; it is never fatal.
func (a *Adapter) Load(ctx context.Context) (ledger.Ledger, bool) {
	body, err := a.kv.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		a.log.Info("snapshot_absent", map[string]any{"key": Key})
		return ledger.Ledger{}, false
	}
	if err != nil {
		a.log.Error("snapshot_load_failed", err, map[string]any{"key": Key})
		return ledger.Ledger{}, false
	}
	var l ledger.Ledger
	if err := json.Unmarshal(body, &l); err != nil {
		a.log.Error("snapshot_corrupt", err, map[string]any{"key": Key, "bytes": len(body)})
		return ledger.Ledger{}, false
	}
	seen := make(map[int]struct{}, len(l.Tables))
	for _, t := range l.Tables {
		if t.TableNumber <= 0 || !t.Status.Valid() {
			a.log.Error("snapshot_corrupt", fmt.Errorf("invalid table record %d/%q", t.TableNumber, t.Status), map[string]any{"key": Key})
			return ledger.Ledger{}, false
		}
		if _, dup := seen[t.TableNumber]; dup {
			a.log.Error("snapshot_corrupt", fmt.Errorf("table %d stored twice", t.TableNumber), map[string]any{"key": Key})
			return ledger.Ledger{}, false
		}
		seen[t.TableNumber] = struct{}{}
	}
	if l.Tables == nil {
		l.Tables = []ledger.TableOrder{}
	}
	return l, true
}

// Writer saves ledger changes on its own goroutine. Only the newest pending
// ledger is kept; older ones are superseded before they are written.
type Writer struct {
	adapter *Adapter
	log     *logger.Logger
	timeout time.Duration
	pending chan ledger.Ledger
	quit    chan struct{}
	done    chan struct{}
}

func NewWriter(a *Adapter, log *logger.Logger) *Writer {
	w := &Writer{
		adapter: a,
		log:     log,
		timeout: 5 * time.Second,
		pending: make(chan ledger.Ledger, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w
}

// Observe is a ledger.Observer. It never blocks: the store calls observers
// one at a time under its lock, so this is the only sender.
func (w *Writer) Observe(ch ledger.Change) {
	select {
	case w.pending <- ch.Ledger:
	default:
		select {
		case <-w.pending:
		default:
		}
		w.pending <- ch.Ledger
	}
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case l := <-w.pending:
			w.save(l)
		case <-w.quit:
			select {
			case l := <-w.pending:
				w.save(l)
			default:
			}
			return
		}
	}
}

func (w *Writer) save(l ledger.Ledger) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.adapter.Save(ctx, l); err != nil {
		w.log.Error("snapshot_save_failed", err, map[string]any{"key": Key, "tables": len(l.Tables)})
		return
	}
	w.log.Debug("snapshot_saved", map[string]any{"key": Key, "tables": len(l.Tables), "grand_total": l.GrandTotal.String()})
}

// Close writes the last pending ledger and stops the goroutine.
func (w *Writer) Close() {
	close(w.quit)
	<-w.done
}
