package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
	"github.com/carddemo/terminal/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	// drainTimeout bounds how long a stopping worker keeps persisting the
	// events still queued.
	drainTimeout = 5 * time.Second
)

// Dispatcher persists audit events off the request path. Events of one user
// always land on the same worker so their trail keeps its order.
type Dispatcher struct {
	workers      []chan domain.AuditEvent
	service      ports.AuditService
	log          zerolog.Logger
	drainTimeout time.Duration
	wg           sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:      make([]chan domain.AuditEvent, numWorkers),
		service:      service,
		log:          log,
		drainTimeout: drainTimeout,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// persists what is left in its queue, for at most drainTimeout, and stops.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record implements ports.AuditRecorder. It never blocks: when the worker's
// buffer is full the event is dropped and counted.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.UserID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("user_id", event.UserID).
			Str("action", string(event.Action)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, event)
		}
	}
}

// drain persists the events queued at shutdown. What is still queued when
// the deadline passes is counted as dropped.
func (d *Dispatcher) drain(id int, ch <-chan domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	drained := 0
	for ctx.Err() == nil {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, event)
			drained++
			continue
		default:
		}
		if drained > 0 {
			d.log.Info().Int("worker_id", id).Int("events", drained).Msg("audit queue drained")
		}
		return
	}

	if lost := len(ch); lost > 0 {
		metrics.AuditEventsTotal.WithLabelValues("dropped").Add(float64(lost))
		d.log.Warn().Int("worker_id", id).Int("events", lost).Msg("audit queue not drained before deadline")
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AuditEvent) {
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Dec()

	start := time.Now()
	err := d.service.Process(ctx, event)
	metrics.AuditProcessingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("action", string(event.Action)).
			Int("worker_id", id).
			Msg("audit event processing failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("stored").Inc()
}
