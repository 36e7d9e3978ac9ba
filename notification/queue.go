package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/params"
)

// Lookup resolves a cached content unit by name.
type Lookup interface {
	Lookup(name string) (jsonvalue.Value, bool)
}

// Options configures a Queue.
type Options struct {
	Logger *logger.Logger
	Now    func() time.Time
	NewID  func() string
}

// Queue is an ordered list of pending records. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	pending []Record
	cache   Lookup
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

// NewQueue creates an empty queue that finds tokens through cache.
func NewQueue(cache Lookup, opts Options) *Queue {
	q := &Queue{
		cache: cache,
		log:   logger.OrGlobal(opts.Logger, "notification"),
		now:   opts.Now,
		newID: opts.NewID,
	}
	if q.now == nil {
		q.now = time.Now
	}
	if q.newID == nil {
		q.newID = uuid.NewString
	}
	return q
}

// EnqueueDisplay queues a display record for the cached unit name. Returns
// false when the unit is not cached or carries no display token.
func (q *Queue) EnqueueDisplay(name string, p params.Parameters) bool {
	record, ok := q.cache.Lookup(name)
	if !ok {
		q.log.Debug("display skipped, unit not cached", logger.Fields(logger.FieldMbox, name))
		return false
	}
	tokens := DisplayTokens(record)
	if len(tokens) == 0 {
		q.log.Debug("display skipped, no token", logger.Fields(logger.FieldMbox, name))
		return false
	}

	r := q.newRecord(TypeDisplay, name, record.Get("state").StringOr(""), tokens)
	r.applyParameters(p)
	q.push(r)
	return true
}

// EnqueueClick queues a click record for the cached unit name. Returns false
// unless the cached metrics include a "click" metric with a token.
func (q *Queue) EnqueueClick(name string, p params.Parameters) bool {
	record, ok := q.cache.Lookup(name)
	if !ok {
		q.log.Debug("click skipped, unit not cached", logger.Fields(logger.FieldMbox, name))
		return false
	}
	metric, ok := ClickMetric(record)
	if !ok {
		q.log.Debug("click skipped, no click metric", logger.Fields(logger.FieldMbox, name))
		return false
	}

	r := q.newRecord(TypeClick, name, record.Get("state").StringOr(""), []string{metric.Get("eventToken").StringOr("")})
	r.applyParameters(p)
	q.push(r)
	return true
}

// Enqueue queues a caller-built record. Records without tokens are rejected.
// A missing id or timestamp is filled in.
func (q *Queue) Enqueue(r Record) bool {
	if len(r.Tokens) == 0 {
		return false
	}
	if r.ID == "" {
		r.ID = q.newID()
	}
	if r.Timestamp == 0 {
		r.Timestamp = q.now().UnixMilli()
	}
	q.push(r)
	return true
}

// DrainAll empties the queue and returns its prior contents in order.
func (q *Queue) DrainAll() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	if out == nil {
		return []Record{}
	}
	return out
}

// IsEmpty reports whether nothing is pending.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) newRecord(typ Type, name, state string, tokens []string) Record {
	return Record{
		ID:        q.newID(),
		Timestamp: q.now().UnixMilli(),
		Type:      typ,
		Mbox:      &MboxRef{Name: name, State: state},
		Tokens:    tokens,
	}
}

func (q *Queue) push(r Record) {
	q.mu.Lock()
	q.pending = append(q.pending, r)
	n := len(q.pending)
	q.mu.Unlock()
	q.log.Debug("notification queued", logger.Fields("type", string(r.Type), logger.FieldCount, n))
}
