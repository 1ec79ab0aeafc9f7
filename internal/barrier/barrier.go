// Package barrier tracks outstanding asynchronous write and copy operations
// and runs a continuation once all of them have settled.
//
// A Barrier is not safe for concurrent use. All calls must come from one
// goroutine; the generator confines it to its event loop.
package barrier

// Policy decides what happens when Begin is called while a continuation is
// already waiting.
type Policy int

const (
	// PolicyOverwrite keeps a single continuation slot: a later Begin replaces
	// the one still waiting, which never runs.
	PolicyOverwrite Policy = iota
	// PolicyQueue keeps waiting continuations in FIFO order. Each one waits
	// for the pending set to drain again if its predecessor issued new
	// operations.
	PolicyQueue
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == PolicyQueue {
		return "queue"
	}
	return "overwrite"
}

type continuation struct {
	next    func()
	dropped func()
}

// Barrier is the completion barrier. The zero value uses PolicyOverwrite.
type Barrier struct {
	policy  Policy
	pending map[string]int
	size    int
	waiting []continuation
	firing  bool
}

// New returns a Barrier with the given policy.
func New(policy Policy) *Barrier {
	return &Barrier{policy: policy}
}

// Policy returns the barrier's policy.
func (b *Barrier) Policy() Policy {
	return b.policy
}

// SetPolicy changes how later Begin calls treat a waiting continuation.
// Continuations already waiting are kept.
func (b *Barrier) SetPolicy(policy Policy) {
	b.policy = policy
}

// Register adds id to the pending set. The same id may be registered more
// than once; it stays pending until every registration has completed.
func (b *Barrier) Register(id string) {
	if b.pending == nil {
		b.pending = make(map[string]int)
	}
	b.pending[id]++
	b.size++
}

// Complete removes one registration of id. When the set becomes empty the
// waiting continuation runs. Complete reports whether id was pending.
func (b *Barrier) Complete(id string) bool {
	n, ok := b.pending[id]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(b.pending, id)
	} else {
		b.pending[id] = n - 1
	}
	b.size--
	b.fire()
	return true
}

// Begin runs next once the pending set is empty: immediately when nothing
// is outstanding, otherwise after the last Complete.
func (b *Barrier) Begin(next func()) {
	b.BeginWithDrop(next, nil)
}

// BeginWithDrop is Begin with a callback invoked if next is replaced before
// it ran (PolicyOverwrite only).
func (b *Barrier) BeginWithDrop(next, dropped func()) {
	c := continuation{next: next, dropped: dropped}
	if b.size == 0 && len(b.waiting) == 0 && !b.firing {
		next()
		return
	}

	switch b.policy {
	case PolicyQueue:
		b.waiting = append(b.waiting, c)
	default:
		for _, old := range b.waiting {
			if old.dropped != nil {
				old.dropped()
			}
		}
		b.waiting = []continuation{c}
	}
	b.fire()
}

// Pending returns the number of outstanding registrations.
func (b *Barrier) Pending() int {
	return b.size
}

// Draining reports whether a continuation is waiting for the set to empty.
func (b *Barrier) Draining() bool {
	return len(b.waiting) > 0
}

// fire runs waiting continuations while the set is empty. A continuation
// that registers new operations leaves the rest waiting for the next drain.
func (b *Barrier) fire() {
	if b.firing {
		return
	}
	b.firing = true
	defer func() { b.firing = false }()

	for b.size == 0 && len(b.waiting) > 0 {
		c := b.waiting[0]
		b.waiting = b.waiting[1:]
		c.next()
	}
}
