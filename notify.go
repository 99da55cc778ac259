package tether

import (
	"sync"

	"github.com/editkit/tether/engine"
)

// TextChange reports that the document text differs from its previously
// observed value.
type TextChange struct {
	// Value is the new document text.
	Value string

	// FromSwap is true when the change was caused by a document swap
	// rather than an edit.
	FromSwap bool
}

// StateChange reports a committed transaction.
type StateChange struct {
	// Transaction is the committed transaction descriptor. Nil for a
	// wholesale state replacement (document swap).
	Transaction *engine.Transaction

	// FromSwap is true when the commit was caused by a document swap.
	FromSwap bool
}

// DocumentSwap identifies the two sides of a document-identity change.
type DocumentSwap struct {
	// From is the outgoing document identity.
	From string

	// To is the incoming document identity.
	To string
}

// Subscription is an active notification subscription.
type Subscription struct {
	once  sync.Once
	unsub func()
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.unsub)
}

// Notifier is the typed observer registry for the four editor
// notifications: text-changed, state-changed, document-changing and
// document-changed. It is decoupled from any UI framework; lifecycle
// adapters subscribe here and re-emit in their framework's idiom.
//
// Thread-safety: all methods are safe for concurrent use. Observers run
// synchronously on the emitting goroutine.
type Notifier struct {
	mu       sync.RWMutex
	nextID   uint64
	text     map[uint64]func(TextChange)
	state    map[uint64]func(StateChange)
	changing map[uint64]func(DocumentSwap)
	changed  map[uint64]func(DocumentSwap)
}

func newNotifier() *Notifier {
	return &Notifier{
		text:     make(map[uint64]func(TextChange)),
		state:    make(map[uint64]func(StateChange)),
		changing: make(map[uint64]func(DocumentSwap)),
		changed:  make(map[uint64]func(DocumentSwap)),
	}
}

func (n *Notifier) subscribe(register func(id uint64), remove func(id uint64)) *Subscription {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	register(id)
	n.mu.Unlock()

	return &Subscription{unsub: func() {
		n.mu.Lock()
		remove(id)
		n.mu.Unlock()
	}}
}

// OnTextChange observes text-changed notifications.
func (n *Notifier) OnTextChange(fn func(TextChange)) *Subscription {
	return n.subscribe(
		func(id uint64) { n.text[id] = fn },
		func(id uint64) { delete(n.text, id) },
	)
}

// OnStateChange observes every committed transaction.
func (n *Notifier) OnStateChange(fn func(StateChange)) *Subscription {
	return n.subscribe(
		func(id uint64) { n.state[id] = fn },
		func(id uint64) { delete(n.state, id) },
	)
}

// OnDocumentChanging observes the pre-swap hook, fired immediately before
// a document swap commits its new state.
func (n *Notifier) OnDocumentChanging(fn func(DocumentSwap)) *Subscription {
	return n.subscribe(
		func(id uint64) { n.changing[id] = fn },
		func(id uint64) { delete(n.changing, id) },
	)
}

// OnDocumentChanged observes the post-swap hook, fired immediately after a
// document swap commits.
func (n *Notifier) OnDocumentChanged(fn func(DocumentSwap)) *Subscription {
	return n.subscribe(
		func(id uint64) { n.changed[id] = fn },
		func(id uint64) { delete(n.changed, id) },
	)
}

func (n *Notifier) emitText(ev TextChange) {
	for _, fn := range collect(n, n.text) {
		fn(ev)
	}
}

func (n *Notifier) emitState(ev StateChange) {
	for _, fn := range collect(n, n.state) {
		fn(ev)
	}
}

func (n *Notifier) emitChanging(ev DocumentSwap) {
	for _, fn := range collect(n, n.changing) {
		fn(ev)
	}
}

func (n *Notifier) emitChanged(ev DocumentSwap) {
	for _, fn := range collect(n, n.changed) {
		fn(ev)
	}
}

func collect[T any](n *Notifier, m map[uint64]func(T)) []func(T) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]func(T), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}
