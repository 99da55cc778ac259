package tether

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/editkit/tether/engine"
	"github.com/editkit/tether/ratelimit"
)

// Option configures an editor at mount time.
type Option func(*Editor)

// WithLogger sets the editor's logger. The default discards everything.
func WithLogger(l *Logger) Option {
	return func(ed *Editor) { ed.log = l }
}

// WithClearPolicy overrides what happens to a facet when its fields vanish
// from the configuration. By default indentation and read-only re-resolve
// their non-empty defaults and every other facet reverts to empty.
func WithClearPolicy(f Facet, p ClearPolicy) Option {
	return func(ed *Editor) {
		if f >= 0 && int(f) < numFacets {
			ed.policies[f] = p
		}
	}
}

// Editor is one mounted live editor instance: the handle the host's
// lifecycle adapter holds between mount and unmount. It owns the view,
// the per-facet compartments, and the per-document snapshot map; none of
// these are ever shared across instances.
//
// Update and Destroy are serialized per instance. Notification observers
// run synchronously on the updating goroutine and must not call back into
// Update or Destroy; read accessors (View, Events, ID) are safe from
// inside an observer.
type Editor struct {
	id       string
	log      *Logger
	events   *Notifier
	comps    *compartmentSet
	policies [numFacets]ClearPolicy
	surface  engine.Surface

	// initDone closes when asynchronous initialization finishes; initErr
	// is set before the close.
	initDone chan struct{}
	initErr  error

	// view is read lock-free so observers running under mu (swap hooks,
	// store subscribers, update listeners) can use the handle. Writes
	// happen once at initialization and once at Destroy.
	view atomic.Pointer[engine.View]

	mu        sync.Mutex // serializes reconciliation; guards the fields below
	cfg       *Config    // last committed normalized config
	snapshots map[string][]byte
	destroyed bool

	// notifyMu guards notification state. Separate from mu because the
	// view update listener runs inside Dispatch while mu is held.
	notifyMu   sync.Mutex
	lastValue  string
	limiter    ratelimit.Limiter
	limiterCfg NotifyConfig
}

// Mount attaches a new live editor to the given surface using the initial
// configuration. Validation is synchronous; everything that may resolve
// slowly (setup bundles, language factories, completion, linting) happens
// asynchronously after Mount returns. Update and Destroy calls issued
// before initialization completes queue behind it; Ready exposes the
// completion signal directly.
func Mount(surface engine.Surface, cfg *Config, opts ...Option) (*Editor, error) {
	norm, err := normalize(cfg)
	if err != nil {
		return nil, err
	}

	ed := &Editor{
		id:        uuid.NewString(),
		events:    newNotifier(),
		comps:     newCompartmentSet(),
		policies:  defaultClearPolicies(),
		surface:   surface,
		initDone:  make(chan struct{}),
		snapshots: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(ed)
	}
	ed.limiter = buildLimiter(norm.Notify)
	ed.limiterCfg = norm.Notify

	go ed.initialize(context.Background(), norm)
	return ed, nil
}

// initialize resolves every facet concurrently, builds the initial state,
// and creates the view. Runs exactly once per mount.
func (ed *Editor) initialize(ctx context.Context, cfg *Config) {
	defer close(ed.initDone)

	resolved, err := resolveFacets(ctx, cfg, allFacets())
	if err != nil {
		ed.initErr = err
		ed.log.Errorf("editor %s: initialization failed: %v", ed.id, err)
		return
	}

	state := engine.NewState(engine.StateConfig{
		Doc:        cfg.Value,
		Selection:  cursorSelection(cfg),
		Extensions: ed.comps.assemble(resolved),
	})
	view := engine.NewView(engine.ViewConfig{State: state, Surface: ed.surface})
	view.AddUpdateListener(ed.onViewUpdate)

	ed.notifyMu.Lock()
	ed.lastValue = cfg.Value
	ed.notifyMu.Unlock()

	ed.mu.Lock()
	ed.cfg = cfg
	ed.mu.Unlock()
	ed.view.Store(view)

	if cfg.Cursor != nil {
		view.Focus()
	}
	ed.publish(cfg, view)
	ed.log.Infof("editor %s: initialized (doc %q, %d bytes)", ed.id, cfg.DocumentID, len(cfg.Value))
}

// Ready blocks until asynchronous initialization completes, returning its
// error if it failed.
func (ed *Editor) Ready(ctx context.Context) error {
	select {
	case <-ed.initDone:
		return ed.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the editor's notification registry.
func (ed *Editor) Events() *Notifier { return ed.events }

// View returns the live view handle, or nil before initialization
// completes or after Destroy. Never blocks on an in-flight update, so it
// is safe to call from notification observers and store subscribers.
func (ed *Editor) View() *engine.View {
	return ed.view.Load()
}

// ID returns the instance's unique identifier.
func (ed *Editor) ID() string { return ed.id }

// Update reconciles the live editor to the new configuration. Per-facet
// resolutions run concurrently; their effects are collected into a single
// transaction dispatched atomically, so the editor's change listener fires
// exactly once per update. Any resolver failure aborts the whole update
// before anything is applied.
//
// Updates are serialized per instance: a call arriving while a previous
// one is in flight waits for it. A call before initialization completes
// waits for initialization.
func (ed *Editor) Update(ctx context.Context, cfg *Config) error {
	if err := ed.Ready(ctx); err != nil {
		return err
	}
	norm, err := normalize(cfg)
	if err != nil {
		return err
	}

	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.destroyed {
		return ErrDestroyed
	}

	old := ed.cfg
	ed.retuneLimiter(norm.Notify)

	// A differing identity key is exactly a document swap; the very first
	// config that introduces document mode is not.
	swapOut := old.DocumentID != norm.DocumentID && old.DocumentID != ""
	if swapOut {
		// Snapshot the outgoing document before any new-config effects
		// are dispatched, so the snapshot reflects its own history only.
		snap, err := ed.view.Load().State().Serialize(persistFields(old))
		if err != nil {
			return swapErr(old.DocumentID, err)
		}
		ed.snapshots[old.DocumentID] = snap

		if norm.DocumentID != "" {
			return ed.swapIn(ctx, old, norm)
		}
		// Swap to nothing: the editor keeps running under no tracked
		// identity; the reconcile transaction is marked swap-caused.
	}
	return ed.reconcile(ctx, old, norm, swapOut)
}

// reconcile performs one minimal update pass: diff facets, resolve the
// dirty ones concurrently, dispatch one combined transaction. Caller holds
// mu.
func (ed *Editor) reconcile(ctx context.Context, old, norm *Config, swap bool) error {
	view := ed.view.Load()
	states := diffFacets(old, norm)

	var dirty, cleared []Facet
	for i := range numFacets {
		f := Facet(i)
		switch states[f] {
		case facetChanged:
			dirty = append(dirty, f)
		case facetCleared:
			if ed.policies[f] == ClearDefault {
				dirty = append(dirty, f)
			} else {
				cleared = append(cleared, f)
			}
		}
	}

	resolved, err := resolveFacets(ctx, norm, dirty)
	if err != nil {
		return err
	}

	spec := buildUpdateSpec(view, ed.comps, old, norm, resolved, cleared, swap)
	if len(spec.Changes) > 0 || spec.Selection != nil || len(spec.Effects) > 0 {
		if _, err := view.Dispatch(spec); err != nil {
			return err
		}
		if spec.Selection != nil {
			view.Focus()
		}
		ed.log.Debugf("editor %s: update applied (%d changes, %d effects)",
			ed.id, len(spec.Changes), len(spec.Effects))
	}

	ed.cfg = norm
	ed.publish(norm, view)
	return nil
}

// swapIn completes a document swap to a tracked incoming identity: hook,
// fresh resolution, state restore or creation, atomic replacement, hook.
// Caller holds mu and has already snapshotted the outgoing document.
func (ed *Editor) swapIn(ctx context.Context, old, norm *Config) error {
	view := ed.view.Load()
	ed.log.Infof("editor %s: swapping document %q -> %q", ed.id, old.DocumentID, norm.DocumentID)
	ed.events.emitChanging(DocumentSwap{From: old.DocumentID, To: norm.DocumentID})

	// The incoming document may legitimately need a different extension
	// list (different language, say), so resolve everything fresh. A
	// failure here aborts with the outgoing document still displayed.
	resolved, err := resolveFacets(ctx, norm, allFacets())
	if err != nil {
		return swapErr(norm.DocumentID, err)
	}

	stateCfg := engine.StateConfig{
		Doc:        norm.Value,
		Selection:  cursorSelection(norm),
		Extensions: ed.comps.assemble(resolved),
	}

	var state *engine.EditorState
	if snap, ok := ed.snapshots[norm.DocumentID]; ok {
		// Re-bind the stored slices to the fresh extension list; the
		// incoming config's Value always wins over the snapshot's doc.
		state, err = engine.StateFromSerialized(snap, stateCfg, persistFields(norm))
		if err != nil {
			return swapErr(norm.DocumentID, err)
		}
	} else {
		// First visit: a brand-new state guarantees empty history.
		state = engine.NewState(stateCfg)
	}

	if err := view.SetState(state); err != nil {
		return swapErr(norm.DocumentID, err)
	}
	view.Focus()
	ed.cfg = norm

	ed.events.emitChanged(DocumentSwap{From: old.DocumentID, To: norm.DocumentID})
	ed.publish(norm, view)
	return nil
}

// Destroy releases the live editor. It waits for any pending
// initialization (without cancelling it), then tears down the view.
// Idempotent: repeated calls, and calls on a never-initialized editor,
// return nil.
func (ed *Editor) Destroy(ctx context.Context) error {
	select {
	case <-ed.initDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.destroyed {
		return nil
	}
	ed.destroyed = true

	ed.notifyMu.Lock()
	ed.limiter.Cancel()
	ed.notifyMu.Unlock()

	if view := ed.view.Load(); view != nil {
		view.Destroy()
		ed.view.Store(nil)
	}
	ed.snapshots = nil
	ed.log.Infof("editor %s: destroyed", ed.id)
	return nil
}

// onViewUpdate bridges engine updates to the notification registry. It
// runs inside View.Dispatch/SetState on the updating goroutine; swaps
// bypass the rate limiter so hosts observe document changes in order.
func (ed *Editor) onViewUpdate(u engine.ViewUpdate) {
	fromSwap := u.StateReplaced
	if u.Transaction != nil {
		if v, ok := u.Transaction.Annotation(annotationSwap).(bool); ok && v {
			fromSwap = true
		}
	}

	value := u.State.Doc()

	ed.notifyMu.Lock()
	textChanged := value != ed.lastValue
	ed.lastValue = value
	limiter := ed.limiter
	ed.notifyMu.Unlock()

	ed.events.emitState(StateChange{Transaction: u.Transaction, FromSwap: fromSwap})

	if !textChanged {
		return
	}
	ev := TextChange{Value: value, FromSwap: fromSwap}
	if fromSwap {
		// Deliver any held edit notification first to preserve order,
		// then the swap notification immediately.
		limiter.Flush()
		ed.events.emitText(ev)
		return
	}
	limiter.Call(func() { ed.events.emitText(ev) })
}

// retuneLimiter applies a changed notification policy. Takes effect with
// the next change event; an in-flight window keeps its timing.
func (ed *Editor) retuneLimiter(cfg NotifyConfig) {
	ed.notifyMu.Lock()
	defer ed.notifyMu.Unlock()

	if cfg == ed.limiterCfg {
		return
	}
	if cfg.Mode == ed.limiterCfg.Mode {
		switch l := ed.limiter.(type) {
		case *ratelimit.Debouncer:
			l.SetDelay(cfg.Duration)
		case *ratelimit.Throttler:
			l.SetInterval(cfg.Duration)
		}
	} else {
		// A held trailing notification still carries the latest value;
		// deliver it rather than drop it with the old limiter.
		ed.limiter.Flush()
		ed.limiter = buildLimiter(cfg)
	}
	ed.limiterCfg = cfg
}

func buildLimiter(cfg NotifyConfig) ratelimit.Limiter {
	switch cfg.Mode {
	case NotifyDebounce:
		return ratelimit.NewDebouncer(cfg.Duration)
	case NotifyThrottle:
		return ratelimit.NewThrottler(cfg.Duration)
	default:
		return ratelimit.Passthrough{}
	}
}

// publish pushes the current publication to the config's store, if any.
func (ed *Editor) publish(cfg *Config, view *engine.View) {
	if cfg.Store == nil || view == nil {
		return
	}
	var exts []engine.Extension
	if st := view.State(); st != nil {
		exts = st.Extensions()
	}
	cfg.Store.publish(Publication{
		View:       view,
		Value:      view.Doc(),
		Extensions: exts,
		Documents:  snapshotDocuments(ed.snapshots),
	})
}
