package tether

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/editkit/tether/engine"
	"github.com/editkit/tether/preset"
)

type testSurface struct {
	focusCalls atomic.Int32
}

func (s *testSurface) Focus() { s.focusCalls.Add(1) }

func mountReady(t *testing.T, cfg *Config, opts ...Option) *Editor {
	t.Helper()
	ed, err := Mount(&testSurface{}, cfg, opts...)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(func() { _ = ed.Destroy(context.Background()) })
	if err := ed.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	return ed
}

func TestMount_InvalidConfig(t *testing.T) {
	if _, err := Mount(&testSurface{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Mount(nil) err = %v, want ErrInvalidConfig", err)
	}
	if _, err := Mount(&testSurface{}, &Config{Setup: "bogus"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Mount(bad setup) err = %v, want ErrInvalidConfig", err)
	}
}

func TestMount_InitialState(t *testing.T) {
	cursor := 3
	ed := mountReady(t, &Config{
		Value:   "package main",
		Setup:   SetupMinimal,
		TabSize: 4,
		Cursor:  &cursor,
	})

	v := ed.View()
	if v == nil {
		t.Fatal("View() = nil after Ready")
	}
	if got := v.Doc(); got != "package main" {
		t.Errorf("Doc() = %q", got)
	}
	if got := v.State().TabSize(); got != 4 {
		t.Errorf("TabSize() = %d, want 4", got)
	}
	if got := v.State().Selection(); got != engine.Cursor(3) {
		t.Errorf("Selection() = %+v, want cursor at 3", got)
	}
	if !v.HasFocus() {
		t.Error("cursor was supplied but focus not requested")
	}
	// Minimal setup installs history.
	if _, err := v.Dispatch(engine.TransactionSpec{Changes: []engine.Change{{From: 0, To: 0, Insert: "x"}}}); err != nil {
		t.Fatal(err)
	}
	if got := v.State().HistoryDepth(); got != 1 {
		t.Errorf("HistoryDepth() = %d, want 1 (setup bundle history)", got)
	}
}

// collectEffects subscribes to state changes and returns a pointer to the
// slice of per-transaction effect lists observed.
func collectEffects(ed *Editor) *[][]engine.StateEffect {
	var out [][]engine.StateEffect
	ed.Events().OnStateChange(func(sc StateChange) {
		if sc.Transaction != nil {
			out = append(out, sc.Transaction.Effects)
		}
	})
	return &out
}

func TestUpdate_MinimalityOneFacet(t *testing.T) {
	base := Config{Value: "v", TabSize: 2}
	ed := mountReady(t, &base)
	effects := collectEffects(ed)

	next := base
	next.ReadOnly = true
	if err := ed.Update(context.Background(), &next); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(*effects) != 1 {
		t.Fatalf("observed %d transactions, want 1", len(*effects))
	}
	got := (*effects)[0]
	if len(got) != 1 {
		t.Fatalf("transaction carried %d effects, want 1", len(got))
	}
	f, ok := ed.comps.facetOf(got[0].Compartment)
	if !ok || f != FacetReadOnly {
		t.Errorf("effect touched %v, want read-only compartment", f)
	}
	if ed.View().State().Editable() {
		t.Error("Editable() = true after ReadOnly update")
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	cfg := Config{Value: "hello", Setup: SetupBasic, Styles: map[string]string{"background": "#101010"}}
	ed := mountReady(t, &cfg)
	effects := collectEffects(ed)

	again := cfg
	if err := ed.Update(context.Background(), &again); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(*effects) != 0 {
		t.Errorf("no-op update dispatched %d transactions, want 0", len(*effects))
	}
}

func TestUpdate_TextReplaceSingleChange(t *testing.T) {
	base := Config{Value: "one"}
	ed := mountReady(t, &base)

	var changes []engine.Change
	ed.Events().OnStateChange(func(sc StateChange) {
		if sc.Transaction != nil {
			changes = append(changes, sc.Transaction.Changes...)
		}
	})

	next := base
	next.Value = "two"
	if err := ed.Update(context.Background(), &next); err != nil {
		t.Fatal(err)
	}

	if len(changes) != 1 {
		t.Fatalf("observed %d changes, want exactly 1", len(changes))
	}
	want := engine.Change{From: 0, To: 3, Insert: "two"}
	if changes[0] != want {
		t.Errorf("change = %+v, want %+v", changes[0], want)
	}
	if got := ed.View().Doc(); got != "two" {
		t.Errorf("Doc() = %q", got)
	}
}

func TestUpdate_CursorChangeFocuses(t *testing.T) {
	base := Config{Value: "hello"}
	ed := mountReady(t, &base)

	next := base
	pos := 2
	next.Cursor = &pos
	if err := ed.Update(context.Background(), &next); err != nil {
		t.Fatal(err)
	}
	if got := ed.View().State().Selection(); got != engine.Cursor(2) {
		t.Errorf("Selection() = %+v", got)
	}
	if !ed.View().HasFocus() {
		t.Error("cursor change did not request focus")
	}
}

func TestUpdate_AtomicFailure(t *testing.T) {
	base := Config{Value: "stable", TabSize: 2}
	ed := mountReady(t, &base)
	effects := collectEffects(ed)

	next := base
	next.Value = "clobbered"
	next.ReadOnly = true
	next.Lang = "js"
	next.LangMap = map[string]preset.LanguageFactory{
		"js": func(ctx context.Context) (engine.Extension, error) {
			return nil, errors.New("loader exploded")
		},
	}

	err := ed.Update(context.Background(), &next)
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("Update err = %v, want ErrResolution", err)
	}

	// Nothing may have been applied: not the text, not the other facets.
	if got := ed.View().Doc(); got != "stable" {
		t.Errorf("Doc() = %q, want untouched", got)
	}
	if !ed.View().State().Editable() {
		t.Error("read-only applied despite aborted update")
	}
	if len(*effects) != 0 {
		t.Errorf("observed %d transactions after failed update, want 0", len(*effects))
	}
}

func TestUpdate_ClearPolicies(t *testing.T) {
	base := Config{
		Value:   "v",
		TabSize: 8,
		Styles:  map[string]string{"background": "#333333"},
	}
	ed := mountReady(t, &base)

	// Dropping Styles reverts the theme compartment to empty; dropping
	// TabSize re-resolves the indentation default (2) instead.
	next := Config{Value: "v"}
	if err := ed.Update(context.Background(), &next); err != nil {
		t.Fatal(err)
	}

	st := ed.View().State()
	if got := st.Theme(); len(got) != 0 {
		t.Errorf("Theme() = %v, want cleared", got)
	}
	if got := st.TabSize(); got != 2 {
		t.Errorf("TabSize() = %d, want re-resolved default 2", got)
	}
}

func TestUpdate_BeforeReadyQueues(t *testing.T) {
	ed, err := Mount(&testSurface{}, &Config{Value: "a"})
	if err != nil {
		t.Fatal(err)
	}
	defer ed.Destroy(context.Background())

	// Update issued immediately queues behind initialization.
	next := Config{Value: "b"}
	if err := ed.Update(context.Background(), &next); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := ed.View().Doc(); got != "b" {
		t.Errorf("Doc() = %q, want %q", got, "b")
	}
}

func TestDestroy_BeforeReadyAndIdempotent(t *testing.T) {
	ed, err := Mount(&testSurface{}, &Config{Value: "x", Setup: SetupBasic})
	if err != nil {
		t.Fatal(err)
	}

	// Destroy must await initialization, release, and never error.
	if err := ed.Destroy(context.Background()); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := ed.Destroy(context.Background()); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if ed.View() != nil {
		t.Error("View() != nil after Destroy")
	}
	if err := ed.Update(context.Background(), &Config{Value: "y"}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Update after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestNotify_DebounceCoalescing(t *testing.T) {
	base := Config{
		Value:  "v0",
		Notify: NotifyConfig{Mode: NotifyDebounce, Duration: 80 * time.Millisecond},
	}
	ed := mountReady(t, &base)

	var notifications atomic.Int32
	var final atomic.Value
	ed.Events().OnTextChange(func(tc TextChange) {
		notifications.Add(1)
		final.Store(tc.Value)
	})

	// Three edits inside half the debounce window each.
	for _, v := range []string{"v1", "v2", "v3"} {
		next := base
		next.Value = v
		if err := ed.Update(context.Background(), &next); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if got := notifications.Load(); got != 1 {
		t.Errorf("notifications = %d, want 1", got)
	}
	if got, _ := final.Load().(string); got != "v3" {
		t.Errorf("final value = %q, want %q", got, "v3")
	}
}

func TestNotify_ThrottleRateBound(t *testing.T) {
	base := Config{
		Value:  "v0",
		Notify: NotifyConfig{Mode: NotifyThrottle, Duration: 150 * time.Millisecond},
	}
	ed := mountReady(t, &base)

	var notifications atomic.Int32
	var final atomic.Value
	ed.Events().OnTextChange(func(tc TextChange) {
		notifications.Add(1)
		final.Store(tc.Value)
	})

	for i, v := range []string{"v1", "v2", "v3", "v4"} {
		next := base
		next.Value = v
		if err := ed.Update(context.Background(), &next); err != nil {
			t.Fatal(err)
		}
		_ = i
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	// One leading, one trailing with the final value; never one per edit.
	if got := notifications.Load(); got != 2 {
		t.Errorf("notifications = %d, want 2", got)
	}
	if got, _ := final.Load().(string); got != "v4" {
		t.Errorf("final value = %q, want %q", got, "v4")
	}
}

func TestNotify_ModeSwitchDeliversPending(t *testing.T) {
	base := Config{
		Value:  "v0",
		Notify: NotifyConfig{Mode: NotifyDebounce, Duration: 5 * time.Second},
	}
	ed := mountReady(t, &base)

	notif := make(chan string, 4)
	ed.Events().OnTextChange(func(tc TextChange) { notif <- tc.Value })

	// The edit's notification is held by the long debounce window.
	edit := base
	edit.Value = "v1"
	if err := ed.Update(context.Background(), &edit); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-notif:
		t.Fatalf("notification %q delivered inside debounce window", v)
	default:
	}

	// Switching policy must deliver the held value, not drop it.
	immediate := edit
	immediate.Notify = NotifyConfig{}
	if err := ed.Update(context.Background(), &immediate); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-notif:
		if v != "v1" {
			t.Errorf("flushed value = %q, want %q", v, "v1")
		}
	default:
		t.Fatal("pending notification dropped on mode switch")
	}
}

func TestObservers_ReadHandleDuringUpdate(t *testing.T) {
	store := NewStore()
	base := Config{Value: "one", Store: store}
	ed := mountReady(t, &base)

	// Observers reading the editor handle must not block behind the
	// in-flight update that is notifying them.
	var published atomic.Value
	store.Subscribe(func(Publication) {
		if v := ed.View(); v != nil {
			published.Store(v.Doc())
		}
	})
	ed.Events().OnStateChange(func(StateChange) {
		if v := ed.View(); v != nil {
			_ = v.Doc()
		}
	})

	next := base
	next.Value = "two"
	done := make(chan error, 1)
	go func() { done <- ed.Update(context.Background(), &next) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Update blocked with handle-reading observers")
	}
	if got, _ := published.Load().(string); got != "two" {
		t.Errorf("subscriber saw doc %q, want %q", got, "two")
	}
}

func TestNotify_StateChangeEveryTransaction(t *testing.T) {
	base := Config{Value: "a"}
	ed := mountReady(t, &base)

	var count atomic.Int32
	ed.Events().OnStateChange(func(StateChange) { count.Add(1) })

	for _, v := range []string{"b", "c"} {
		next := base
		next.Value = v
		if err := ed.Update(context.Background(), &next); err != nil {
			t.Fatal(err)
		}
	}
	if got := count.Load(); got != 2 {
		t.Errorf("state changes = %d, want 2", got)
	}
}

func TestPublisher_PublishesAfterCommit(t *testing.T) {
	store := NewStore()
	base := Config{Value: "one", Store: store}
	ed := mountReady(t, &base)

	if got := store.Get().Value; got != "one" {
		t.Fatalf("published value = %q, want %q", got, "one")
	}

	next := base
	next.Value = "two"
	if err := ed.Update(context.Background(), &next); err != nil {
		t.Fatal(err)
	}

	pub := store.Get()
	if pub.Value != "two" {
		t.Errorf("published value = %q, want %q", pub.Value, "two")
	}
	if pub.View == nil {
		t.Error("published View = nil")
	}
	if len(pub.Extensions) == 0 {
		t.Error("published Extensions empty")
	}
}
