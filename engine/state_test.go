package engine

import "testing"

func TestNewState_Defaults(t *testing.T) {
	st := NewState(StateConfig{Doc: "hello"})

	if got := st.Doc(); got != "hello" {
		t.Errorf("Doc() = %q, want %q", got, "hello")
	}
	if got := st.Selection(); got != Cursor(0) {
		t.Errorf("Selection() = %+v, want cursor at 0", got)
	}
	if got := st.TabSize(); got != DefaultTabSize {
		t.Errorf("TabSize() = %d, want %d", got, DefaultTabSize)
	}
	if got := st.IndentUnit(); got != DefaultIndentUnit {
		t.Errorf("IndentUnit() = %q, want %q", got, DefaultIndentUnit)
	}
	if !st.Editable() {
		t.Error("Editable() = false, want true by default")
	}
	if st.HistoryDepth() != 0 {
		t.Error("HistoryDepth() != 0 without History extension")
	}
}

func TestNewState_FacetFirstWins(t *testing.T) {
	st := NewState(StateConfig{
		Extensions: []Extension{
			TabSize(2),
			Extensions(TabSize(8), IndentUnit("  ")),
			Editable(false),
		},
	})

	if got := st.TabSize(); got != 2 {
		t.Errorf("TabSize() = %d, want 2 (first value wins)", got)
	}
	if got := st.IndentUnit(); got != "  " {
		t.Errorf("IndentUnit() = %q, want two spaces", got)
	}
	if st.Editable() {
		t.Error("Editable() = true, want false")
	}
}

func TestNewState_ThemeMerges(t *testing.T) {
	st := NewState(StateConfig{
		Extensions: []Extension{
			Theme(map[string]string{"background": "#111111"}),
			Theme(map[string]string{"background": "#222222", "color": "#eeeeee"}),
		},
	})

	theme := st.Theme()
	if got := theme["background"]; got != "#111111" {
		t.Errorf("background = %q, want earlier entry to win", got)
	}
	if got := theme["color"]; got != "#eeeeee" {
		t.Errorf("color = %q, want %q", got, "#eeeeee")
	}
}

func TestState_CompartmentReconfigure(t *testing.T) {
	tab := NewCompartment("tabsize")
	other := NewCompartment("other")

	st := NewState(StateConfig{
		Extensions: []Extension{
			tab.Of(TabSize(2)),
			other.Of(Editable(false)),
		},
	})

	if got := st.TabSize(); got != 2 {
		t.Fatalf("TabSize() = %d, want 2", got)
	}

	if err := st.applyEffect(tab.Reconfigure(TabSize(8))); err != nil {
		t.Fatalf("applyEffect: %v", err)
	}
	if got := st.TabSize(); got != 8 {
		t.Errorf("TabSize() after reconfigure = %d, want 8", got)
	}
	if st.Editable() {
		t.Error("other compartment content disturbed by reconfigure")
	}

	// Clearing a slot falls back to engine defaults.
	if err := st.applyEffect(tab.Reconfigure(Extensions())); err != nil {
		t.Fatalf("applyEffect clear: %v", err)
	}
	if got := st.TabSize(); got != DefaultTabSize {
		t.Errorf("TabSize() after clear = %d, want default %d", got, DefaultTabSize)
	}

	// Unknown compartments are rejected.
	stray := NewCompartment("stray")
	if err := st.applyEffect(stray.Reconfigure(TabSize(3))); err != ErrUnknownCompartment {
		t.Errorf("applyEffect(stray) = %v, want ErrUnknownCompartment", err)
	}
}

func TestOpaqueExtension(t *testing.T) {
	payload := struct{ name string }{"go"}
	e := Opaque("lang:go", payload)

	name, ok := OpaqueName(e)
	if !ok || name != "lang:go" {
		t.Errorf("OpaqueName = %q, %v", name, ok)
	}
	if got := OpaquePayload(e); got != payload {
		t.Errorf("OpaquePayload = %v, want %v", got, payload)
	}
	if _, ok := OpaqueName(TabSize(2)); ok {
		t.Error("OpaqueName(TabSize) reported ok")
	}
}

func TestSelection_GraphemeClamp(t *testing.T) {
	// "a" + family emoji (ZWJ sequence, 25 bytes) + "b"
	doc := "a\U0001F468‍\U0001F469‍\U0001F467‍\U0001F466b"

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{"start", 0, 0},
		{"after a", 1, 1},
		{"inside cluster", 5, 1},
		{"end", len(doc), len(doc)},
		{"past end", len(doc) + 10, len(doc)},
		{"negative", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampToGrapheme(doc, tt.offset); got != tt.want {
				t.Errorf("clampToGrapheme(%d) = %d, want %d", tt.offset, got, tt.want)
			}
		})
	}
}
