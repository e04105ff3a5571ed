package symbols

import "testing"

func TestLookup(t *testing.T) {
	m := New(nil)

	tests := []struct {
		name     string
		symbol   string
		source   string
		wantCode string
		wantOK   bool
	}{
		{"builtin sgb tranche", "SGBAUG28", "mcfeed", "SGA09", true},
		{"case and whitespace insensitive", " sgbaug28 ", "mcfeed", "SGA09", true},
		{"futures contract", "GOLDGUINEA", "mcx-feed", "GGN", true},
		{"known symbol wrong source", "SGBAUG28", "mcx-feed", "", false},
		{"unknown source", "SGBAUG28", "nosuch", "", false},
		{"unknown symbol", "ZZZ", "mcfeed", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := m.Lookup(tt.symbol, tt.source)
			if ok != tt.wantOK || code != tt.wantCode {
				t.Errorf("Lookup(%q, %q) = (%q, %v), want (%q, %v)",
					tt.symbol, tt.source, code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestOverridesMergeOverBuiltin(t *testing.T) {
	m := New(map[string]map[string]string{
		"mcfeed":    {"SGBAUG28": "NEWCODE", "SGBNOV29": "SGN12"},
		"newsource": {"SGBAUG28": "X1"},
	})

	if code, _ := m.Lookup("SGBAUG28", "mcfeed"); code != "NEWCODE" {
		t.Errorf("override should win over builtin, got %q", code)
	}
	if code, _ := m.Lookup("SGBNOV29", "mcfeed"); code != "SGN12" {
		t.Errorf("new symbol on existing source, got %q", code)
	}
	if code, _ := m.Lookup("SGBAUG28", "newsource"); code != "X1" {
		t.Errorf("new source, got %q", code)
	}
	// builtin entries untouched by unrelated overrides
	if code, _ := m.Lookup("SGBDEC2512", "mcfeed"); code != "SGD14" {
		t.Errorf("builtin entry clobbered, got %q", code)
	}
}

func TestKnown(t *testing.T) {
	m := New(nil)
	if !m.Known("GOLDGUINEA") {
		t.Error("GOLDGUINEA should be known")
	}
	if m.Known("ZZZ") {
		t.Error("ZZZ should not be known")
	}
}
