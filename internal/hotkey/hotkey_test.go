package hotkey

import (
	"testing"

	xhotkey "golang.design/x/hotkey"
)

func TestParseBasicCombo(t *testing.T) {
	combo, err := Parse("<ctrl>+<alt>+f")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if combo.Key != xhotkey.KeyF {
		t.Errorf("expected main key F, got %v", combo.Key)
	}
	if len(combo.Modifiers) != 2 {
		t.Fatalf("expected 2 modifiers, got %d", len(combo.Modifiers))
	}
	set := combo.modifierSet()
	if !set[xhotkey.ModCtrl] || !set[xhotkey.ModOption] {
		t.Errorf("expected ctrl+alt in modifier set, got %v", combo.Modifiers)
	}
}

func TestParseSingleKeyNoModifiers(t *testing.T) {
	combo, err := Parse("f12")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if combo.Key != xhotkey.KeyF12 {
		t.Errorf("expected F12, got %v", combo.Key)
	}
	if len(combo.Modifiers) != 0 {
		t.Errorf("expected no modifiers, got %v", combo.Modifiers)
	}
}

func TestParseUnknownModifier(t *testing.T) {
	if _, err := Parse("<hyper>+f"); err == nil {
		t.Error("expected error for unknown modifier")
	}
}

func TestParseUnknownKey(t *testing.T) {
	if _, err := Parse("<ctrl>+notakey"); err == nil {
		t.Error("expected error for unknown main key")
	}
}

func TestParseEmptySpec(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("expected error for empty spec")
	}
}

func TestParseMissingMainKey(t *testing.T) {
	if _, err := Parse("<ctrl>+<alt>"); err == nil {
		t.Error("expected error when spec has only modifiers")
	}
}

func TestModifierSetEqualityIgnoresOrder(t *testing.T) {
	a, err := Parse("<ctrl>+<alt>+f")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := Parse("<alt>+<ctrl>+f")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	setA, setB := a.modifierSet(), b.modifierSet()
	if len(setA) != len(setB) {
		t.Fatalf("expected equal-size modifier sets, got %d vs %d", len(setA), len(setB))
	}
	for m := range setA {
		if !setB[m] {
			t.Errorf("expected modifier %v present in both parses regardless of order", m)
		}
	}
}
