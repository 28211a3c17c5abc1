package docstruct

import "testing"

func TestCountBuiltinDecimal(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	an := &AbstractNum{
		ID: "a1",
		Levels: map[int]LevelFormat{
			0: {Start: 1, NumFmt: "decimal", LvlText: "%1."},
			1: {Start: 1, NumFmt: "decimal", LvlText: "%1.%2."},
		},
		Counters: map[int]int{},
	}

	n1 := ns.CountBuiltin(an, 0)
	if n1.Prefix != "1." || n1.Depth != 1 {
		t.Fatalf("got prefix=%q depth=%d, want 1./1", n1.Prefix, n1.Depth)
	}
	n2 := ns.CountBuiltin(an, 0)
	if n2.Prefix != "2." {
		t.Fatalf("got prefix=%q, want 2.", n2.Prefix)
	}
	n3 := ns.CountBuiltin(an, 1)
	if n3.Prefix != "2.1." {
		t.Fatalf("got prefix=%q, want 2.1.", n3.Prefix)
	}
	// Bumping level 0 again must reset level 1's counter.
	n4 := ns.CountBuiltin(an, 0)
	if n4.Prefix != "3." {
		t.Fatalf("got prefix=%q, want 3.", n4.Prefix)
	}
	n5 := ns.CountBuiltin(an, 1)
	if n5.Prefix != "3.1." {
		t.Fatalf("got prefix=%q after sibling reset, want 3.1.", n5.Prefix)
	}
}

func TestCountBuiltinLettersAndRoman(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	an := &AbstractNum{
		ID: "a2",
		Levels: map[int]LevelFormat{
			0: {Start: 1, NumFmt: "upperLetter", LvlText: "%1)"},
		},
		Counters: map[int]int{},
	}
	for i, want := range []string{"A)", "B)", "C)"} {
		_ = i
		n := ns.CountBuiltin(an, 0)
		if n.Prefix != want {
			t.Fatalf("got %q, want %q", n.Prefix, want)
		}
	}

	roman := &AbstractNum{
		ID:       "a3",
		Levels:   map[int]LevelFormat{0: {Start: 1, NumFmt: "lowerRoman", LvlText: "%1."}},
		Counters: map[int]int{},
	}
	ns.CountBuiltin(roman, 0)
	ns.CountBuiltin(roman, 0)
	n := ns.CountBuiltin(roman, 0)
	if n.Prefix != "iii." {
		t.Fatalf("got %q, want iii.", n.Prefix)
	}
}

func TestSynthesizeDefaultMarksNode(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	an := ns.resolveAbstract("unknown-num-id")
	if !an.Default {
		t.Fatal("expected synthesized abstract to be marked Default")
	}
	n := ns.CountBuiltin(an, 0)
	if !n.IsDefaultNumbering {
		t.Fatal("expected node from default abstract to carry IsDefaultNumbering")
	}
	again := ns.resolveAbstract("unknown-num-id")
	if again != an {
		t.Fatal("expected resolveAbstract to cache the synthesized abstract per numId")
	}
}

func TestLetterNumeralRepeats(t *testing.T) {
	if got := letterNumeral(1, true); got != "A" {
		t.Fatalf("got %q, want A", got)
	}
	if got := letterNumeral(26, true); got != "Z" {
		t.Fatalf("got %q, want Z", got)
	}
	if got := letterNumeral(27, true); got != "AA" {
		t.Fatalf("got %q, want AA", got)
	}
}

func TestMedianFontSizeFallsBackToDefault(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	if got := ns.medianFontSize(); got != cfg.DefaultFontSizePt {
		t.Fatalf("got %v, want default %v", got, cfg.DefaultFontSizePt)
	}
	ns.observeFontSize(10)
	ns.observeFontSize(14)
	ns.observeFontSize(12)
	if got := ns.medianFontSize(); got != 12 {
		t.Fatalf("got %v, want 12", got)
	}
}
