package docstruct

import "testing"

func TestClassifyByRegexStripsDigitDotSequence(t *testing.T) {
	prefix, depth, ok := classifyByRegex("1.2.3 Общие требования", true)
	if !ok {
		t.Fatal("expected match")
	}
	if prefix != "1.2.3" || depth != 3 {
		t.Fatalf("got prefix=%q depth=%d, want 1.2.3/3", prefix, depth)
	}
}

func TestClassifyByRegexRejectsBareDepthOneWithoutHeadingStyle(t *testing.T) {
	_, _, ok := classifyByRegex("1. просто предложение в списке", false)
	if ok {
		t.Fatal("expected depth-1 numbering without heading styling to be rejected")
	}
}

func TestClassifyByRegexRejectsDashLikeRemainder(t *testing.T) {
	_, _, ok := classifyByRegex("1.2 - не заголовок", true)
	if ok {
		t.Fatal("expected dash-like remainder to be rejected")
	}
}

func TestAppendixMarker(t *testing.T) {
	line, ok := appendixMarker("Приложение А")
	if !ok || line != "Приложение А" {
		t.Fatalf("got (%q, %v), want (Приложение А, true)", line, ok)
	}
	_, ok = appendixMarker("Приложение с очень длинным заголовком, который не должен проходить по длине")
	if ok {
		t.Fatal("expected over-length appendix text to be rejected")
	}
}

func TestIsHeadingStyleName(t *testing.T) {
	cases := map[string]bool{
		"Heading 1": true,
		"heading2":  true,
		"Title":     true,
		"Normal":    false,
		"":          false,
	}
	for name, want := range cases {
		if got := isHeadingStyleName(name); got != want {
			t.Errorf("isHeadingStyleName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestClassifyParagraphMetadataDemotesUnstyledDepthOne(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	an := &AbstractNum{
		ID:       "a1",
		Levels:   map[int]LevelFormat{0: {Start: 1, NumFmt: "decimal", LvlText: "%1."}},
		Counters: map[int]int{},
	}
	ns.abstracts["n1"] = an
	ns.numIDToAbs["1"] = "n1"

	p := &Paragraph{
		RawText:  "обычный пункт списка без акцента",
		RawNumID: "1",
		RawIlvl:  "0",
	}
	node := classifyParagraph(p, ns)
	if node.Depth != 0 {
		t.Fatalf("expected unstyled depth-1 numbering to demote to 0, got %d", node.Depth)
	}
}

func TestClassifyParagraphHeadingStyleRequiresPlausibleText(t *testing.T) {
	cfg := DefaultConfig()
	ns := NewNumberingState(cfg)
	p := &Paragraph{RawText: "Ок", StyleName: "Heading 1", BoldFraction: 1}
	node := classifyParagraph(p, ns)
	if node.Source != SourceNone {
		t.Fatalf("expected too-short heading text to be rejected, got source %v", node.Source)
	}
}
