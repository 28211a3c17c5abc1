package docstruct

import (
	"strings"
	"unicode/utf8"
)

// isPlausibleNumeration and isPlausibleHeading stand in for the opaque ML
// text classifiers spec.md treats as external predicates. Per §9's design
// note, a deterministic rule is an acceptable substitute and tests must
// not depend on a specific model: both reject degenerate strings (too
// short, no letters) and otherwise accept.

func isPlausibleNumeration(text string) bool {
	return hasMinimalContent(text)
}

func isPlausibleHeading(text string) bool {
	return hasMinimalContent(text)
}

func hasMinimalContent(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= 3 {
		return false
	}
	for _, r := range trimmed {
		if isLetter(r) {
			return true
		}
	}
	return false
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}

// isHeadingStyled implements §4.2's typographic gate is_heading_styled.
func isHeadingStyled(p *Paragraph, ns *NumberingState) bool {
	lower := strings.ToLower(strings.TrimSpace(p.RawText))
	if strings.HasPrefix(lower, "таблица") || strings.HasPrefix(lower, "рисунок") {
		return false
	}
	if isBoldStyled(p, ns.cfg) {
		return true
	}
	return p.MaxFontSize > ns.medianFontSize()
}

// isBoldStyled: style font-bold true OR bold_fraction exceeds the
// configured threshold.
func isBoldStyled(p *Paragraph, cfg *Config) bool {
	return p.BoldFraction > cfg.BoldRunsThreshold
}

var dashLikeChars = []rune{')', ':', '-', '–', '—', '−'}

func startsWithDashLike(s string) bool {
	trimmed := strings.TrimLeft(s, " \t")
	if trimmed == "" {
		return false
	}
	first := []rune(trimmed)[0]
	for _, d := range dashLikeChars {
		if first == d {
			return true
		}
	}
	return false
}
