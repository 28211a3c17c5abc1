package docstruct

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"normaproc/internal/ooxml"
)

// LevelFormat is one abstract-numbering level's template.
type LevelFormat struct {
	Start   int
	NumFmt  string
	LvlText string
}

// AbstractNum is a reusable numbering template plus its live counters.
type AbstractNum struct {
	ID       string
	Levels   map[int]LevelFormat
	Counters map[int]int
	// Default marks the synthesized 9-level decimal template created on
	// demand for an unknown numId (§4.1); such numbers are downgraded to
	// body text at JSON-export time (§8 boundary case).
	Default bool
}

type styleLink struct {
	AbsID string
	Level int
}

// NumberingState is the numbering classifier's mutable state: the
// abstract-num registry, the numId/style indirections, and the rolling
// font-size sample used by the typographic plausibility gate. It lives
// for exactly one document conversion.
type NumberingState struct {
	cfg        *Config
	abstracts  map[string]*AbstractNum
	numIDToAbs map[string]string
	styleLink  map[string]styleLink
	fontSizes  []float64
}

func NewNumberingState(cfg *Config) *NumberingState {
	return &NumberingState{
		cfg:        cfg,
		abstracts:  map[string]*AbstractNum{},
		numIDToAbs: map[string]string{},
		styleLink:  map[string]styleLink{},
	}
}

// LoadFromOOXML populates the registry from the numbering and styles
// parts. Either argument may be nil (MissingOptionalPart): the registry
// is simply left empty for that source.
func (ns *NumberingState) LoadFromOOXML(numbering *ooxml.Numbering, styles *ooxml.Styles) {
	if numbering != nil {
		for _, an := range numbering.AbstractNums {
			levels := map[int]LevelFormat{}
			for _, lvl := range an.Lvls {
				ilvl, err := strconv.Atoi(lvl.Ilvl)
				if err != nil {
					continue
				}
				start, err := strconv.Atoi(lvl.Start.Val)
				if err != nil {
					start = 1
				}
				levels[ilvl] = LevelFormat{
					Start:   start,
					NumFmt:  orDefault(lvl.NumFmt.Val, "decimal"),
					LvlText: lvl.LvlText.Val,
				}
			}
			ns.abstracts[an.AbstractNumId] = &AbstractNum{
				ID:       an.AbstractNumId,
				Levels:   levels,
				Counters: map[int]int{},
			}
		}
		for _, n := range numbering.Nums {
			ns.numIDToAbs[n.NumId] = n.AbstractNumId.Val
		}
	}

	if styles != nil {
		for _, st := range styles.Styles {
			if st.PPr == nil || st.PPr.NumPr == nil {
				continue
			}
			numPr := st.PPr.NumPr
			if numPr.NumId == nil {
				continue
			}
			absID, ok := ns.numIDToAbs[numPr.NumId.Val]
			if !ok {
				continue
			}
			level := 0
			if numPr.Ilvl != nil {
				if v, err := strconv.Atoi(numPr.Ilvl.Val); err == nil {
					level = v
				}
			}
			ns.styleLink[st.StyleId] = styleLink{AbsID: absID, Level: level}
		}
	}
}

// resolveAbstract returns the AbstractNum for a raw numId, synthesizing
// the default 9-level decimal template (with a fresh synthetic id) the
// first time an unknown numId is seen.
func (ns *NumberingState) resolveAbstract(numID string) *AbstractNum {
	if absID, ok := ns.numIDToAbs[numID]; ok {
		if an, ok := ns.abstracts[absID]; ok {
			return an
		}
	}
	return ns.synthesizeDefault(numID)
}

func (ns *NumberingState) synthesizeDefault(numID string) *AbstractNum {
	key := "default:" + numID
	if an, ok := ns.abstracts[key]; ok {
		return an
	}
	synthID := uuid.NewString()
	levels := map[int]LevelFormat{}
	for i := 0; i < ns.cfg.DefaultNumberingLevels; i++ {
		levels[i] = LevelFormat{Start: 1, NumFmt: "decimal", LvlText: defaultLvlText(i)}
	}
	an := &AbstractNum{ID: synthID, Levels: levels, Counters: map[int]int{}, Default: true}
	ns.abstracts[key] = an
	return an
}

// defaultLvlText builds "default %1.%2. ... %(i+1)." — the synthesized
// template carries the literal sentinel word "default" so a downstream
// consumer can recognize an unresolved numId in the rendered prefix.
func defaultLvlText(i int) string {
	s := "default "
	for j := 1; j <= i+1; j++ {
		s += fmt.Sprintf("%%%d.", j)
	}
	return s
}

// CountBuiltin implements §4.1 operation count_builtin(absId, level).
func (ns *NumberingState) CountBuiltin(an *AbstractNum, level int) Node {
	an.Counters[level]++
	for k := range an.Counters {
		if k > level {
			an.Counters[k] = 0
		}
	}

	fmtLevel, ok := an.Levels[level]
	if !ok {
		fmtLevel = LevelFormat{Start: 1, NumFmt: "decimal", LvlText: defaultLvlText(level)}
	}

	prefix, substituted := renderLvlText(an, fmtLevel.LvlText, level)

	return Node{
		Prefix:             prefix,
		Depth:              substituted,
		Source:             SourceBuiltin,
		IsDefaultNumbering: an.Default,
	}
}

// renderLvlText substitutes every %j placeholder (j <= level+1) using
// level j-1's own counter, start value and numbering format.
func renderLvlText(an *AbstractNum, tmpl string, level int) (string, int) {
	out := []rune{}
	substituted := 0
	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' && i+1 < len(runes) && runes[i+1] >= '1' && runes[i+1] <= '9' {
			j := int(runes[i+1] - '0')
			if j <= level+1 {
				lvl, ok := an.Levels[j-1]
				if !ok {
					lvl = LevelFormat{Start: 1, NumFmt: "decimal"}
				}
				value := an.Counters[j-1] + lvl.Start - 1
				if value < lvl.Start {
					value = lvl.Start
				}
				out = append(out, []rune(formatNumeral(value, lvl.NumFmt))...)
				substituted++
				i++
				continue
			}
		}
		out = append(out, runes[i])
	}
	return string(out), substituted
}

func formatNumeral(value int, numFmt string) string {
	switch numFmt {
	case "upperLetter":
		return letterNumeral(value, true)
	case "lowerLetter":
		return letterNumeral(value, false)
	case "upperRoman":
		return romanNumeral(value)
	case "lowerRoman":
		return lowerString(romanNumeral(value))
	default:
		return strconv.Itoa(value)
	}
}

func lowerString(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// letterNumeral follows Word's list-numbering convention: A..Z, then
// AA..ZZ, then AAA..ZZZ, not spreadsheet-style AA/AB/AC.
func letterNumeral(n int, upper bool) string {
	if n < 1 {
		n = 1
	}
	repeat := (n-1)/26 + 1
	idx := (n - 1) % 26
	letter := byte('A' + idx)
	if !upper {
		letter = byte('a' + idx)
	}
	out := make([]byte, repeat)
	for i := range out {
		out[i] = letter
	}
	return string(out)
}

// romanNumeral converts 1..3999 to an uppercase Roman numeral.
func romanNumeral(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	out := ""
	for i, v := range vals {
		for n >= v {
			out += syms[i]
			n -= v
		}
	}
	return out
}

// observeFontSize feeds the rolling sample used by the typographic
// plausibility gate.
func (ns *NumberingState) observeFontSize(size float64) {
	if size > 0 {
		ns.fontSizes = append(ns.fontSizes, size)
	}
}

// medianFontSize returns the running median of observed font sizes, or
// the configured default when no sample has been collected yet.
func (ns *NumberingState) medianFontSize() float64 {
	if len(ns.fontSizes) == 0 {
		return ns.cfg.DefaultFontSizePt
	}
	sorted := append([]float64(nil), ns.fontSizes...)
	insertionSortFloat64(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func insertionSortFloat64(s []float64) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
