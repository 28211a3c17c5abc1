package docstruct

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExportSchema is the JSON Schema validated against the output of
// ExportJSON via santhosh-tekuri/jsonschema, per the external interface.
const ExportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["result", "elements"],
  "properties": {
    "result": {"type": "string"},
    "traceback": {"type": "string"},
    "elements": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["anchor", "depth", "content_type"],
        "properties": {
          "anchor": {"type": "string"},
          "depth": {"type": "integer"},
          "content_type": {"type": "string", "enum": ["text/title", "text/subtitle", "text", "table"]},
          "text": {"type": "string"},
          "ancestors": {"type": "array", "items": {"type": "string"}},
          "table": {"type": "object"}
        }
      }
    }
  }
}`

// JSONElement is one entry of the ordered export list (§4.6).
type JSONElement struct {
	Anchor      string           `json:"anchor"`
	Depth       int              `json:"depth"`
	ContentType string           `json:"content_type"`
	Text        string           `json:"text,omitempty"`
	Ancestors   []string         `json:"ancestors,omitempty"`
	Table       *JSONTable       `json:"table,omitempty"`
}

// JSONTable is the computed table content record (§4.6).
type JSONTable struct {
	Title        string          `json:"title"`
	ContentXLeft int             `json:"content_x_left"`
	ContentYTop  int             `json:"content_y_top"`
	Rows         []JSONTableRow  `json:"rows"`
}

// JSONTableRow groups cells sharing (row, sub-title-row, sub-title-col).
type JSONTableRow struct {
	Row          int      `json:"row"`
	SubTitleRow  bool     `json:"sub_title_row"`
	SubTitleCol  bool     `json:"sub_title_col"`
	Cells        []string `json:"cells"`
}

// ExportJSON implements §4.6. A panic during serialization is recovered
// and reported as a DownstreamSerializationFailure envelope rather than
// propagating, per the error-handling design.
func ExportJSON(stream []Element, cfg *Config) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			failed := FailedExport{Result: "Failed", Traceback: fmt.Sprintf("%v", r)}
			out, err = json.Marshal(failed)
		}
	}()

	anchorIndex := buildAnchorIndex(stream)

	elements := make([]JSONElement, 0, len(stream))
	for _, el := range stream {
		switch {
		case el.Paragraph != nil:
			p := el.Paragraph
			if p.Node.Source == SourceRoot {
				continue
			}
			if strings.TrimSpace(p.RawText) == "" {
				continue
			}
			elements = append(elements, JSONElement{
				Anchor:      p.Node.Anchor,
				Depth:       p.Node.Depth,
				ContentType: paragraphContentType(p),
				Text:        paragraphExportText(p),
				Ancestors:   ancestorChain(p.Node, anchorIndex),
			})
		case el.Table != nil:
			t := el.Table
			elements = append(elements, JSONElement{
				Anchor:      t.Node.Anchor,
				Depth:       t.Node.Depth,
				ContentType: "table",
				Ancestors:   ancestorChain(t.Node, anchorIndex),
				Table:       buildTableRecord(t),
			})
		}
	}

	envelope := struct {
		Result   string        `json:"result"`
		Elements []JSONElement `json:"elements"`
	}{Result: "OK", Elements: elements}

	return json.Marshal(envelope)
}

func paragraphContentType(p *Paragraph) string {
	if p.Node.IsDefaultNumbering {
		return "text"
	}
	switch p.Node.Depth {
	case 1:
		return "text/title"
	case 0:
		return "text"
	default:
		return "text/subtitle"
	}
}

func paragraphExportText(p *Paragraph) string {
	text := strings.TrimSpace(p.RawText)
	if paragraphPrefixShown(p.Node) {
		return strings.TrimSpace(p.Node.Prefix + " " + text)
	}
	return text
}

// buildAnchorIndex maps every anchor to its owning Node, for ancestor
// lookups that need a node's own Parents map plus its own anchor.
func buildAnchorIndex(stream []Element) map[string]Node {
	idx := map[string]Node{}
	for _, el := range stream {
		if el.Paragraph != nil && el.Paragraph.Node.Anchor != "" {
			idx[el.Paragraph.Node.Anchor] = el.Paragraph.Node
		}
		if el.Table != nil && el.Table.Node.Anchor != "" {
			idx[el.Table.Node.Anchor] = el.Table.Node
		}
	}
	return idx
}

// ancestorChain orders a node's Parents map by depth into an anchor list,
// walking the breadcrumb recorded at stream-build time.
func ancestorChain(n Node, anchorIndex map[string]Node) []string {
	depths := make([]int, 0, len(n.Parents))
	for d := range n.Parents {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	chain := make([]string, 0, len(depths))
	for _, d := range depths {
		if a := n.Parents[d]; a != "" {
			chain = append(chain, a)
		}
	}
	return chain
}

// buildTableRecord computes the table content record, including per-row
// grouping by (row, sub-title-row, sub-title-col) as described in §4.6.
func buildTableRecord(t *Table) *JSONTable {
	rec := &JSONTable{
		Title:        t.Node.Prefix,
		ContentXLeft: t.TextColStart,
		ContentYTop:  t.TextRowStart,
	}

	type key struct {
		row         int
		subTitleRow bool
		subTitleCol bool
	}
	order := []key{}
	groups := map[key][]string{}

	for y, row := range t.Rows {
		subTitleRow := y == t.TextRowStart
		for _, c := range row {
			subTitleCol := c.X == t.TextColStart
			k := key{row: y, subTitleRow: subTitleRow, subTitleCol: subTitleCol}
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], cellText(c))
		}
	}

	for _, k := range order {
		rec.Rows = append(rec.Rows, JSONTableRow{
			Row:         k.row,
			SubTitleRow: k.subTitleRow,
			SubTitleCol: k.subTitleCol,
			Cells:       groups[k],
		})
	}
	return rec
}

// ValidateExport checks a previously-produced ExportJSON document against
// ExportSchema, for callers (the HTTP handler, docstructctl) that want to
// reject a malformed export before serving it.
func ValidateExport(exported []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("export.json", bytes.NewReader([]byte(ExportSchema))); err != nil {
		return fmt.Errorf("failed to load export schema: %w", err)
	}
	schema, err := compiler.Compile("export.json")
	if err != nil {
		return fmt.Errorf("failed to compile export schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(exported, &doc); err != nil {
		return fmt.Errorf("failed to decode export for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("export does not match schema: %w", err)
	}
	return nil
}
