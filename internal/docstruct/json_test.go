package docstruct

import (
	"encoding/json"
	"testing"
)

func TestExportJSONContentTypeByDepth(t *testing.T) {
	cfg := DefaultConfig()
	stream := []Element{
		{Paragraph: &Paragraph{RawText: "Название документа", Node: Node{Anchor: "p1", Depth: 1, Source: SourceHeading}}},
		{Paragraph: &Paragraph{RawText: "Подраздел", Node: Node{Anchor: "p2", Depth: 2, Source: SourceBuiltin, Parents: map[int]string{1: "p1"}}}},
		{Paragraph: &Paragraph{RawText: "обычный текст", Node: Node{Anchor: "p3", Depth: 0, Source: SourceNone}}},
	}

	out, err := ExportJSON(stream, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Result   string        `json:"result"`
		Elements []JSONElement `json:"elements"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if decoded.Result != "OK" {
		t.Fatalf("got result %q, want OK", decoded.Result)
	}
	if len(decoded.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(decoded.Elements))
	}
	if decoded.Elements[0].ContentType != "text/title" {
		t.Errorf("got %q, want text/title", decoded.Elements[0].ContentType)
	}
	if decoded.Elements[1].ContentType != "text/subtitle" {
		t.Errorf("got %q, want text/subtitle", decoded.Elements[1].ContentType)
	}
	if len(decoded.Elements[1].Ancestors) != 1 || decoded.Elements[1].Ancestors[0] != "p1" {
		t.Errorf("got ancestors %v, want [p1]", decoded.Elements[1].Ancestors)
	}
	if decoded.Elements[2].ContentType != "text" {
		t.Errorf("got %q, want text", decoded.Elements[2].ContentType)
	}
}

func TestExportJSONDowngradesDefaultNumbering(t *testing.T) {
	cfg := DefaultConfig()
	stream := []Element{
		{Paragraph: &Paragraph{RawText: "абзац с нераспознанной нумерацией", Node: Node{Anchor: "p1", Depth: 3, Source: SourceBuiltin, IsDefaultNumbering: true}}},
	}
	out, err := ExportJSON(stream, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded struct {
		Elements []JSONElement `json:"elements"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if decoded.Elements[0].ContentType != "text" {
		t.Fatalf("got %q, want text for default-numbering node", decoded.Elements[0].ContentType)
	}
}

func TestValidateExportRejectsUnknownContentType(t *testing.T) {
	bad := []byte(`{"result":"OK","elements":[{"anchor":"p1","depth":1,"content_type":"bogus"}]}`)
	if err := ValidateExport(bad); err == nil {
		t.Fatal("expected schema validation to reject an unknown content_type")
	}
}

func TestValidateExportAcceptsWellFormedExport(t *testing.T) {
	good := []byte(`{"result":"OK","elements":[{"anchor":"p1","depth":1,"content_type":"text/title","text":"Введение"}]}`)
	if err := ValidateExport(good); err != nil {
		t.Fatalf("expected well-formed export to validate, got %v", err)
	}
}
