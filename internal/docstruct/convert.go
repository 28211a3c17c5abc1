package docstruct

import (
	"io"

	"normaproc/internal/ooxml"
)

// Convert runs the full engine over an opened .docx package: numbering
// state construction, the document walk, and the hook pass. It is the
// single entry point both the HTTP handler and the CLI call.
func Convert(r io.ReaderAt, size int64, cfg *Config, hook PostProcessHook) ([]Element, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	pkg, err := ooxml.Open(r, size)
	if err != nil {
		return nil, err
	}

	ns := NewNumberingState(cfg)
	ns.LoadFromOOXML(pkg.Numbering, pkg.Styles)
	styles := buildStyleIndex(pkg.Styles)

	pageW, pageH := cfg.DefaultPageWidth, cfg.DefaultPageHeight
	if pkg.Document != nil && pkg.Document.Body != nil && pkg.Document.Body.SectPr != nil {
		if pgSz := pkg.Document.Body.SectPr.PgSz; pgSz != nil {
			if w := atoiOr(pgSz.W, pageW); w > 0 {
				pageW = w
			}
			if h := atoiOr(pgSz.H, pageH); h > 0 {
				pageH = h
			}
		}
	}

	w := NewWalker(cfg, ns, styles, pageW, pageH, hook)
	if pkg.Document != nil && pkg.Document.Body != nil {
		w.Walk(pkg.Document.Body)
	}
	return w.Stream(), nil
}

func atoiOr(s string, def int) int {
	n := 0
	neg := false
	if s == "" {
		return def
	}
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n
}
