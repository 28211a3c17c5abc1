package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"normaproc/internal/config"
	"normaproc/internal/docstruct"
)

var (
	renderFormat string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render <file.docx>",
	Short: "Render a .docx package to HTML or JSON structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "output format: html or json")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output file (default: stdout)")
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stream, err := docstruct.Convert(f, info.Size(), cm.Get(), docstruct.PassHook)
	if err != nil {
		return fmt.Errorf("convert %s: %w", path, err)
	}

	var output []byte
	switch renderFormat {
	case "html":
		output = []byte(docstruct.RenderHTML(stream, cm.Get()))
	case "json":
		output, err = docstruct.ExportJSON(stream, cm.Get())
		if err != nil {
			return fmt.Errorf("export json: %w", err)
		}
		if verr := docstruct.ValidateExport(output); verr != nil {
			fmt.Fprintf(os.Stderr, "warning: export does not match schema: %v\n", verr)
		}
	default:
		return fmt.Errorf("unknown format %q: must be html or json", renderFormat)
	}

	if renderOut == "" {
		_, err = os.Stdout.Write(output)
		return err
	}
	return os.WriteFile(renderOut, output, 0o644)
}
