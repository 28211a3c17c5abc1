package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"normaproc/internal/config"
	"normaproc/internal/database"
	"normaproc/internal/docstruct"
)

var structureConfig *config.Manager

// InitStructureConfig loads the docstruct engine config once at startup
// and enables hot-reload, mirroring database.InitDB's package-level init.
func InitStructureConfig(cfgFile string) error {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	cm.WatchConfig()
	structureConfig = cm
	return nil
}

func currentDocstructConfig() *docstruct.Config {
	if structureConfig == nil {
		return docstruct.DefaultConfig()
	}
	return structureConfig.Get()
}

// structureEnvelope is what gets persisted into check_results.content_json
// for a structure extraction: both serializations side by side so the two
// GET endpoints can each answer from the same row.
type structureEnvelope struct {
	HTML           string          `json:"html"`
	JSON           json.RawMessage `json:"elements_json"`
	SourceFilename string          `json:"source_filename"`
}

// decodeUTF8Text strips a leading UTF-8 BOM and re-validates encoding on a
// client-supplied string before it is stored or rendered, for filenames
// coming from browsers on Windows that sometimes prepend one.
func decodeUTF8Text(s string) string {
	reader := transform.NewReader(strings.NewReader(s), xunicode.UTF8.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return s
	}
	return string(decoded)
}

// UploadAndExtractStructure runs the document structure engine over an
// uploaded .docx and persists both serializations onto check_results.
func UploadAndExtractStructure(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open upload"})
		return
	}
	defer f.Close()

	tmp, err := os.CreateTemp("", "docstruct-*.docx")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to buffer upload"})
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to buffer upload"})
		return
	}
	info, err := tmp.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stat upload"})
		return
	}

	cfg := currentDocstructConfig()
	stream, err := docstruct.Convert(tmp, info.Size(), cfg, docstruct.PassHook)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Structure extraction failed: %v", err)})
		return
	}

	htmlOut := docstruct.RenderHTML(stream, cfg)
	jsonOut, err := docstruct.ExportJSON(stream, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize structure"})
		return
	}
	if err := docstruct.ValidateExport(jsonOut); err != nil {
		fmt.Printf("UploadAndExtractStructure: export failed schema validation: %v\n", err)
	}

	envelope := structureEnvelope{HTML: htmlOut, JSON: jsonOut, SourceFilename: decodeUTF8Text(file.Filename)}
	envelopeBytes, _ := json.Marshal(envelope)

	documentID := c.PostForm("document_id")
	if documentID != "" {
		_, err = database.DB.Exec("UPDATE check_results SET content_json = ? WHERE document_id = ?", string(envelopeBytes), documentID)
		if err != nil {
			fmt.Printf("UploadAndExtractStructure: DB Error updating content_json: %v\n", err)
		}
	}

	c.Data(http.StatusOK, "application/json", envelopeBytes)
}

func loadStructureEnvelope(id string) (*structureEnvelope, error) {
	var contentJSON string
	if err := database.DB.QueryRow("SELECT content_json FROM check_results WHERE id = ?", id).Scan(&contentJSON); err != nil {
		return nil, err
	}
	var env structureEnvelope
	if err := json.Unmarshal([]byte(contentJSON), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// GetStructureHTML re-serves the HTML rendering stored for a check result.
func GetStructureHTML(c *gin.Context) {
	env, err := loadStructureEnvelope(c.Param("id"))
	if err != nil || env.HTML == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No structure found for this result"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(env.HTML))
}

// GetStructureJSON re-serves the JSON element list stored for a check result.
func GetStructureJSON(c *gin.Context) {
	env, err := loadStructureEnvelope(c.Param("id"))
	if err != nil || len(env.JSON) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No structure found for this result"})
		return
	}
	c.Data(http.StatusOK, "application/json", env.JSON)
}
