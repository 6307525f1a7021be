package tools

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyenthenguyen/docx"
)

//go:embed templates/blank.docx
var blankDocxTemplate []byte

// WordProcessorTool backs the WRITE_DOCUMENT action: it fills a minimal
// docx template's title/author/content placeholders and writes the result
// under Document/<title>.docx.
type WordProcessorTool struct {
	outputDir string
}

// NewWordProcessorTool constructs a WordProcessorTool writing artifacts
// under outputDir/Document.
func NewWordProcessorTool(outputDir string) *WordProcessorTool {
	if outputDir == "" {
		outputDir = "."
	}
	return &WordProcessorTool{outputDir: outputDir}
}

func (t *WordProcessorTool) Name() string                  { return "word_processor" }
func (t *WordProcessorTool) Description() string           { return "Write a titled document to a .docx file" }
func (t *WordProcessorTool) ActionType() string             { return "WRITE_DOCUMENT" }
func (t *WordProcessorTool) Claims(actionType string) bool { return actionType == "WRITE_DOCUMENT" }

func (t *WordProcessorTool) Execute(ctx context.Context, args map[string]any) (Result, error) {
	title, _ := args["title"].(string)
	content, _ := args["content"].(string)
	author, _ := args["author"].(string)
	if title == "" {
		err := fmt.Errorf("title is required")
		return errorResult(t.Name(), err.Error(), err)
	}

	tmpFile, err := os.CreateTemp("", "word-processor-template-*.docx")
	if err != nil {
		return errorResult(t.Name(), "staging template", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.Write(blankDocxTemplate); err != nil {
		tmpFile.Close()
		return errorResult(t.Name(), "staging template", err)
	}
	tmpFile.Close()

	reader, err := docx.ReadDocxFile(tmpFile.Name())
	if err != nil {
		return errorResult(t.Name(), "opening docx template", err)
	}
	defer reader.Close()

	doc := reader.Editable()
	doc.Replace("{{TITLE}}", title, -1)
	doc.Replace("{{AUTHOR}}", author, -1)
	doc.Replace("{{CONTENT}}", content, -1)

	dir := filepath.Join(t.outputDir, "Document")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errorResult(t.Name(), "creating output directory", err)
	}
	outPath := filepath.Join(dir, title+".docx")
	if err := doc.WriteToFile(outPath); err != nil {
		return errorResult(t.Name(), "writing docx", err)
	}

	return okResult(t.Name(), fmt.Sprintf("wrote %s", outPath), map[string]any{"path": outPath, "title": title})
}

var _ Tool = (*WordProcessorTool)(nil)
