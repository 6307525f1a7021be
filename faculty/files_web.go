package faculty

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadirpekel/troupe/agent"
	"github.com/kadirpekel/troupe/memory"
)

// Action kinds FilesAndWebGrounding handles.
const (
	ActionListDocuments memory.ActionKind = "LIST_DOCUMENTS"
	ActionConsult       memory.ActionKind = "CONSULT"
)

// FilesAndWebGrounding lets an agent enumerate and read back the
// documents and web pages ingested into its semantic memory.
type FilesAndWebGrounding struct{}

func NewFilesAndWebGrounding() *FilesAndWebGrounding { return &FilesAndWebGrounding{} }

func (f *FilesAndWebGrounding) Name() string { return "files_and_web_grounding" }

func (f *FilesAndWebGrounding) ProcessAction(ctx context.Context, host agent.ActionHost, action memory.Action) (bool, error) {
	switch action.Type {
	case ActionListDocuments:
		sem := host.SemanticMemory()
		if sem == nil {
			return true, host.Think("No documents are available: no semantic memory is configured.")
		}
		names := sem.ListDocumentsNames()
		if len(names) == 0 {
			return true, host.Think("No documents have been ingested yet.")
		}
		return true, host.Think("Known documents: " + strings.Join(names, ", "))

	case ActionConsult:
		sem := host.SemanticMemory()
		name := action.ContentString()
		if sem == nil {
			return true, host.Think(fmt.Sprintf("Cannot consult %q: no semantic memory is configured.", name))
		}
		text, ok := sem.RetrieveDocumentContentByName(name)
		if !ok {
			return true, host.Think(fmt.Sprintf("No document named %q was found.", name))
		}
		return true, host.Think(fmt.Sprintf("Contents of %q:\n%s", name, text))

	default:
		return false, nil
	}
}

func (f *FilesAndWebGrounding) ActionsDefinitionsPrompt() string {
	return `- LIST_DOCUMENTS: list the names of every ingested document or web page. content is ignored.
- CONSULT: read back a bounded prefix of a named document's contents. content = the document name.`
}

func (f *FilesAndWebGrounding) ActionsConstraintsPrompt() string {
	return `- Use LIST_DOCUMENTS before CONSULT if you don't already know a document's exact name.`
}

var _ agent.Faculty = (*FilesAndWebGrounding)(nil)
