package domain

// Content types accepted by the extraction service.
const (
	ContentTypePlainText = "text/plain"
)

// Document is a file submitted for extraction.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ContentB64  string `json:"content_b64"`
}

// ExtractResult is the outcome of a successful extraction.
// DocumentID is owned by the remote service.
type ExtractResult struct {
	CaseID     string `json:"case_id"`
	DocumentID string `json:"document_id"`
	RequestID  string `json:"request_id"`
}

// IndexResult is the status signal returned by evidence indexing.
// Nothing in it is retained by the workflow.
type IndexResult struct {
	CaseID        string `json:"case_id"`
	IndexedChunks int    `json:"indexed_chunks"`
	RequestID     string `json:"request_id"`
}
