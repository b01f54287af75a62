package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

var (
	runFile         string
	runText         string
	runFilename     string
	runContentType  string
	runPayloadFile  string
	runModelVersion string
	runTopK         int
	runOverwrite    bool
	runSkipIndex    bool
	runJSON         bool
)

var runCmd = &cobra.Command{
	Use:   "run [case-id]",
	Short: "Run a case end to end and verify its replay",
	Long: `Runs the whole workflow for one case in a single session:

  1. extract   submit the document text
  2. index     index the extracted document as evidence
  3. underwrite request a decision and load its trace
  4. replay    re-run the request and compare decision, risk score
               and citations with the original

Exit status is 0 when the replay matches, 1 on a replay mismatch and
2 on any other failure.`,
	Example: `  caseflow run case-001 --file paystub.txt
  caseflow run case-001 --text "Borrower has stable income" --payload loan.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "read document text from this file")
	runCmd.Flags().StringVar(&runText, "text", "", "document text")
	runCmd.Flags().StringVar(&runFilename, "filename", "", "file name reported to the service (default: base name of --file)")
	runCmd.Flags().StringVar(&runContentType, "content-type", domain.ContentTypePlainText, "document MIME type")
	runCmd.Flags().StringVarP(&runPayloadFile, "payload", "p", "", "JSON file with the loan payload (default: demo payload)")
	runCmd.Flags().StringVar(&runModelVersion, "model-version", "", "model version (default from settings)")
	runCmd.Flags().IntVar(&runTopK, "top-k", 0, "evidence chunks to retrieve (default from settings)")
	runCmd.Flags().BoolVar(&runOverwrite, "overwrite", false, "replace previously indexed evidence")
	runCmd.Flags().BoolVar(&runSkipIndex, "skip-index", false, "do not index the document")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the run report as JSON")
	runCmd.MarkFlagsMutuallyExclusive("file", "text")
	rootCmd.AddCommand(runCmd)
}

// runReport is the JSON form of a completed run.
type runReport struct {
	CaseID        string                   `json:"case_id"`
	DocumentID    string                   `json:"document_id"`
	IndexedChunks *int                     `json:"indexed_chunks,omitempty"`
	Original      *domain.UnderwriteResult `json:"original"`
	Trace         []domain.TraceNode       `json:"trace"`
	TraceError    string                   `json:"trace_error,omitempty"`
	Replay        *domain.UnderwriteResult `json:"replay"`
	Comparison    domain.ReplayComparison  `json:"comparison"`
}

func runRun(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return errors.New("case workflow not configured")
	}
	caseID := args[0]
	ctx := cmd.Context()

	text, filename, err := runDocument()
	if err != nil {
		return err
	}
	payload, err := loadPayload(runPayloadFile)
	if err != nil {
		return err
	}
	defaults := underwriteDefaults()
	modelVersion := runModelVersion
	if modelVersion == "" {
		modelVersion = defaults.ModelVersion
	}
	topK := runTopK
	if topK <= 0 {
		topK = defaults.TopK
	}

	report := runReport{CaseID: caseID}
	progress := func(format string, a ...any) {
		if !runJSON {
			cmd.Println(outputStyles.Muted.Render(fmt.Sprintf(format, a...)))
		}
	}

	extracted, err := workflowService.Extract(ctx, caseID, filename, runContentType, text)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	report.DocumentID = extracted.DocumentID
	progress("Extracted document %s", extracted.DocumentID)

	if !runSkipIndex {
		indexed, err := workflowService.IndexEvidence(ctx, caseID, runOverwrite)
		if err != nil {
			return fmt.Errorf("index failed: %w", err)
		}
		report.IndexedChunks = &indexed.IndexedChunks
		progress("Indexed %d chunks", indexed.IndexedChunks)
	}

	original, err := workflowService.Underwrite(ctx, caseID, payload, modelVersion, topK)
	if err != nil {
		if original == nil {
			return fmt.Errorf("underwrite failed: %w", err)
		}
		// The decision stands without its trace; replay can still verify it
		report.TraceError = err.Error()
		progress("Trace unavailable: %v", err)
	}
	report.Original = original
	report.Trace = workflowService.Snapshot().Trace
	if report.Trace == nil {
		report.Trace = []domain.TraceNode{}
	}

	outcome, err := workflowService.Replay(ctx, caseID, original.RequestID)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	report.Replay = outcome.Result
	report.Comparison = outcome.Comparison

	if runJSON {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		cmd.Println()
		printDecision(cmd, "Original decision", report.Original)
		printTrace(cmd, report.Trace)
		printDecision(cmd, "Replay decision", report.Replay)
		printComparison(cmd, report.Comparison)
	}

	if !report.Comparison.Pass {
		return ErrReplayMismatch
	}
	return nil
}

// runDocument resolves the document text and reported file name.
func runDocument() (text, filename string, err error) {
	switch {
	case runFile != "":
		data, err := os.ReadFile(runFile)
		if err != nil {
			return "", "", fmt.Errorf("read document: %w", err)
		}
		text = string(data)
		filename = filepath.Base(runFile)
	case runText != "":
		text = runText
		filename = "document.txt"
	default:
		return "", "", errors.New("one of --file or --text is required")
	}
	if runFilename != "" {
		filename = runFilename
	}
	return text, filename, nil
}

// loadPayload reads a loan payload file, or returns the demo payload
// when path is empty.
func loadPayload(path string) (domain.UnderwritePayload, error) {
	if path == "" {
		return domain.DefaultUnderwritePayload(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UnderwritePayload{}, fmt.Errorf("read payload: %w", err)
	}
	payload, err := domain.ParseUnderwritePayload(data)
	if err != nil {
		return domain.UnderwritePayload{}, err
	}
	// Advisory only; the service decides whether to reject it
	if !payload.Occupancy.IsValid() {
		logger.Warn("payload occupancy %q is not one of primary, secondary, investment", payload.Occupancy)
	}
	return payload, nil
}
