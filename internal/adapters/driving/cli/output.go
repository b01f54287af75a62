package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

var outputStyles = styles.DefaultStyles()

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(outputStyles.Muted).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return outputStyles.Subtitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func printDecision(cmd *cobra.Command, title string, r *domain.UnderwriteResult) {
	s := outputStyles
	cmd.Println(s.Title.Render(title))
	cmd.Println(s.Row("Decision", s.Decision(r.Decision).Render(r.Decision)))
	cmd.Println(s.Row("Risk score", r.RiskScore.String()))
	cmd.Println(s.Row("Request ID", r.RequestID))
	if r.Policy.PolicyID != "" {
		cmd.Println(s.Row("Policy", fmt.Sprintf("%s (%s)", r.Policy.PolicyID, r.Policy.Decision)))
	}
	for _, reason := range r.Policy.Reasons {
		cmd.Println(s.Row("", "- "+reason))
	}
	if r.Justification.Summary != "" {
		cmd.Println(s.Row("Summary", r.Justification.Summary))
	}
	if len(r.Justification.Citations) > 0 {
		t := newTable("#", "DOCUMENT", "CHUNK", "SPAN", "SCORE")
		for i, c := range r.Justification.Citations {
			t.Row(fmt.Sprint(i+1), c.DocumentID, c.ChunkID,
				fmt.Sprintf("%d-%d", c.StartChar, c.EndChar), fmt.Sprintf("%.3f", c.Score))
		}
		cmd.Println(t.String())
	}
	cmd.Println()
}

func printTrace(cmd *cobra.Command, nodes []domain.TraceNode) {
	s := outputStyles
	cmd.Println(s.Title.Render(fmt.Sprintf("Trace (%d nodes)", len(nodes))))
	if len(nodes) == 0 {
		cmd.Println(s.Muted.Render("  no trace nodes"))
		cmd.Println()
		return
	}
	t := newTable("#", "NODE", "DURATION (ms)")
	var total float64
	for i, n := range nodes {
		total += n.DurationMS
		t.Row(fmt.Sprint(i+1), n.NodeName, fmt.Sprintf("%.1f", n.DurationMS))
	}
	cmd.Println(t.String())
	cmd.Println(s.Row("Total", fmt.Sprintf("%.1f ms", total)))
	cmd.Println()
}

func printComparison(cmd *cobra.Command, c domain.ReplayComparison) {
	s := outputStyles
	cmd.Println(s.Verdict(c.Pass) + " " + c.Message)
	if len(c.Mismatches) == 0 {
		return
	}
	t := newTable("FIELD", "ORIGINAL", "REPLAY")
	for _, m := range c.Mismatches {
		t.Row(m.Field, m.Original, m.Replay)
	}
	cmd.Println(t.String())
}

func printHistory(cmd *cobra.Command, records []domain.VerificationRecord) {
	if len(records) == 0 {
		cmd.Println("No verifications recorded.")
		return
	}
	t := newTable("ID", "CASE", "REQUEST", "MODEL", "RESULT", "MISMATCHES", "WHEN")
	for i := range records {
		r := &records[i]
		result := "pass"
		if !r.Pass {
			result = "MISMATCH"
		}
		fields := make([]string, len(r.Mismatches))
		for j, m := range r.Mismatches {
			fields[j] = m.Field
		}
		t.Row(shortID(r.ID), r.CaseID, r.RequestID, r.ModelVersion, result,
			strings.Join(fields, ","), r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	cmd.Println(t.String())
}

func printRecord(cmd *cobra.Command, r *domain.VerificationRecord) {
	s := outputStyles
	cmd.Println(s.Title.Render("Verification " + r.ID))
	cmd.Println(s.Row("Case", r.CaseID))
	cmd.Println(s.Row("Request ID", r.RequestID))
	cmd.Println(s.Row("Model", r.ModelVersion))
	cmd.Println(s.Row("Recorded", r.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	cmd.Println(s.Row("Decision", fmt.Sprintf("%s -> %s", r.OriginalDecision, r.ReplayDecision)))
	cmd.Println(s.Row("Risk score", fmt.Sprintf("%s -> %s", r.OriginalRiskScore, r.ReplayRiskScore)))
	if r.OriginalFingerprint != "" {
		cmd.Println(s.Row("Fingerprints", fmt.Sprintf("%s / %s",
			shortID(r.OriginalFingerprint), shortID(r.ReplayFingerprint))))
	}
	printComparison(cmd, domain.ReplayComparison{Pass: r.Pass, Message: r.Message, Mismatches: r.Mismatches})
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
