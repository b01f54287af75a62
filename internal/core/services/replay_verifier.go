package services

import (
	"slices"
	"strings"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// VerifyReplay compares an original underwrite result with its replay.
//
// The replay passes when the decision matches, the risk scores are
// numerically equal, and the citation chunk ids match element by element
// in the order returned. Risk scores are compared exactly; a score that
// does not coerce to a number never matches. Nil inputs fail.
func VerifyReplay(original, replay *domain.UnderwriteResult) domain.ReplayComparison {
	if original == nil || replay == nil {
		return domain.ReplayComparison{Pass: false, Message: domain.ReplayMismatchMessage}
	}

	var mismatches []domain.Mismatch

	if original.Decision != replay.Decision {
		mismatches = append(mismatches, domain.Mismatch{
			Field:    domain.FieldDecision,
			Original: original.Decision,
			Replay:   replay.Decision,
		})
	}

	if !riskScoresEqual(original.RiskScore, replay.RiskScore) {
		mismatches = append(mismatches, domain.Mismatch{
			Field:    domain.FieldRiskScore,
			Original: original.RiskScore.String(),
			Replay:   replay.RiskScore.String(),
		})
	}

	origChunks := original.CitationChunkIDs()
	replayChunks := replay.CitationChunkIDs()
	if !slices.Equal(origChunks, replayChunks) {
		mismatches = append(mismatches, domain.Mismatch{
			Field:    domain.FieldCitations,
			Original: strings.Join(origChunks, ","),
			Replay:   strings.Join(replayChunks, ","),
		})
	}

	if len(mismatches) > 0 {
		return domain.ReplayComparison{
			Pass:       false,
			Message:    domain.ReplayMismatchMessage,
			Mismatches: mismatches,
		}
	}
	return domain.ReplayComparison{Pass: true, Message: domain.ReplayPassMessage}
}

func riskScoresEqual(a, b domain.Number) bool {
	fa, ok := a.Float()
	if !ok {
		return false
	}
	fb, ok := b.Float()
	if !ok {
		return false
	}
	return fa == fb
}
