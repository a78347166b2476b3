package classifierengines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier_MatchesFirstCandidate(t *testing.T) {
	kc := NewKeywordClassifier([]string{"complaint", "question", "other"})

	outcome, err := kc.Classify(context.Background(), "", "", "I have a QUESTION about checkout")
	require.NoError(t, err)
	assert.Equal(t, "question", outcome)
}

func TestKeywordClassifier_NoMatchReturnsEmpty(t *testing.T) {
	kc := NewKeywordClassifier([]string{"complaint", "question"})

	outcome, err := kc.Classify(context.Background(), "", "", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "", outcome)
}

func TestKeywordClassifier_IgnoresBlankCandidates(t *testing.T) {
	kc := NewKeywordClassifier([]string{"", "  ", "Complaint"})

	outcome, err := kc.Classify(context.Background(), "", "", "this is a complaint!")
	require.NoError(t, err)
	assert.Equal(t, "complaint", outcome)
}

func TestNormalizeOutcome(t *testing.T) {
	assert.Equal(t, "complaint", normalizeOutcome("Complaint"))
	assert.Equal(t, "question", normalizeOutcome("\"Question\".\nExtra reasoning here"))
	assert.Equal(t, "other", normalizeOutcome("  other  "))
}
