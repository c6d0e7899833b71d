package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jywlabs/analyst/internal/extract"
	"github.com/jywlabs/analyst/internal/fallback"
	"github.com/jywlabs/analyst/internal/record"
)

func asRecord(t *testing.T, v any) extract.Record {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	rec, err := extract.Extract(string(data))
	require.NoError(t, err)
	return rec
}

func TestRequiredKeys(t *testing.T) {
	tests := []struct {
		stage record.Stage
		want  []string
	}{
		{record.StagePlan, []string{"problem", "rationale", "subtasks"}},
		{record.StageResearch, []string{"topic", "summary", "key_findings"}},
		{record.StageCritique, []string{"topic", "validation", "critique", "improvements", "overall_quality", "confidence_level", "recommendation"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			got, err := RequiredKeys(tt.stage)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestRequiredKeysUnknownStage(t *testing.T) {
	_, err := RequiredKeys(record.Stage("bogus"))
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestValidateMissingKey(t *testing.T) {
	rec, err := extract.Extract(`{"problem":"p","subtasks":[]}`)
	require.NoError(t, err)

	err = Validate(rec, record.StagePlan)
	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing), "expected MissingKeyError, got %v", err)
	assert.Equal(t, "rationale", missing.Key)
	assert.Contains(t, err.Error(), "rationale")
}

func TestValidatePresenceOnly(t *testing.T) {
	// Research values are not type checked.
	rec, err := extract.Extract(`{"topic":1,"summary":null,"key_findings":"none"}`)
	require.NoError(t, err)
	assert.NoError(t, Validate(rec, record.StageResearch))
}

func TestValidatePlanSubtasks(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"ok", `{"problem":"p","rationale":"r","subtasks":[{"id":1,"task":"a"},{"id":2,"task":"b"}]}`, false},
		{"empty list", `{"problem":"p","rationale":"r","subtasks":[]}`, false},
		{"duplicate id", `{"problem":"p","rationale":"r","subtasks":[{"id":1},{"id":1}]}`, true},
		{"zero id", `{"problem":"p","rationale":"r","subtasks":[{"id":0}]}`, true},
		{"subtasks not a list", `{"problem":"p","rationale":"r","subtasks":"none"}`, true},
		{"null subtasks", `{"problem":"p","rationale":"r","subtasks":null}`, true},
		{"null subtasks with spacing", `{"problem":"p","rationale":"r","subtasks": null }`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := extract.Extract(tt.raw)
			require.NoError(t, err)
			err = Validate(rec, record.StagePlan)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCritiqueRanges(t *testing.T) {
	base := fallback.Critique(record.ResearchResult{Topic: "t"})

	tests := []struct {
		name   string
		mutate func(c *record.Critique)
		field  string
	}{
		{name: "overall too high", mutate: func(c *record.Critique) { c.OverallQuality = 11 }, field: "overall_quality"},
		{name: "completeness zero", mutate: func(c *record.Critique) { c.Validation.CompletenessScore = 0 }, field: "validation.completeness_score"},
		{name: "bad confidence", mutate: func(c *record.Critique) { c.ConfidenceLevel = "certain" }, field: "confidence_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := Validate(asRecord(t, c), record.StageCritique)
			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr), "expected RangeError, got %v", err)
			assert.Equal(t, tt.field, rangeErr.Field)
		})
	}
}

func TestValidateCritiqueWrongType(t *testing.T) {
	rec, err := extract.Extract(`{"topic":"t","validation":{},"critique":{},"improvements":[],"overall_quality":"seven","confidence_level":"low","recommendation":"r"}`)
	require.NoError(t, err)
	assert.Error(t, Validate(rec, record.StageCritique))
}

func TestFallbacksAlwaysValidate(t *testing.T) {
	hits := []record.SearchHit{
		{Title: "A", Snippet: "a", URL: "https://a.example"},
		{Title: "B", Snippet: "b", URL: "https://b.example"},
	}

	cases := []struct {
		name  string
		stage record.Stage
		value any
	}{
		{"plan", record.StagePlan, fallback.Plan("Evaluate X")},
		{"plan empty problem", record.StagePlan, fallback.Plan("")},
		{"empty research", record.StageResearch, fallback.EmptyResearch("topic")},
		{"basic research", record.StageResearch, fallback.BasicResearch("topic", hits)},
		{"basic research no hits", record.StageResearch, fallback.BasicResearch("topic", nil)},
		{"critique", record.StageCritique, fallback.Critique(fallback.EmptyResearch("topic"))},
		{"critique of empty", record.StageCritique, fallback.Critique(record.ResearchResult{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, Validate(asRecord(t, tc.value), tc.stage))
		})
	}
}

func TestForReport(t *testing.T) {
	s, err := For(record.StageReport)
	require.NoError(t, err)
	assert.Contains(t, s.Required, "executive_summary")
}
