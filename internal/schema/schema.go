// Package schema describes and checks the records produced by each stage.
package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/jywlabs/analyst/internal/extract"
	"github.com/jywlabs/analyst/internal/record"
)

// ErrUnknownStage is returned for a stage with no registered record type.
var ErrUnknownStage = errors.New("unknown stage")

// MissingKeyError reports a required top-level key absent from a record.
type MissingKeyError struct {
	Stage record.Stage
	Key   string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key in %s: %s", e.Stage, e.Key)
}

// RangeError reports a field whose value is outside its allowed range or enum.
type RangeError struct {
	Stage record.Stage
	Field string
	Value any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s in %s: %v", e.Field, e.Stage, e.Value)
}

var prototypes = map[record.Stage]any{
	record.StagePlan:     &record.Plan{},
	record.StageResearch: &record.ResearchResult{},
	record.StageCritique: &record.Critique{},
	record.StageReport:   &record.FinalReport{},
}

var (
	cacheMu sync.Mutex
	cache   = map[record.Stage]*jsonschema.Schema{}
)

// For returns the JSON schema of the record a stage produces.
func For(stage record.Stage) (*jsonschema.Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[stage]; ok {
		return s, nil
	}
	proto, ok := prototypes[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}

	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(proto)
	cache[stage] = s
	return s, nil
}

// RequiredKeys returns the top-level keys a stage's record must contain, in declaration order.
func RequiredKeys(stage record.Stage) ([]string, error) {
	s, err := For(stage)
	if err != nil {
		return nil, err
	}
	return s.Required, nil
}

// Validate checks rec against the stage's required keys. Only presence is
// checked, except for plan subtasks which must be a list with unique ids and
// critique scores and confidence which must be in range.
func Validate(rec extract.Record, stage record.Stage) error {
	keys, err := RequiredKeys(stage)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !rec.Has(key) {
			return &MissingKeyError{Stage: stage, Key: key}
		}
	}

	switch stage {
	case record.StagePlan:
		if strings.TrimSpace(string(rec["subtasks"])) == "null" {
			return &RangeError{Stage: record.StagePlan, Field: "subtasks", Value: nil}
		}
		var p record.Plan
		if err := rec.Decode(&p); err != nil {
			return fmt.Errorf("decode plan: %w", err)
		}
		return CheckPlan(p)
	case record.StageCritique:
		var c record.Critique
		if err := rec.Decode(&c); err != nil {
			return fmt.Errorf("decode critique: %w", err)
		}
		return CheckCritique(c)
	}
	return nil
}

// CheckPlan verifies subtask ids are positive and unique.
func CheckPlan(p record.Plan) error {
	seen := make(map[int]bool, len(p.Subtasks))
	for _, st := range p.Subtasks {
		if st.ID < 1 || seen[st.ID] {
			return &RangeError{Stage: record.StagePlan, Field: "subtasks.id", Value: st.ID}
		}
		seen[st.ID] = true
	}
	return nil
}

// CheckCritique verifies score ranges and the confidence enum.
func CheckCritique(c record.Critique) error {
	scores := []struct {
		field string
		value int
	}{
		{"validation.completeness_score", c.Validation.CompletenessScore},
		{"validation.accuracy_score", c.Validation.AccuracyScore},
		{"validation.source_credibility_score", c.Validation.SourceCredibilityScore},
		{"overall_quality", c.OverallQuality},
	}
	for _, s := range scores {
		if s.value < 1 || s.value > 10 {
			return &RangeError{Stage: record.StageCritique, Field: s.field, Value: s.value}
		}
	}
	if !c.ConfidenceLevel.Valid() {
		return &RangeError{Stage: record.StageCritique, Field: "confidence_level", Value: c.ConfidenceLevel}
	}
	return nil
}
