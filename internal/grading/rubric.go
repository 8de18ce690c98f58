package grading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
)

// ErrInvalidRubric indicates the lab's rubric blob failed schema validation.
var ErrInvalidRubric = errors.New("invalid rubric configuration")

// DefaultHintPenaltyPercent is the per-hint deduction applied when the rubric
// does not configure one.
const DefaultHintPenaltyPercent = 10.0

// Rubric is the validated per-lab grading configuration. Immutable during a
// grading run.
type Rubric struct {
	HintPenaltyPercent   float64             `json:"hint_penalty_percent"`
	FuzzyMatchEnabled    bool                `json:"fuzzy_match_enabled"`
	PartialCreditEnabled bool                `json:"partial_credit_enabled"`
	AcceptedAliases      map[string][]string `json:"accepted_aliases"`
	CategoryWeights      map[string]float64  `json:"category_weights"`
}

// DefaultRubric returns the configuration used when a lab carries no rubric.
func DefaultRubric() Rubric {
	return Rubric{
		HintPenaltyPercent:   DefaultHintPenaltyPercent,
		FuzzyMatchEnabled:    true,
		PartialCreditEnabled: false,
	}
}

// AliasesFor returns the curated aliases configured for a structure.
func (r Rubric) AliasesFor(structureID uint) []string {
	if len(r.AcceptedAliases) == 0 {
		return nil
	}
	return r.AcceptedAliases[strconv.FormatUint(uint64(structureID), 10)]
}

// Weighted reports whether category-weighted aggregation is configured.
func (r Rubric) Weighted() bool {
	return len(r.CategoryWeights) > 0
}

const rubricSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "hint_penalty_percent": {"type": "number", "minimum": 0, "maximum": 100},
    "fuzzy_match_enabled": {"type": "boolean"},
    "partial_credit_enabled": {"type": "boolean"},
    "accepted_aliases": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "string"}}
    },
    "category_weights": {
      "type": "object",
      "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
    }
  }
}`

var (
	rubricSchemaOnce     sync.Once
	rubricSchemaCompiled *jsonschema.Schema
)

func compiledRubricSchema() *jsonschema.Schema {
	rubricSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rubric.schema.json", strings.NewReader(rubricSchema)); err != nil {
			panic(err)
		}
		rubricSchemaCompiled = compiler.MustCompile("rubric.schema.json")
	})
	return rubricSchemaCompiled
}

type rubricDoc struct {
	HintPenaltyPercent   *float64            `json:"hint_penalty_percent"`
	FuzzyMatchEnabled    *bool               `json:"fuzzy_match_enabled"`
	PartialCreditEnabled *bool               `json:"partial_credit_enabled"`
	AcceptedAliases      map[string][]string `json:"accepted_aliases"`
	CategoryWeights      map[string]float64  `json:"category_weights"`
}

// ParseRubric validates and decodes a lab's rubric blob. An empty or null
// blob yields the defaults; every omitted field takes its default; a blob
// that fails schema validation is rejected.
func ParseRubric(blob datatypes.JSON) (Rubric, error) {
	raw := bytes.TrimSpace([]byte(blob))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return DefaultRubric(), nil
	}

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return Rubric{}, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}
	if err := compiledRubricSchema().Validate(document); err != nil {
		return Rubric{}, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}

	var doc rubricDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Rubric{}, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}

	rubric := DefaultRubric()
	if doc.HintPenaltyPercent != nil {
		rubric.HintPenaltyPercent = *doc.HintPenaltyPercent
	}
	if doc.FuzzyMatchEnabled != nil {
		rubric.FuzzyMatchEnabled = *doc.FuzzyMatchEnabled
	}
	if doc.PartialCreditEnabled != nil {
		rubric.PartialCreditEnabled = *doc.PartialCreditEnabled
	}
	rubric.AcceptedAliases = doc.AcceptedAliases
	rubric.CategoryWeights = doc.CategoryWeights

	return rubric, nil
}
