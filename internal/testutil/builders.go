package testutil

import (
	"encoding/json"

	"github.com/target/rightname-go/internal/domain/model"
)

// EvaluationRequestBuilder provides a fluent interface for building evaluation requests.
type EvaluationRequestBuilder struct {
	req model.EvaluationRequest
}

// NewEvaluationRequest creates a builder with sensible defaults.
func NewEvaluationRequest() *EvaluationRequestBuilder {
	return &EvaluationRequestBuilder{
		req: model.EvaluationRequest{
			BrandNames:  []string{"Lumora"},
			Industry:    "Consumer Tech",
			Category:    "Wearables",
			ProductType: "Digital",
			BrandVibe:   "Modern",
			Positioning: "Premium",
			MarketScope: "Single Country",
			Countries:   []string{"USA"},
		},
	}
}

// WithBrandNames sets the candidate names.
func (b *EvaluationRequestBuilder) WithBrandNames(names ...string) *EvaluationRequestBuilder {
	b.req.BrandNames = names
	return b
}

// WithCountries sets the target countries.
func (b *EvaluationRequestBuilder) WithCountries(countries ...string) *EvaluationRequestBuilder {
	b.req.Countries = countries
	return b
}

// Build returns the constructed request.
func (b *EvaluationRequestBuilder) Build() model.EvaluationRequest {
	return b.req
}

// StatusDoc builds job status documents in the shape the evaluation service returns.
type StatusDoc struct {
	doc map[string]any
}

// NewStatusDoc starts a document with the given status.
func NewStatusDoc(status model.JobStatus) *StatusDoc {
	return &StatusDoc{doc: map[string]any{"status": string(status)}}
}

// Progress sets the reported percentage.
func (s *StatusDoc) Progress(p int) *StatusDoc {
	s.doc["progress"] = p
	return s
}

// ETA sets the reported seconds remaining.
func (s *StatusDoc) ETA(seconds int) *StatusDoc {
	s.doc["eta_seconds"] = seconds
	return s
}

// Step sets the current stage and the completed stages.
func (s *StatusDoc) Step(current model.Stage, completed ...model.Stage) *StatusDoc {
	s.doc["current_step"] = string(current)
	names := make([]string, 0, len(completed))
	for _, c := range completed {
		names = append(names, string(c))
	}
	s.doc["completed_steps"] = names
	return s
}

// Result attaches a report document.
func (s *StatusDoc) Result(raw string) *StatusDoc {
	s.doc["result"] = json.RawMessage(raw)
	return s
}

// Error attaches a failure reason.
func (s *StatusDoc) Error(reason string) *StatusDoc {
	s.doc["error"] = reason
	return s
}

// JSON renders the document.
func (s *StatusDoc) JSON() []byte {
	b, err := json.Marshal(s.doc)
	if err != nil {
		panic(err)
	}
	return b
}
