package model

import (
	"encoding/json"
	"strings"
)

// EvaluationRequest is the payload submitted to the evaluation boundary.
// Business validation belongs to the server; the client only normalizes lists.
type EvaluationRequest struct {
	BrandNames  []string `json:"brand_names"`
	Industry    string   `json:"industry,omitempty"`
	Category    string   `json:"category"`
	ProductType string   `json:"product_type,omitempty"`
	USP         string   `json:"usp,omitempty"`
	BrandVibe   string   `json:"brand_vibe,omitempty"`
	Positioning string   `json:"positioning"`
	MarketScope string   `json:"market_scope"`
	Countries   []string `json:"countries"`
}

// SplitList splits a comma-separated string into trimmed, non-empty entries.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Report is a stored evaluation report. The body is kept opaque; only the fields the
// client acts on are decoded.
type Report struct {
	ID               string          `json:"report_id"`
	IsAuthenticated  bool            `json:"is_authenticated"`
	ExecutiveSummary string          `json:"executive_summary,omitempty"`
	BrandScores      []BrandScore    `json:"brand_scores,omitempty"`
	Raw              json.RawMessage `json:"-"`
}

// BrandScore is the per-name headline of a report.
type BrandScore struct {
	BrandName string  `json:"brand_name"`
	NameScore float64 `json:"namescore"`
	Verdict   string  `json:"verdict"`
	Summary   string  `json:"summary,omitempty"`
}

// DecodeReport decodes raw into a Report, retaining the original bytes.
func DecodeReport(raw []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	r.Raw = append(json.RawMessage(nil), raw...)
	return &r, nil
}
