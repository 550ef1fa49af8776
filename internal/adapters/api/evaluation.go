package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/target/rightname-go/internal/domain/model"
	"github.com/target/rightname-go/internal/gateway"
	"github.com/target/rightname-go/internal/ports"
)

// Evaluation endpoint paths relative to the API root.
const (
	PathEvaluate      = "/evaluate"
	PathEvaluateStart = "/evaluate/start"
	PathEvaluateState = "/evaluate/status"
	PathReports       = "/reports"
)

// Evaluation implements ports.EvaluationAPI.
type Evaluation struct {
	client *gateway.Client
}

// NewEvaluation returns an evaluation client.
func NewEvaluation(client *gateway.Client) *Evaluation {
	return &Evaluation{client: client}
}

var _ ports.EvaluationAPI = (*Evaluation)(nil)

func (e *Evaluation) Evaluate(ctx context.Context, req model.EvaluationRequest) (*model.Report, error) {
	body, err := e.client.Send(ctx, gateway.Request{Method: http.MethodPost, Path: PathEvaluate, Body: req})
	if err != nil {
		return nil, err
	}
	return decodeReport(http.MethodPost, PathEvaluate, body)
}

func (e *Evaluation) StartEvaluation(ctx context.Context, req model.EvaluationRequest) (model.JobHandle, error) {
	var h model.JobHandle
	if err := e.client.JSON(ctx, http.MethodPost, PathEvaluateStart, req, &h); err != nil {
		return model.JobHandle{}, err
	}
	if h.ID == "" {
		return model.JobHandle{}, &gateway.Error{
			Kind: gateway.KindMalformed, Method: http.MethodPost, Path: PathEvaluateStart,
			Cause: errors.New("job handle without job_id"),
		}
	}
	return h, nil
}

func (e *Evaluation) JobStatus(ctx context.Context, jobID string) ([]byte, error) {
	return e.client.Send(ctx, gateway.Request{Path: PathEvaluateState + "/" + url.PathEscape(jobID)})
}

func (e *Evaluation) Report(ctx context.Context, id string) (*model.Report, error) {
	path := PathReports + "/" + url.PathEscape(id)
	body, err := e.client.Send(ctx, gateway.Request{Path: path})
	if err != nil {
		return nil, err
	}
	return decodeReport(http.MethodGet, path, body)
}

func decodeReport(method, path string, body []byte) (*model.Report, error) {
	r, err := model.DecodeReport(body)
	if err != nil {
		return nil, &gateway.Error{Kind: gateway.KindMalformed, Method: method, Path: path, Body: body, Cause: err}
	}
	return r, nil
}
