package fitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/ports"
)

// Remote calls an external phylogenetic regression service over HTTP. The
// regression mathematics live entirely on the other side; this adapter only
// ships the aligned data and decodes the fit. Implements ports.ModelFitter.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a fitter client against the given base URL.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Remote{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ ports.ModelFitter = (*Remote)(nil)

type fitRequest struct {
	Formula     string    `json:"formula"`
	Model       string    `json:"model"`
	SearchBound float64   `json:"search_bound,omitempty"`
	Options     string    `json:"options,omitempty"`
	Species     []string  `json:"species"`
	Response    []float64 `json:"response"`
	Predictor   []float64 `json:"predictor"`
	Tree        string    `json:"tree"`
}

// Fit posts one fitting job and decodes the result. Non-convergence is
// reported by the service as an error payload and surfaced as a fitting
// error, never as a default fit.
func (r *Remote) Fit(ctx context.Context, spec model.RegressionSpec, data *model.AlignedDataset) (model.FitResult, error) {
	payload := fitRequest{
		Formula:     spec.Formula(),
		Model:       string(spec.Model),
		SearchBound: spec.Options.SearchBound,
		Options:     spec.Options.Raw,
		Species:     data.Species,
		Response:    data.Response,
		Predictor:   data.Predictor,
		Tree:        data.Tree.Newick(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return model.FitResult{}, fmt.Errorf("encoding fit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/fit", bytes.NewReader(body))
	if err != nil {
		return model.FitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return model.FitResult{}, fmt.Errorf("fitter service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.FitResult{}, fmt.Errorf("reading fitter response: %w", err)
	}
	doc := gjson.ParseBytes(raw)

	if resp.StatusCode != http.StatusOK || doc.Get("error").Exists() {
		msg := doc.Get("error").String()
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return model.FitResult{}, core.NewFitError(spec.Formula(), fmt.Errorf("%s", msg))
	}

	result := model.FitResult{
		Intercept:   doc.Get("intercept").Float(),
		InterceptSE: doc.Get("intercept_se").Float(),
		InterceptP:  doc.Get("intercept_p").Float(),
		Estimate:    doc.Get("estimate").Float(),
		EstimateSE:  doc.Get("estimate_se").Float(),
		EstimateP:   doc.Get("estimate_p").Float(),
		AIC:         doc.Get("aic").Float(),
		N:           int(doc.Get("n").Int()),
	}
	if result.N == 0 {
		result.N = data.Len()
	}
	if optpar := doc.Get("optpar"); optpar.Exists() && optpar.Type != gjson.Null {
		result.OptPar = model.SomeFloat(optpar.Float())
	}
	return result, nil
}
