package fitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phylosensi/domain/core"
	"phylosensi/domain/model"
	"phylosensi/domain/phylo"
)

func remoteFixture(t *testing.T) (model.RegressionSpec, *model.AlignedDataset) {
	t.Helper()
	spec, err := model.NewRegressionSpec("y", "x", model.Lambda, model.FitOptions{SearchBound: 50})
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	tree, err := phylo.ParseNewick("((A:1,B:1):1,C:2);")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	return spec, &model.AlignedDataset{
		Species:   []string{"A", "B", "C"},
		Response:  []float64{1, 2, 3},
		Predictor: []float64{10, 20, 30},
		Tree:      tree,
	}
}

func TestRemote_Fit(t *testing.T) {
	spec, ds := remoteFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fit" {
			t.Errorf("path = %q, want /fit", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["formula"] != "y ~ x" {
			t.Errorf("formula = %v", req["formula"])
		}
		if req["model"] != "lambda" {
			t.Errorf("model = %v", req["model"])
		}
		if req["tree"] == "" {
			t.Error("request carries no tree")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"intercept":   2.0,
			"intercept_p": 0.01,
			"estimate":    1.5,
			"estimate_p":  0.002,
			"aic":         12.5,
			"optpar":      0.8,
			"n":           3,
		})
	}))
	defer srv.Close()

	fit, err := NewRemote(srv.URL, time.Second).Fit(context.Background(), spec, ds)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if fit.Intercept != 2.0 || fit.Estimate != 1.5 || fit.AIC != 12.5 {
		t.Errorf("fit = %+v", fit)
	}
	if !fit.OptPar.Valid || fit.OptPar.Value != 0.8 {
		t.Errorf("optpar = %v, want 0.8", fit.OptPar)
	}
	if fit.N != 3 {
		t.Errorf("n = %d, want 3", fit.N)
	}
}

func TestRemote_Fit_NullOptPar(t *testing.T) {
	spec, ds := remoteFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"intercept": 1.0, "estimate": 0.5, "aic": 9.0, "optpar": null}`))
	}))
	defer srv.Close()

	fit, err := NewRemote(srv.URL, time.Second).Fit(context.Background(), spec, ds)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if fit.OptPar.Valid {
		t.Errorf("null optpar decoded as %v", fit.OptPar)
	}
	// Missing n falls back to the dataset size.
	if fit.N != ds.Len() {
		t.Errorf("n = %d, want %d", fit.N, ds.Len())
	}
}

func TestRemote_Fit_ServiceError(t *testing.T) {
	spec, ds := remoteFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error": "optimizer did not converge"}`))
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, time.Second).Fit(context.Background(), spec, ds)
	if !errors.Is(err, core.ErrFitFailed) {
		t.Fatalf("error = %v, want ErrFitFailed", err)
	}
}

func TestRemote_Fit_HTTPFailure(t *testing.T) {
	spec, ds := remoteFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, time.Second).Fit(context.Background(), spec, ds)
	if !errors.Is(err, core.ErrFitFailed) {
		t.Fatalf("error = %v, want ErrFitFailed", err)
	}

	srv.Close()
	if _, err := NewRemote(srv.URL, time.Second).Fit(context.Background(), spec, ds); err == nil {
		t.Error("expected error for unreachable service")
	}
}
