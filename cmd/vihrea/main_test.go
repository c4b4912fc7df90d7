package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vihrea/vihrea/engine"
	"github.com/vihrea/vihrea/internal/daemon"
	"github.com/vihrea/vihrea/types"
)

func TestMetricsServer_HealthEndpoints(t *testing.T) {
	d, err := daemon.NewDaemon(daemon.Config{Interval: 1}, engine.NewAnalyzer(), nil)
	require.NoError(t, err)

	server := metricsServer(0, d)

	for _, path := range []string{"/health", "/-/healthy", "/-/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		server.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "healthy", path)
	}
}

func TestCheckFailOn(t *testing.T) {
	clean := []types.AnalysisResult{{FunctionID: "a"}}
	warned := []types.AnalysisResult{{
		FunctionID: "b",
		Violations: []types.Violation{{Kind: types.ViolationInefficientAlgorithm, Severity: types.SeverityWarning}},
	}}
	errored := []types.AnalysisResult{{
		FunctionID: "c",
		Violations: []types.Violation{{Kind: types.ViolationCarbonBudgetExceeded, Severity: types.SeverityError}},
	}}

	analyzeFailOn = ""
	assert.NoError(t, checkFailOn(errored))

	analyzeFailOn = "error"
	assert.NoError(t, checkFailOn(clean))
	assert.NoError(t, checkFailOn(warned))
	assert.Error(t, checkFailOn(errored))

	analyzeFailOn = "warning"
	assert.Error(t, checkFailOn(warned))
	assert.Error(t, checkFailOn(errored))

	analyzeFailOn = ""
}
