package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationChecker(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var in ApplicationCheckerInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Study Permit", in.ApplicationType)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary":"Mostly complete","errors":["Passport expired"],"missingInformation":["Proof of funds"],"inconsistencies":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "secret", time.Second)
	res, err := client.ApplicationChecker(context.Background(), ApplicationCheckerInput{
		ApplicationType: "Study Permit",
		Fields:          map[string]string{"passportExpiry": "2024-01-01"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/application-checker", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Mostly complete", res.Summary)
	assert.Equal(t, []string{"Passport expired"}, res.Errors)
	assert.Equal(t, []string{"Proof of funds"}, res.MissingInformation)
	assert.Empty(t, res.Inconsistencies)
}

func TestRun(t *testing.T) {
	t.Run("unwraps result envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result":{"score":472,"notes":"ok"}}`))
		}))
		defer srv.Close()

		res, err := NewClient(srv.URL, "", time.Second).CRSCalculator(context.Background(), CRSCalculatorInput{Age: 29})
		require.NoError(t, err)
		assert.Equal(t, 472, res.Score)
	})

	t.Run("non-2xx is a FlowError and is not retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "", time.Second).ResumeBuilder(context.Background(), ResumeBuilderInput{FullName: "A"})
		require.Error(t, err)

		var flowErr *FlowError
		require.True(t, errors.As(err, &flowErr))
		assert.Equal(t, http.StatusServiceUnavailable, flowErr.StatusCode)
		assert.ErrorIs(t, err, ErrFlowFailed)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("unknown flow", func(t *testing.T) {
		err := NewClient("http://unused", "", time.Second).Run(context.Background(), "visa-predictor", nil, nil)
		assert.ErrorIs(t, err, ErrUnknownFlow)
	})

	t.Run("not configured", func(t *testing.T) {
		err := NewClient("", "", time.Second).Run(context.Background(), FlowIntakeAnalyzer, nil, nil)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("timeout surfaces as failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		err := NewClient(srv.URL, "", 20*time.Millisecond).Run(context.Background(), FlowDocumentSummarizer, DocumentSummarizerInput{}, nil)
		assert.ErrorIs(t, err, ErrFlowFailed)
	})

	t.Run("malformed response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "", time.Second).IntakeAnalyzer(context.Background(), IntakeAnalyzerInput{})
		assert.ErrorIs(t, err, ErrFlowFailed)
	})
}
