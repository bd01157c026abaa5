package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/loglens/pkg/config"
	"github.com/ccollicutt/loglens/pkg/webhook"
)

func TestRunSummary_Text(t *testing.T) {
	path := writeFile(t, "access.log", clfLog)

	out, err := execute(t, NewSummaryCommand(), path)
	require.NoError(t, err)

	for _, want := range []string{
		"Log Summary: " + path,
		"Total entries:",
		"2023-10-10T13:55:36.000Z - 2023-10-11T09:30:00.000Z",
		"66.7%",
		"Status codes",
		"Methods",
		"GET",
		"Top URLs",
		"/index.html",
		"Entries by hour",
		"13:00",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Parse errors:")
}

func TestRunSummary_JSON(t *testing.T) {
	path := writeFile(t, "access.log", clfLog)

	out, err := execute(t, NewSummaryCommand(), "-o", "json", path)
	require.NoError(t, err)

	var doc struct {
		Format  string `json:"format"`
		Summary struct {
			TotalEntries int     `json:"totalEntries"`
			UniqueIPs    int     `json:"uniqueIPs"`
			ErrorRate    float64 `json:"errorRate"`
			TopURLs      []struct {
				URL   string `json:"url"`
				Count int    `json:"count"`
			} `json:"topURLs"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "clf", doc.Format)
	assert.Equal(t, 3, doc.Summary.TotalEntries)
	assert.Equal(t, 3, doc.Summary.UniqueIPs)
	assert.Equal(t, 66.7, doc.Summary.ErrorRate)
	require.NotEmpty(t, doc.Summary.TopURLs)
	assert.Equal(t, "/index.html", doc.Summary.TopURLs[0].URL)
	assert.Equal(t, 2, doc.Summary.TopURLs[0].Count)
}

func TestRunSummary_Webhook(t *testing.T) {
	var calls atomic.Int32
	var got webhook.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	path := writeFile(t, "access.log", clfLog)

	_, err := execute(t, NewSummaryCommand(), "--webhook-url", srv.URL, "--webhook-token", "secret", path)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, path, got.Source)
	assert.Equal(t, 3, got.Entries)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 66.7, got.Summary.ErrorRate)
}

func TestRunSummary_WebhookFailureDoesNotFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := writeFile(t, "access.log", clfLog)

	_, err := execute(t, NewSummaryCommand(), "--webhook-url", srv.URL, "--webhook-trigger", "always", path)
	assert.NoError(t, err)
	assert.Equal(t, 0, ExitCode)
}

func TestCollectWebhooks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Webhooks = []config.WebhookConfig{{Name: "ops", URL: "https://hooks.example.com"}}

	hooks, err := collectWebhooks(cfg, &SummaryOptions{})
	require.NoError(t, err)
	assert.Len(t, hooks, 1)

	hooks, err = collectWebhooks(cfg, &SummaryOptions{WebhookURL: "https://cli.example.com", WebhookToken: "t"})
	require.NoError(t, err)
	require.Len(t, hooks, 2)
	assert.Equal(t, "cli", hooks[1].Name)
	assert.Equal(t, config.WebhookTriggerOnErrors, hooks[1].Trigger)
	assert.Equal(t, config.DefaultWebhookTimeout, hooks[1].Timeout)

	_, err = collectWebhooks(cfg, &SummaryOptions{WebhookURL: "https://cli.example.com", WebhookTrigger: "sometimes"})
	assert.ErrorContains(t, err, "invalid webhook trigger")
}
