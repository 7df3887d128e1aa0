package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/app"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/models"
)

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()

	cfg := common.DefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir() + "/db"
	cfg.LLM.Mode = "offline"

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	require.NoError(t, application.Start())
	t.Cleanup(application.Stop)

	return New(application), application
}

func storedResult(t *testing.T, application *app.App) *models.DebateResult {
	t.Helper()

	started := time.Now().Add(-time.Minute)
	result := &models.DebateResult{
		ConversationID: "debate_handler_test",
		Scenario: models.Scenario{
			Country:     "Japan",
			Story:       "A guest wore shoes inside the house.",
			RuleOfThumb: "Shoes are removed at the entrance.",
		},
		Phase: models.PhaseCompleted,
		FinalResponses: map[string]*models.PhaseResponse{
			"cultural_christian_instance": {
				RawResponse: "No",
				Parsed:      &models.ParsedResponse{Answer: models.AnswerNo, Confidence: 0.3},
			},
		},
		Verdict: &models.Verdict{
			Answer:     models.AnswerNo,
			Votes:      map[models.Answer]int{models.AnswerNo: 1},
			Confidence: 0.3,
			ByAgent:    map[string]models.Answer{"cultural_christian_instance": models.AnswerNo},
		},
		StartedAt:   started,
		CompletedAt: started.Add(30 * time.Second),
		Duration:    30 * time.Second,
	}
	require.NoError(t, application.Storage.SaveResult(result))
	return result
}

func TestTranscriptDefaultsToMarkdown(t *testing.T) {
	srv, application := newTestServer(t)
	storedResult(t, application)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/debates/debate_handler_test/transcript")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")

	body := readBody(t, resp)
	assert.Contains(t, body, "# Debate debate_handler_test")
	assert.NotContains(t, body, "<h1")
}

func TestTranscriptHTMLFormat(t *testing.T) {
	srv, application := newTestServer(t)
	storedResult(t, application)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/debates/debate_handler_test/transcript?format=html")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readBody(t, resp), "<h1")
}

func TestTranscriptNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/debates/debate_missing/transcript")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearAllQueuesRoute(t *testing.T) {
	srv, application := newTestServer(t)

	for i := 0; i < 3; i++ {
		_, err := application.Bus.Send(&models.AgentMessage{
			ID:         common.NewMessageID(),
			SenderID:   "a",
			ReceiverID: "b",
			Type:       "x",
			Timestamp:  time.Now(),
		})
		require.NoError(t, err)
	}

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/queues/clear", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"dropped":3`)

	status := application.Bus.QueueStatus()
	assert.Equal(t, 0, status["b"].QueueSize)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
