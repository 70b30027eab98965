package aigen_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tixly/internal/events/aigen"
	"tixly/internal/logger"
)

func fakeCompletions(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		if status != http.StatusOK {
			resp = map[string]interface{}{
				"error": map[string]string{"message": "rate limited"},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateDraft(t *testing.T) {
	content := `{"description":"An evening of live jazz.","category_name":"Music","venue_name":"Blue Hall","tickets_count":250}`
	srv := fakeCompletions(t, content, http.StatusOK)
	defer srv.Close()

	fetcher := aigen.NewFetcher(srv.Client(), logger.NewLogger(), "test-key", srv.URL, "gpt-4o-mini")

	draft, err := fetcher.GenerateDraft("Jazz Night", []string{"Music", "Theatre"}, []string{"Blue Hall"})
	assert.NoError(t, err)
	assert.Equal(t, "An evening of live jazz.", draft.Description)
	assert.Equal(t, "Music", draft.CategoryName)
	assert.Equal(t, "Blue Hall", draft.VenueName)
	assert.Equal(t, 250, draft.TicketsCount)
}

func TestGenerateDraftSurfacesAPIError(t *testing.T) {
	srv := fakeCompletions(t, "", http.StatusTooManyRequests)
	defer srv.Close()

	fetcher := aigen.NewFetcher(srv.Client(), logger.NewLogger(), "test-key", srv.URL, "gpt-4o-mini")

	_, err := fetcher.GenerateDraft("Jazz Night", nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateDraftRejectsEmptyDescription(t *testing.T) {
	srv := fakeCompletions(t, `{"description":"","category_name":"Music"}`, http.StatusOK)
	defer srv.Close()

	fetcher := aigen.NewFetcher(srv.Client(), logger.NewLogger(), "test-key", srv.URL, "gpt-4o-mini")

	_, err := fetcher.GenerateDraft("Jazz Night", nil, nil)
	assert.Error(t, err)
}

func TestGenerateDraftWithoutAPIKey(t *testing.T) {
	fetcher := aigen.NewFetcher(nil, logger.NewLogger(), "", "https://api.openai.com/v1", "gpt-4o-mini")

	_, err := fetcher.GenerateDraft("Jazz Night", nil, nil)
	assert.ErrorIs(t, err, aigen.ErrNotConfigured)
}
