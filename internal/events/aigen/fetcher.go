package aigen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tixly/internal/logger"
)

// Fetcher calls the OpenAI chat completions API to draft event copy
// from a short prompt.
type Fetcher struct {
	client  *http.Client
	logger  *logger.Logger
	apiKey  string
	baseURL string
	model   string
}

func NewFetcher(client *http.Client, log *logger.Logger, apiKey, baseURL, model string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Fetcher{
		client:  client,
		logger:  log,
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
	}
}

// EventDraft is the structured output the model is asked to produce.
type EventDraft struct {
	Description  string `json:"description"`
	CategoryName string `json:"category_name"`
	VenueName    string `json:"venue_name"`
	TicketsCount int    `json:"tickets_count"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = `You draft event listings for a ticketing platform. ` +
	`Reply with a single JSON object with keys: description, category_name, ` +
	`venue_name, tickets_count. Pick category_name and venue_name from the ` +
	`lists the user provides. Keep the description under 120 words and ` +
	`tickets_count between 50 and 2000.`

var ErrNotConfigured = errors.New("event generation is not configured")

// GenerateDraft asks the model for event copy given a working title.
// categories and venues are the names the draft is allowed to reference.
func (f *Fetcher) GenerateDraft(title string, categories, venues []string) (*EventDraft, error) {
	if f.apiKey == "" {
		return nil, ErrNotConfigured
	}

	userPrompt := fmt.Sprintf("Event title: %s\nAvailable categories: %s\nAvailable venues: %s",
		title, strings.Join(categories, ", "), strings.Join(venues, ", "))

	body, err := json.Marshal(chatRequest{
		Model: f.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	url := f.baseURL + "/chat/completions"
	f.logger.Debug("AIGEN", fmt.Sprintf("Requesting event draft: %s", url))

	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("AIGEN", fmt.Sprintf("Generation service error: %v", err))
		return nil, fmt.Errorf("generation service error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			f.logger.Error("AIGEN", fmt.Sprintf("Failed to close generation response body: %v", err))
		}
	}(resp.Body)

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		f.logger.Error("AIGEN", fmt.Sprintf("Generation service returned error: %s", msg))
		return nil, fmt.Errorf("generation service returned error: %s", msg)
	}

	if len(parsed.Choices) == 0 {
		return nil, errors.New("generation response has no choices")
	}

	var draft EventDraft
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode event draft: %w", err)
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, errors.New("generated draft has no description")
	}

	f.logger.Info("AIGEN", fmt.Sprintf("Event draft generated for %q", title))
	return &draft, nil
}
