package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/crosscheck-ai/crosscheck/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// chat types for OpenAI API
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *OpenAIClient) complete(ctx context.Context, messages []chatMessage, temp float32) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       chatModel,
		Messages:    messages,
		Temperature: temp,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("chat API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// stream runs a streaming completion, invoking onDelta per content chunk, and
// returns the concatenated text.
func (c *OpenAIClient) stream(ctx context.Context, messages []chatMessage, temp float32, onDelta func(string)) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       chatModel,
		Messages:    messages,
		Temperature: temp,
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat stream request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip malformed keepalive chunks rather than failing the stream.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read chat stream: %w", err)
	}

	return strings.TrimSpace(full.String()), nil
}

func (c *OpenAIClient) PlanSelection(ctx context.Context, query string, catalog []domain.Descriptor) (*domain.SelectionPlan, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(planPrompt, formatCatalog(catalog), query)},
	}

	result, err := c.complete(ctx, messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("plan selection: %w", err)
	}

	var plan domain.SelectionPlan
	if err := json.Unmarshal([]byte(stripFences(result)), &plan); err != nil {
		return nil, fmt.Errorf("parse selection plan: %w (raw: %s)", err, result)
	}

	return &plan, nil
}

func (c *OpenAIClient) PlanRetry(ctx context.Context, query string, failures []domain.FailedSlot) (map[string]string, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(retryPrompt, query, formatFailures(failures))},
	}

	result, err := c.complete(ctx, messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("plan retry: %w", err)
	}

	var plan map[string]string
	if err := json.Unmarshal([]byte(stripFences(result)), &plan); err != nil {
		return nil, fmt.Errorf("parse retry plan: %w (raw: %s)", err, result)
	}

	return plan, nil
}

func (c *OpenAIClient) Synthesize(ctx context.Context, query string, outcomes []domain.AgentOutcome, onDelta func(string)) (string, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(synthesisPrompt, query, formatOutcomes(outcomes))},
	}

	text, err := c.stream(ctx, messages, 0.3, onDelta)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return text, nil
}

func (c *OpenAIClient) DecomposeClaims(ctx context.Context, hypothesis string) ([]string, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(decomposePrompt, hypothesis)},
	}

	result, err := c.complete(ctx, messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("decompose claims: %w", err)
	}

	var parsed struct {
		Claims []string `json:"claims"`
	}
	if err := json.Unmarshal([]byte(stripFences(result)), &parsed); err != nil {
		return nil, fmt.Errorf("parse claims: %w (raw: %s)", err, result)
	}

	return parsed.Claims, nil
}

func (c *OpenAIClient) ResolveConflicts(ctx context.Context, hypothesis string, supporting, opposing []domain.SourceRecord) (string, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(conflictPrompt, hypothesis, formatSources(supporting), formatSources(opposing))},
	}

	result, err := c.complete(ctx, messages, 0.3)
	if err != nil {
		return "", fmt.Errorf("resolve conflicts: %w", err)
	}
	return result, nil
}
