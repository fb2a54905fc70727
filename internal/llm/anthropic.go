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
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 2048
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

func (c *AnthropicClient) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

func (c *AnthropicClient) complete(ctx context.Context, messages []anthropicMessage) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: anthropicMaxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal anthropic response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s", result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic API returned no content")
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}

func (c *AnthropicClient) stream(ctx context.Context, messages []anthropicMessage, onDelta func(string)) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: anthropicMaxTokens,
		Messages:  messages,
		Stream:    true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := c.newRequest(ctx, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic stream request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
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

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		if event.Type != "content_block_delta" || event.Delta.Text == "" {
			continue
		}
		full.WriteString(event.Delta.Text)
		if onDelta != nil {
			onDelta(event.Delta.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read anthropic stream: %w", err)
	}

	return strings.TrimSpace(full.String()), nil
}

func (c *AnthropicClient) PlanSelection(ctx context.Context, query string, catalog []domain.Descriptor) (*domain.SelectionPlan, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: fmt.Sprintf(planPrompt, formatCatalog(catalog), query)},
	}

	result, err := c.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("plan selection: %w", err)
	}

	var plan domain.SelectionPlan
	if err := json.Unmarshal([]byte(stripFences(result)), &plan); err != nil {
		return nil, fmt.Errorf("parse selection plan: %w (raw: %s)", err, result)
	}

	return &plan, nil
}

func (c *AnthropicClient) PlanRetry(ctx context.Context, query string, failures []domain.FailedSlot) (map[string]string, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: fmt.Sprintf(retryPrompt, query, formatFailures(failures))},
	}

	result, err := c.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("plan retry: %w", err)
	}

	var plan map[string]string
	if err := json.Unmarshal([]byte(stripFences(result)), &plan); err != nil {
		return nil, fmt.Errorf("parse retry plan: %w (raw: %s)", err, result)
	}

	return plan, nil
}

func (c *AnthropicClient) Synthesize(ctx context.Context, query string, outcomes []domain.AgentOutcome, onDelta func(string)) (string, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: fmt.Sprintf(synthesisPrompt, query, formatOutcomes(outcomes))},
	}

	text, err := c.stream(ctx, messages, onDelta)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return text, nil
}

func (c *AnthropicClient) DecomposeClaims(ctx context.Context, hypothesis string) ([]string, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: fmt.Sprintf(decomposePrompt, hypothesis)},
	}

	result, err := c.complete(ctx, messages)
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

func (c *AnthropicClient) ResolveConflicts(ctx context.Context, hypothesis string, supporting, opposing []domain.SourceRecord) (string, error) {
	messages := []anthropicMessage{
		{Role: "user", Content: fmt.Sprintf(conflictPrompt, hypothesis, formatSources(supporting), formatSources(opposing))},
	}

	result, err := c.complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("resolve conflicts: %w", err)
	}
	return result, nil
}
