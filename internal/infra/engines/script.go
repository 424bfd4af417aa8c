package engines

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ScriptClient calls an OpenAI-compatible chat completion endpoint to turn
// a scene context window into a narration script. Temperature and seed are
// pinned so reruns against the same window are reproducible where the
// backend honors the seed.
type ScriptClient struct {
	c           *Client
	model       string
	temperature float64
	seed        int
	apiKey      string
}

func NewScriptClient(cfg ClientConfig, model string, temperature float64, seed int, apiKey string, logger *zap.Logger) *ScriptClient {
	return &ScriptClient{
		c:           NewClient(cfg, logger),
		model:       model,
		temperature: temperature,
		seed:        seed,
		apiKey:      apiKey,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Seed        int           `json:"seed"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *ScriptClient) Generate(ctx context.Context, contextWindow string) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(contextWindow)},
		},
		Temperature: g.temperature,
		Seed:        g.seed,
	}

	var headers map[string]string
	if g.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + g.apiKey}
	}

	var resp chatResponse
	if err := g.c.postJSON(ctx, "/v1/chat/completions", headers, req, &resp); err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate script: %w", &APIError{StatusCode: 200, Body: "empty choices"})
	}

	script := strings.TrimSpace(resp.Choices[0].Message.Content)
	if script == "" {
		return "", fmt.Errorf("generate script: %w", &APIError{StatusCode: 200, Body: "empty completion"})
	}
	return script, nil
}

func buildPrompt(contextWindow string) string {
	return `You are a seasoned film commentary writer, known for vivid, tightly
paced narration with real depth. Based on the timestamped plot fragments
below, write a narration script of roughly 800-1200 characters.

Requirements:
1. Open with a hook: a question, a tension, or a striking line.
2. Follow the main storyline in time order and call out the key turns
   and character motivations.
3. Keep the language conversational and emotionally charged.
4. Close by elevating the theme or leaving the viewer with a question.
5. Never use meta phrasing such as "in this video" or "the frame shows".

Plot fragments:
` + contextWindow + `

Begin the narration now:`
}
