// Package llm provides the optional model-backed UX review used by --deep.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	claudecode "github.com/severity1/claude-agent-sdk-go"
)

// ErrUnavailable is returned when no model backend can be reached.
var ErrUnavailable = errors.New("no model backend available (set ANTHROPIC_API_KEY or install the claude CLI)")

// Reviewer sends a prompt to a model and returns its text reply.
type Reviewer interface {
	Review(ctx context.Context, prompt string) (string, error)
}

// APIReviewer talks to the Anthropic Messages API.
type APIReviewer struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAPIReviewer creates a reviewer for the given API key.
func NewAPIReviewer(apiKey string) *APIReviewer {
	return &APIReviewer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.ModelClaude3_5Haiku20241022,
	}
}

func (r *APIReviewer) Review(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.model,
		MaxTokens: 2000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from claude API")
}

// AgentReviewer runs the prompt through the local Claude Code CLI.
type AgentReviewer struct {
	model string
}

// NewAgentReviewer creates a reviewer backed by the claude CLI.
func NewAgentReviewer() *AgentReviewer {
	return &AgentReviewer{model: "sonnet"}
}

func (r *AgentReviewer) Review(ctx context.Context, prompt string) (string, error) {
	iterator, err := claudecode.Query(ctx, prompt,
		claudecode.WithModel(r.model),
		claudecode.WithMaxTurns(1),
	)
	if err != nil {
		if claudecode.IsCLINotFoundError(err) {
			return "", ErrUnavailable
		}
		return "", fmt.Errorf("claude code error: %w", err)
	}
	defer iterator.Close()

	var sb strings.Builder
	for {
		message, err := iterator.Next(ctx)
		if err != nil {
			if errors.Is(err, claudecode.ErrNoMoreMessages) {
				break
			}
			return "", fmt.Errorf("error reading claude response: %w", err)
		}

		if assistantMsg, ok := message.(*claudecode.AssistantMessage); ok {
			for _, block := range assistantMsg.Content {
				if textBlock, ok := block.(*claudecode.TextBlock); ok {
					sb.WriteString(textBlock.Text)
				}
			}
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from claude code")
	}
	return sb.String(), nil
}

// FromEnv prefers the API when ANTHROPIC_API_KEY is set and falls back to
// the claude CLI otherwise.
func FromEnv() Reviewer {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return NewAPIReviewer(key)
	}
	return NewAgentReviewer()
}

// ExtractJSON pulls a JSON object out of a reply that may be wrapped in
// markdown fences or prose.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") {
		return s
	}

	if idx := strings.Index(s, "```json"); idx != -1 {
		start := idx + 7
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}

	if idx := strings.Index(s, "```"); idx != -1 {
		start := idx + 3
		if nl := strings.Index(s[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}

	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
