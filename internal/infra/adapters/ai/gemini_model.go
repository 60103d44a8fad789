package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

var _ TextModel = (*GeminiModel)(nil)

// GeminiModel generates text through the Gemini API using the official
// SDK client constructed at startup.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(client *genai.Client, model string) *GeminiModel {
	return &GeminiModel{client: client, model: model}
}

func (g *GeminiModel) Provider() string { return "gemini" }

func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", errContentRejected, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety || cand.FinishReason == genai.FinishReasonProhibitedContent {
		return "", fmt.Errorf("%w: finish reason %s", errContentRejected, cand.FinishReason)
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini candidate has no content")
	}
	return cand.Content.Parts[0].Text, nil
}
