package openai

import (
	"context"
	"errors"
	"fmt"
)

const chatSystemPrompt = "You are a helpful home inventory assistant. " +
	"Answer the user's question using only the inventory context below. " +
	"If the context does not contain the answer, say so plainly.\n\n" +
	"Inventory context:\n%s"

// chatMessage content is either a plain string or a list of content
// parts for vision requests; the API accepts both shapes.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete answers a query given the rendered inventory context.
func (c *Client) Complete(ctx context.Context, contextText, query string) (string, error) {
	temp := 0.2
	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(chatSystemPrompt, contextText)},
			{Role: "user", Content: query},
		},
		MaxTokens:   500,
		Temperature: &temp,
	}

	var out chatResponse
	if err := c.post(ctx, "/chat/completions", req, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return out.Choices[0].Message.Content, nil
}
