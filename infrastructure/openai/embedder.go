package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

const describePrompt = "Describe this object in one short sentence, " +
	"focusing on what it is, its color, material and style."

type embeddingsRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedText returns an embedding vector for the given text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	var out embeddingsResponse
	req := embeddingsRequest{Input: text, Model: c.embedModel}
	if err := c.post(ctx, "/embeddings", req, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return out.Data[0].Embedding, nil
}

// EmbedImage derives an embedding for an image crop by first asking the
// vision model for a one-line description, then embedding that
// description. Image and text vectors thereby share one embedding
// space, which the blended search score depends on.
func (c *Client) EmbedImage(ctx context.Context, image []byte) ([]float64, string, error) {
	description, err := c.describeImage(ctx, image, describePrompt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to describe image: %w", err)
	}

	vector, err := c.EmbedText(ctx, description)
	if err != nil {
		return nil, "", fmt.Errorf("failed to embed description: %w", err)
	}

	return vector, description, nil
}

// describeImage sends one vision prompt with the image attached as a
// base64 data URL.
func (c *Client) describeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: 150,
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
