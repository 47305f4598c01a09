package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"homegraph/application/ports"
)

const receiptPrompt = `Extract the following information from the receipt text as JSON:
- items: a list of items with name, quantity, and price (if available).
- total: the total amount charged.
- date: the date of the receipt, typically "MM/DD/YYYY". OCR may mangle
  separators ("0271872025 11:41 AM" is 02/18/2025); look near the time of day.
- vendor: the store/vendor name.

OCR errors are common; map each product to a plausible retail product name.

Receipt text:
%s

Return only the JSON with keys "items", "total", "date" and "vendor".`

// receiptAmount tolerates prices arriving as numbers or as strings
// with a currency sign.
type receiptAmount float64

func (a *receiptAmount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = receiptAmount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = receiptAmount(n)
	return nil
}

// ParseReceipt turns OCR text from a receipt into structured line
// items using a low-temperature completion.
func (c *Client) ParseReceipt(ctx context.Context, receiptText string) ([]ports.ReceiptLine, error) {
	temp := 0.0
	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(receiptPrompt, receiptText)},
		},
		Temperature: &temp,
	}

	var out chatResponse
	if err := c.post(ctx, "/chat/completions", req, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("no completion returned")
	}

	var parsed struct {
		Items []struct {
			Name     string        `json:"name"`
			Quantity int           `json:"quantity"`
			Price    receiptAmount `json:"price"`
		} `json:"items"`
		Date string `json:"date"`
	}
	content := stripCodeFence(out.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode receipt JSON: %w", err)
	}

	lines := make([]ports.ReceiptLine, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		lines = append(lines, ports.ReceiptLine{
			Name:         item.Name,
			Quantity:     item.Quantity,
			Price:        float64(item.Price),
			PurchaseDate: parsed.Date,
		})
	}
	return lines, nil
}

// stripCodeFence removes a markdown fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
