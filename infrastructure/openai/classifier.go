package openai

import (
	"context"
	"strings"

	"homegraph/domain/inventory"

	"go.uber.org/zap"
)

// ClassifyRoom asks the vision model which known room the photo shows.
// The answer is normalized against the closed room set; anything the
// model improvises collapses to "unknown".
func (c *Client) ClassifyRoom(ctx context.Context, image []byte) (string, error) {
	prompt := "What room of a home is shown in this photo? " +
		"Answer with exactly one of: " + strings.Join(inventory.KnownRooms, ", ") +
		". If none fit, answer: unknown."

	answer, err := c.describeImage(ctx, image, prompt)
	if err != nil {
		return "", err
	}

	room := inventory.NormalizeRoom(strings.Trim(answer, " .\n"))
	if room == inventory.UnknownRoom && !strings.Contains(strings.ToLower(answer), inventory.UnknownRoom) {
		c.logger.Debug("Room answer outside known set",
			zap.String("answer", answer),
		)
	}
	return room, nil
}
