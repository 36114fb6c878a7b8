package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"debate_room/internal/format"
)

// GeneratedMotion AI 產生的辯題
type GeneratedMotion struct {
	Motion            string   `json:"motion"`
	BackgroundContext string   `json:"backgroundContext"`
	KeyStakeholders   []string `json:"keyStakeholders"`
}

type MotionGenerator interface {
	GenerateMotion(ctx context.Context, topic format.TopicArea, difficulty format.Difficulty) (*GeneratedMotion, error)
}

const motionSystemPrompt = "You are an expert debate coach who writes motions for Asian Parliamentary debates. " +
	"Respond with a JSON object containing the keys motion, backgroundContext and keyStakeholders (an array of strings)."

func (c *Client) GenerateMotion(ctx context.Context, topic format.TopicArea, difficulty format.Difficulty) (*GeneratedMotion, error) {
	prompt := fmt.Sprintf(
		"Generate a debate motion about %s. Difficulty: %s (%s). "+
			"The motion should start with \"This House\" and be balanced enough for both teams.",
		topic.Label(), difficulty, difficulty.Description())

	var out GeneratedMotion
	if err := c.completeJSON(ctx, motionSystemPrompt, prompt, &out); err != nil {
		return nil, err
	}

	out.Motion = strings.TrimSpace(out.Motion)
	if out.Motion == "" {
		return nil, errors.New("model returned an empty motion")
	}
	return &out, nil
}
