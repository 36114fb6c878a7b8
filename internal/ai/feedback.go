package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// SpeechTranscript 一段發言的完整內容，提供給評語產生器
type SpeechTranscript struct {
	Role        string `json:"role"`
	Label       string `json:"label"`
	Speaker     string `json:"speaker"`
	Duration    int    `json:"duration"`
	Text        string `json:"text"`
	POIReceived int    `json:"poiReceived"`
}

type FeedbackInput struct {
	Motion   string             `json:"motion"`
	Speeches []SpeechTranscript `json:"speeches"`
}

type FeedbackEntry struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

type SpeechFeedback struct {
	Role string `json:"role"`
	FeedbackEntry
}

// ExtractedArgument 論點圖的一個節點；RespondsTo 為被回應節點的 Ref
type ExtractedArgument struct {
	Ref        string `json:"ref"`
	Role       string `json:"role"`
	Kind       string `json:"kind"`
	Summary    string `json:"summary"`
	RespondsTo string `json:"respondsTo"`
}

type GeneratedFeedback struct {
	Overall   FeedbackEntry       `json:"overall"`
	Speeches  []SpeechFeedback    `json:"speeches"`
	Arguments []ExtractedArgument `json:"arguments"`
}

type FeedbackGenerator interface {
	GenerateFeedback(ctx context.Context, input FeedbackInput) (*GeneratedFeedback, error)
}

const feedbackSystemPrompt = "You are an experienced Asian Parliamentary adjudicator. " +
	"Given the motion and every speech transcript, respond with a JSON object: " +
	"{\"overall\": {score, summary, strengths, improvements}, " +
	"\"speeches\": [{role, score, summary, strengths, improvements}], " +
	"\"arguments\": [{ref, role, kind, summary, respondsTo}]}. Scores range from 0 to 100. " +
	"For arguments, kind is one of argument, rebuttal or clash; ref is a short unique id; " +
	"respondsTo is the ref of an earlier node being answered, or empty. A clash may leave role empty."

func (c *Client) GenerateFeedback(ctx context.Context, input FeedbackInput) (*GeneratedFeedback, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	var out GeneratedFeedback
	prompt := fmt.Sprintf("Adjudicate this debate:\n%s", payload)
	if err := c.completeJSON(ctx, feedbackSystemPrompt, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
