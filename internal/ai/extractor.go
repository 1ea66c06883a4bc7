package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/yourgrade/gradetrack/internal/models"
)

const extractPrompt = `You are an expert at analyzing academic transcripts. Extract subject information from the provided text or image.

For each subject, extract the following:
1. "name": the full name of the subject.
2. "credits": the credit value.
3. "marks": the numerical marks (out of 100). Omit if not present.
4. "status": one of "PASS", "RA" (re-appear), "AAA" (absent), "W" (withdrawn) or "ABS" (absent). If marks are below 50, the status should be "RA". If the subject is passed but no marks are given, the status is "PASS".

Respond with a JSON object of the form {"subjects": [...]}. If no subjects can be found, return an empty array.`

const feedbackPrompt = `A user has just submitted feedback for the gradetrack application.

Generate a brief, friendly and appreciative confirmation message. Acknowledge the type of feedback, thank them for helping improve the platform, and do not ask for more information or promise any specific action.

Feedback type: %s
Message: %s

Respond with a JSON object: {"confirmation": "..."}`

// ExtractedSubject is one subject row as reported by the model, before
// validation. It deliberately has the same shape as manual form input:
// imported rows get no separate trust tier.
type ExtractedSubject struct {
	Name    string               `json:"name"`
	Credits int                  `json:"credits"`
	Marks   *float64             `json:"marks,omitempty"`
	Status  models.SubjectStatus `json:"status"`
}

// Extractor is the LLM-facing surface the service needs. Kept narrow so
// handler tests can stub it.
type Extractor interface {
	ExtractSubjects(ctx context.Context, text, photoDataURI string) ([]ExtractedSubject, error)
	FeedbackAck(ctx context.Context, feedbackType, message string) (string, error)
}

type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// ExtractSubjects runs the transcript-extraction prompt over pasted text
// and/or a photo supplied as a data URI. At least one of the two must be
// non-empty.
func (c *Client) ExtractSubjects(ctx context.Context, text, photoDataURI string) ([]ExtractedSubject, error) {
	if text == "" && photoDataURI == "" {
		return nil, fmt.Errorf("either text or an image must be provided")
	}

	var parts []openai.ChatMessagePart
	if text != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf("---\n%s\n---", text),
		})
	}
	if photoDataURI != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: photoDataURI,
			},
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	var out struct {
		Subjects []ExtractedSubject `json:"subjects"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("model returned unparseable output: %w", err)
	}

	return out.Subjects, nil
}

// FeedbackAck phrases an acknowledgement for a feedback submission. The
// model only words the message; the feedback itself is already persisted
// by the time this runs.
func (c *Client) FeedbackAck(ctx context.Context, feedbackType, message string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(feedbackPrompt, feedbackType, message),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("feedback ack request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	var out struct {
		Confirmation string `json:"confirmation"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return "", fmt.Errorf("model returned unparseable output: %w", err)
	}
	if out.Confirmation == "" {
		return "", fmt.Errorf("model returned empty confirmation")
	}

	return out.Confirmation, nil
}
