package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

type AIService struct {
	client *openai.Client
	now    func() time.Time
}

// TaskSuggestion is a task proposed by the model. Suggestions are never
// persisted; the client decides which ones to create.
type TaskSuggestion struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig builds the service from a full client config, e.g. a custom base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		now:    time.Now,
	}
}

// SuggestTasks extracts tasks from free text and drops the ones that are unusable.
func (s *AIService) SuggestTasks(ctx context.Context, text string) ([]TaskSuggestion, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newValidationError("text", "is required")
	}

	suggestions, err := s.generateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(suggestions) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(suggestions) > constants.MaxAIGeneratedTasks {
		suggestions = suggestions[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]TaskSuggestion, 0, len(suggestions))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, suggestion := range suggestions {
		suggestion.Title = strings.TrimSpace(suggestion.Title)
		if suggestion.Title == "" {
			continue
		}
		suggestion.Description = strings.TrimSpace(suggestion.Description)
		if !suggestion.Priority.Valid() {
			suggestion.Priority = models.TaskPriorityMedium
		}
		if suggestion.DueDate != nil && suggestion.DueDate.Before(cutoff) {
			suggestion.DueDate = nil
		}

		valid = append(valid, suggestion)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

// generateTasksFromText analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) generateTasksFromText(ctx context.Context, text string) ([]TaskSuggestion, error) {
	currentTime := s.now().UTC().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You extract actionable tasks from text.

Current time: %s

Text:
%s

Reply with a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "priority": "low | medium | high",
    "dueDate": "RFC3339 timestamp such as 2025-10-28T23:59:59Z, or null when no deadline is given"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") into absolute timestamps
- Return only JSON, without any explanation`, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var tasks []TaskSuggestion
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
