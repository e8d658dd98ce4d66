package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/tasks"
	"go.uber.org/zap"
)

// TaskDraft is a task extracted from a chat message, not yet on the board.
type TaskDraft struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	DueDate          *time.Time          `json:"due_date"`
	Priority         models.TaskPriority `json:"priority"`
	Tags             []string            `json:"tags"`
	AssigneeUsername string              `json:"assignee"`
}

// Extractor turns free text into task drafts.
type Extractor interface {
	Extract(ctx context.Context, text string, now time.Time) ([]TaskDraft, error)
}

// HeuristicExtractor reads one draft per non-empty line. It understands
// #tags, @username, !high / !low / urgent and the words today / tomorrow.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(_ context.Context, text string, now time.Time) ([]TaskDraft, error) {
	var drafts []TaskDraft
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line == "" {
			continue
		}
		if d, ok := parseDraftLine(line, now); ok {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

func parseDraftLine(line string, now time.Time) (TaskDraft, bool) {
	draft := TaskDraft{Description: line, Tags: []string{}}
	var words []string
	for _, word := range strings.Fields(line) {
		bare := strings.ToLower(strings.Trim(word, ".,;:!?"))
		switch {
		case strings.HasPrefix(word, "#") && len(word) > 1:
			draft.Tags = append(draft.Tags, strings.TrimRight(word[1:], ".,;:!?"))
			continue
		case strings.HasPrefix(word, "@") && len(word) > 1:
			draft.AssigneeUsername = strings.TrimRight(word[1:], ".,;:!?")
			continue
		case word == "!high" || word == "!urgent":
			draft.Priority = models.TaskPriorityHigh
			continue
		case word == "!low":
			draft.Priority = models.TaskPriorityLow
			continue
		case bare == "urgent" || bare == "asap":
			draft.Priority = models.TaskPriorityHigh
		case bare == "today":
			draft.DueDate = endOfDay(now, 0)
		case bare == "tomorrow":
			draft.DueDate = endOfDay(now, 1)
		}
		words = append(words, word)
	}
	draft.Title = strings.TrimSpace(strings.Join(words, " "))
	return draft, draft.Title != ""
}

func endOfDay(now time.Time, addDays int) *time.Time {
	y, m, d := now.Date()
	t := time.Date(y, m, d+addDays, 23, 59, 0, 0, now.Location())
	return &t
}

// OpenAIExtractor asks a chat model to extract drafts.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor returns an extractor backed by the OpenAI API. An
// empty model selects GPT-4o.
func NewOpenAIExtractor(apiKey, model string) *OpenAIExtractor {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIExtractor{client: openai.NewClient(apiKey), model: model}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, text string, now time.Time) ([]TaskDraft, error) {
	if e.client == nil {
		return nil, ErrConverterNotConfigured
	}

	prompt := fmt.Sprintf(`You extract actionable tasks from a team chat message.

Current time: %s

Message:
%s

Reply with a JSON object of the form:
{"tasks": [
  {
    "title": "short task title",
    "description": "details from the message",
    "due_date": "deadline in RFC 3339, or null when none is stated",
    "priority": "low, medium or high",
    "tags": ["tag"],
    "assignee": "username mentioned with @, or empty"
  }
]}

Rules:
- Return {"tasks": []} when the message contains no task
- Turn relative deadlines such as "tomorrow" into absolute times
- Return JSON only`, now.Format(time.RFC3339), text)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	var payload struct {
		Tasks []TaskDraft `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return payload.Tasks, nil
}

// MessageConverter turns chat messages into tasks on the board.
type MessageConverter struct {
	extractor Extractor
	tasks     *TaskService
	roster    *Roster
	log       *zap.Logger
}

// NewMessageConverter creates a new MessageConverter.
func NewMessageConverter(extractor Extractor, taskService *TaskService, roster *Roster, log *zap.Logger) *MessageConverter {
	return &MessageConverter{
		extractor: extractor,
		tasks:     taskService,
		roster:    roster,
		log:       log,
	}
}

// ConvertInput is a chat message to convert. With DryRun set, drafts are
// returned without creating tasks.
type ConvertInput struct {
	Message string
	DryRun  bool
}

// ConvertResult holds the extracted drafts and, unless it was a dry run,
// the tasks created from them.
type ConvertResult struct {
	Drafts   []TaskDraft
	Created  []models.Task
	Warnings []string
}

// Convert extracts at most constants.MaxConvertedTasks drafts from the
// message and creates them as todo tasks. Drafts without a known @username
// are assigned to the author.
func (c *MessageConverter) Convert(ctx context.Context, input ConvertInput, author models.User) (*ConvertResult, error) {
	if c.extractor == nil {
		return nil, ErrConverterNotConfigured
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	drafts, err := c.extractor.Extract(ctx, message, c.tasks.now())
	if err != nil {
		return nil, fmt.Errorf("failed to extract tasks: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrNoTasksConverted
	}
	if len(drafts) > constants.MaxConvertedTasks {
		c.log.Info("message produced too many drafts, truncating",
			zap.Int("drafts", len(drafts)),
			zap.Int("max", constants.MaxConvertedTasks),
		)
		drafts = drafts[:constants.MaxConvertedTasks]
	}

	result := &ConvertResult{Drafts: drafts, Created: []models.Task{}, Warnings: []string{}}
	if input.DryRun {
		return result, nil
	}

	for _, d := range drafts {
		if !d.Priority.IsValid() {
			d.Priority = ""
		}
		m, err := c.tasks.CreateTask(ctx, tasks.CreateInput{
			Title:       d.Title,
			Description: d.Description,
			Assignee:    c.assigneeFor(d, author),
			DueDate:     d.DueDate,
			Priority:    d.Priority,
			Tags:        d.Tags,
		}, author)
		if err != nil {
			return nil, fmt.Errorf("failed to create task %q: %w", d.Title, err)
		}
		result.Created = append(result.Created, m.Task)
		if m.Warning != "" {
			result.Warnings = append(result.Warnings, m.Warning)
		}
	}
	return result, nil
}

func (c *MessageConverter) assigneeFor(d TaskDraft, author models.User) models.Assignee {
	if d.AssigneeUsername != "" {
		if u, ok := c.roster.UserByUsername(d.AssigneeUsername); ok {
			return models.IndividualAssignee{UserIDs: []string{u.ID}}
		}
	}
	return models.IndividualAssignee{UserIDs: []string{author.ID}}
}
