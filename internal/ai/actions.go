package ai

import (
	"encoding/json"
	"strings"
	"time"
)

// DraftAction is an action item extracted from a generated session summary.
type DraftAction struct {
	Title       string
	Description string
	AssignedTo  string
	DueDate     *time.Time
}

type rawAction struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  string  `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

type actionBlock struct {
	Actions []rawAction `json:"actions"`
}

// ExtractActions pulls the action items out of a summary's fenced JSON
// block. The model does not always follow the format, so any missing or
// malformed block yields an empty slice rather than an error.
func ExtractActions(summary string) []DraftAction {
	payload, ok := extractJSONBlock(summary)
	if !ok {
		return nil
	}

	var block actionBlock
	if err := json.Unmarshal([]byte(payload), &block); err != nil {
		return nil
	}

	actions := make([]DraftAction, 0, len(block.Actions))
	for _, raw := range block.Actions {
		title := strings.TrimSpace(raw.Title)
		if title == "" {
			continue
		}

		assignedTo := raw.AssignedTo
		switch assignedTo {
		case "client", "consultant", "both":
		default:
			assignedTo = "client"
		}

		action := DraftAction{
			Title:       title,
			Description: strings.TrimSpace(raw.Description),
			AssignedTo:  assignedTo,
		}
		if raw.DueDate != nil {
			if due, err := time.Parse("2006-01-02", *raw.DueDate); err == nil {
				action.DueDate = &due
			}
		}
		actions = append(actions, action)
	}
	return actions
}

// StripActionBlock removes the fenced JSON block from a summary so the
// published content holds only the prose.
func StripActionBlock(summary string) string {
	start := strings.Index(summary, "```json")
	if start == -1 {
		return summary
	}
	rest := summary[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return summary
	}
	return strings.TrimSpace(summary[:start] + rest[end+len("```"):])
}

func extractJSONBlock(s string) (string, bool) {
	start := strings.Index(s, "```json")
	if start == -1 {
		return "", false
	}
	rest := s[start+len("```json"):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
