package ai

import (
	"strings"
	"testing"
	"time"
)

const summaryWithActions = "## Session Overview\n\nGood progress this week.\n\n" +
	"```json\n" +
	`{
  "actions": [
    {"title": "Draft job post", "description": "Post to two boards", "assigned_to": "client", "due_date": "2026-04-01"},
    {"title": "Share compensation benchmarks", "assigned_to": "consultant", "due_date": null},
    {"title": "  ", "assigned_to": "client"},
    {"title": "Align on budget", "assigned_to": "everyone"}
  ]
}` + "\n```\n\nWrap-up notes."

func TestExtractActions(t *testing.T) {
	actions := ExtractActions(summaryWithActions)

	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}

	first := actions[0]
	if first.Title != "Draft job post" || first.Description != "Post to two boards" || first.AssignedTo != "client" {
		t.Errorf("unexpected first action: %+v", first)
	}
	wantDue := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if first.DueDate == nil || !first.DueDate.Equal(wantDue) {
		t.Errorf("expected due date %v, got %v", wantDue, first.DueDate)
	}

	if actions[1].DueDate != nil {
		t.Errorf("null due date should stay nil, got %v", actions[1].DueDate)
	}

	// Unknown assignee falls back to client
	if actions[2].AssignedTo != "client" {
		t.Errorf("expected fallback assignee client, got %q", actions[2].AssignedTo)
	}
}

func TestExtractActionsTolerance(t *testing.T) {
	cases := []struct {
		name    string
		summary string
	}{
		{"no block", "## Session Overview\n\nNo actions this week."},
		{"unterminated block", "Summary\n```json\n{\"actions\": ["},
		{"malformed json", "Summary\n```json\nnot json at all\n```"},
		{"wrong shape", "Summary\n```json\n{\"items\": []}\n```"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractActions(tc.summary); len(got) != 0 {
				t.Errorf("expected no actions, got %d", len(got))
			}
		})
	}
}

func TestStripActionBlock(t *testing.T) {
	stripped := StripActionBlock(summaryWithActions)

	if stripped == summaryWithActions {
		t.Fatal("expected the JSON block to be removed")
	}
	for _, unwanted := range []string{"```json", "\"actions\""} {
		if strings.Contains(stripped, unwanted) {
			t.Errorf("stripped summary still contains %q", unwanted)
		}
	}
	if !strings.Contains(stripped, "Good progress this week.") || !strings.Contains(stripped, "Wrap-up notes.") {
		t.Error("stripped summary lost surrounding prose")
	}
}

func TestStripActionBlockWithoutBlock(t *testing.T) {
	summary := "## Session Overview\n\nNothing to extract."
	if got := StripActionBlock(summary); got != summary {
		t.Errorf("summary without a block should be unchanged, got %q", got)
	}
}
