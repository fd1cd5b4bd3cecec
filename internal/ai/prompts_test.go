package ai

import (
	"strings"
	"testing"
	"time"

	"consulting-os/internal/models"
)

func TestBuildProposalPrompt(t *testing.T) {
	input := ProposalInput{
		ClientName:      "Jordan Reyes",
		CompanyName:     "Reyes Logistics",
		Industry:        "Transportation",
		EngagementTitle: "Operations Overhaul",
		Responses: []models.IntakeResponse{
			{Question: "What is your biggest challenge?", Answer: "Scaling the dispatch team"},
			{Question: "What does success look like?", Answer: ""},
		},
	}

	prompt := BuildProposalPrompt(input)

	for _, want := range []string{
		"Jordan Reyes",
		"Reyes Logistics",
		"Transportation",
		"Operations Overhaul",
		"**What is your biggest challenge?**\nScaling the dispatch team",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Unanswered questions still appear, with a placeholder
	if !strings.Contains(prompt, "**What does success look like?**\nNo response") {
		t.Error("empty answer should render as 'No response'")
	}

	sections := []string{
		"## 1. Executive Summary",
		"## 2. Problem Statement",
		"## 3. Proposed Approach",
		"## 4. Expected Outcomes",
		"## 5. Timeline & Milestones",
		"## 6. Next Steps",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(prompt, s)
		if idx == -1 {
			t.Errorf("prompt missing section %q", s)
			continue
		}
		if idx < last {
			t.Errorf("section %q out of order", s)
		}
		last = idx
	}

	if !strings.Contains(prompt, "800-1200 words") {
		t.Error("prompt missing length guideline")
	}
}

func TestBuildProposalPromptDefaults(t *testing.T) {
	prompt := BuildProposalPrompt(ProposalInput{})

	if !strings.Contains(prompt, "- Name: Not provided") {
		t.Error("missing client name should render as 'Not provided'")
	}
	if !strings.Contains(prompt, "- Title: Consulting Engagement") {
		t.Error("missing engagement title should fall back to a default")
	}
	if strings.Contains(prompt, "- Company:") {
		t.Error("empty company should be omitted")
	}
}

func TestBuildSessionSummaryPrompt(t *testing.T) {
	scheduledAt := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	input := SummaryInput{
		SessionNumber:   3,
		ClientName:      "Jordan Reyes",
		EngagementTitle: "Operations Overhaul",
		ScheduledAt:     &scheduledAt,
		DurationMinutes: 60,
		Notes:           "Discussed hiring plan. Jordan will draft the job post.",
	}

	prompt := BuildSessionSummaryPrompt(input)

	for _, want := range []string{
		"- Session Number: 3",
		"- Duration: 60 minutes",
		"Discussed hiring plan. Jordan will draft the job post.",
		"## Session Overview",
		"## Action Items",
		"400-600 words",
		"```json",
		`"assigned_to": "client" | "consultant" | "both"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildProgressUpdatePrompt(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	target := 40.0
	current := 25.0
	input := ProgressInput{
		ClientName:      "Jordan Reyes",
		EngagementTitle: "Operations Overhaul",
		RecentSessions:  4,
		Goals: []models.Goal{
			{Title: "Hire two dispatchers", Status: "active", DueDate: &due},
			{Title: "Cut delivery time", Status: "active", TargetValue: &target, CurrentValue: &current},
			{Title: "Document onboarding", Status: "achieved"},
			{Title: "Old goal", Status: "abandoned"},
		},
		Actions: []models.Action{
			{Title: "Draft job post", Status: "completed"},
			{Title: "Review budget", Status: "pending", DueDate: &due},
		},
	}

	prompt := BuildProgressUpdatePrompt(input)

	for _, want := range []string{
		"- Recent Sessions: 4",
		"Active Goals (2):",
		"- Hire two dispatchers (Target: 2026-04-01)",
		"- Cut delivery time (63% of target)",
		"Achieved Goals (1):",
		"- ✓ Document onboarding",
		"Completed (1):",
		"- ✓ Draft job post",
		"Pending (1):",
		"- Review budget (Due: 2026-04-01)",
		"300-500 words",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Abandoned goals stay out of both buckets
	if strings.Contains(prompt, "Old goal") {
		t.Error("abandoned goal should not appear in the prompt")
	}
}

func TestSystemPromptMentionsMarkdown(t *testing.T) {
	if !strings.Contains(SystemPrompt, "Markdown") {
		t.Error("system prompt should require Markdown output")
	}
}
