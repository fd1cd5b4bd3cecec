package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"consulting-os/internal/models"
)

func TestMockProposalContainsAllSections(t *testing.T) {
	input := ProposalInput{
		ClientName:      "Jordan Reyes",
		CompanyName:     "Acme Widgets",
		EngagementTitle: "Operations Overhaul",
		Responses: []models.IntakeResponse{
			{Question: "What is your biggest challenge?", Answer: "Scaling the team"},
		},
	}

	doc := MockProposal(input)

	for _, want := range []string{
		"## Executive Summary",
		"## Problem Statement",
		"## Proposed Approach",
		"## Expected Outcomes",
		"## Timeline & Milestones",
		"## Next Steps",
		"MOCK proposal",
		"Jordan Reyes at Acme Widgets",
		"- **What is your biggest challenge?**: Scaling the team",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("mock proposal missing %q", want)
		}
	}
}

func TestMockProposalTruncatesLongAnswersOnRuneBoundary(t *testing.T) {
	input := ProposalInput{
		ClientName:      "Jordan Reyes",
		EngagementTitle: "Operations Overhaul",
		Responses: []models.IntakeResponse{
			{Question: "Describe the situation", Answer: strings.Repeat("Ümsätze steigen. ", 20)},
		},
	}

	doc := MockProposal(input)

	if !utf8.ValidString(doc) {
		t.Fatal("mock proposal contains invalid UTF-8")
	}
	if !strings.Contains(doc, "...") {
		t.Error("long answer should be truncated with an ellipsis")
	}
	if strings.Contains(doc, "�") {
		t.Error("truncation produced a replacement character")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 100, "short"},
		{"exactly", 7, "exactly"},
		{"abcdefgh", 4, "abcd..."},
		{"äöüäöü", 3, "äöü..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
