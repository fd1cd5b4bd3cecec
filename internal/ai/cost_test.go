package ai

import (
	"math"
	"strings"
	"testing"

	"consulting-os/internal/models"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name         string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{"zero usage", 0, 0, 0},
		{"input only", 1000, 0, 0.003},
		{"output only", 0, 1000, 0.015},
		{"typical proposal", 2500, 1200, 0.0255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCost(tt.inputTokens, tt.outputTokens)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateCost(%d, %d) = %v, want %v", tt.inputTokens, tt.outputTokens, got, tt.want)
			}
		})
	}
}

func TestMockProposal(t *testing.T) {
	input := ProposalInput{
		ClientName:      "Jordan Reyes",
		CompanyName:     "Reyes Logistics",
		EngagementTitle: "Operations Overhaul",
		Responses: []models.IntakeResponse{
			{Question: "Biggest challenge?", Answer: strings.Repeat("x", 150)},
			{Question: "Q2", Answer: "short"},
			{Question: "Q3", Answer: "short"},
			{Question: "Q4", Answer: "should be truncated away"},
		},
	}

	content := MockProposal(input)

	if !strings.Contains(content, "Jordan Reyes at Reyes Logistics on Operations Overhaul") {
		t.Error("mock proposal missing client and engagement line")
	}
	for _, section := range []string{
		"## Executive Summary",
		"## Problem Statement",
		"## Proposed Approach",
		"## Expected Outcomes",
		"## Timeline & Milestones",
		"## Next Steps",
	} {
		if !strings.Contains(content, section) {
			t.Errorf("mock proposal missing section %q", section)
		}
	}

	// Long answers are truncated to 100 characters with an ellipsis
	if !strings.Contains(content, strings.Repeat("x", 100)+"...") {
		t.Error("long answer should be truncated")
	}
	if strings.Contains(content, strings.Repeat("x", 101)) {
		t.Error("truncation should cap answers at 100 characters")
	}

	// Only the first three responses are quoted
	if strings.Contains(content, "Q4") {
		t.Error("mock proposal should only quote the first three responses")
	}

	if !strings.Contains(content, "MOCK proposal generated for development") {
		t.Error("mock proposal must carry the development marker")
	}
}

func TestMockProposalWithoutCompany(t *testing.T) {
	content := MockProposal(ProposalInput{
		ClientName:      "Jordan Reyes",
		EngagementTitle: "Operations Overhaul",
	})

	if !strings.Contains(content, "Jordan Reyes on Operations Overhaul") {
		t.Error("mock proposal should omit the company clause when none is set")
	}
	if strings.Contains(content, " at  on") {
		t.Error("mock proposal rendered an empty company name")
	}
}
