package repository_test

import (
	"testing"
	"time"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"
	"consulting-os/internal/testutil"
)

// TestUsageReportTotals verifies that both the per-entry listing and the
// per-kind aggregation expose total_tokens alongside the input/output split
func TestUsageReportTotals(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewUsageRepository(containers.DB)

	entries := []*models.AIUsageLog{
		{
			UserID:       fixtures.Consultant.ID,
			EngagementID: &fixtures.Engagement.ID,
			Kind:         "proposal",
			Model:        "claude-sonnet-4-20250514",
			InputTokens:  1200,
			OutputTokens: 800,
			CostUSD:      0.0156,
		},
		{
			UserID:       fixtures.Consultant.ID,
			EngagementID: &fixtures.Engagement.ID,
			Kind:         "proposal",
			Model:        "claude-sonnet-4-20250514",
			InputTokens:  300,
			OutputTokens: 450,
			CostUSD:      0.0077,
		},
		{
			UserID:       fixtures.Consultant.ID,
			EngagementID: &fixtures.Engagement.ID,
			Kind:         "session_summary",
			Model:        "claude-sonnet-4-20250514",
			InputTokens:  2000,
			OutputTokens: 600,
			CostUSD:      0.0150,
		},
	}
	for _, entry := range entries {
		if err := repo.Create(entry); err != nil {
			t.Fatalf("Failed to create usage log: %v", err)
		}
	}

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)

	listed, err := repo.ListByUser(fixtures.Consultant.ID, from, to)
	if err != nil {
		t.Fatalf("Failed to list usage logs: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 usage logs, got %d", len(listed))
	}
	for _, entry := range listed {
		if entry.TotalTokens != entry.InputTokens+entry.OutputTokens {
			t.Errorf("Expected total_tokens %d for %s entry, got %d",
				entry.InputTokens+entry.OutputTokens, entry.Kind, entry.TotalTokens)
		}
	}

	totals, err := repo.SummarizeByUser(fixtures.Consultant.ID, from, to)
	if err != nil {
		t.Fatalf("Failed to summarize usage: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("Expected 2 usage totals, got %d", len(totals))
	}

	// Kinds come back alphabetically
	proposal := totals[0]
	if proposal.Kind != "proposal" {
		t.Fatalf("Expected kind proposal first, got %s", proposal.Kind)
	}
	if proposal.Requests != 2 {
		t.Errorf("Expected 2 proposal requests, got %d", proposal.Requests)
	}
	if proposal.InputTokens != 1500 || proposal.OutputTokens != 1250 {
		t.Errorf("Expected 1500/1250 proposal tokens, got %d/%d", proposal.InputTokens, proposal.OutputTokens)
	}
	if proposal.TotalTokens != 2750 {
		t.Errorf("Expected 2750 total proposal tokens, got %d", proposal.TotalTokens)
	}

	summary := totals[1]
	if summary.Kind != "session_summary" {
		t.Fatalf("Expected kind session_summary second, got %s", summary.Kind)
	}
	if summary.TotalTokens != 2600 {
		t.Errorf("Expected 2600 total summary tokens, got %d", summary.TotalTokens)
	}
}
