package repository_test

import (
	"testing"
	"time"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"
	"consulting-os/internal/testutil"
)

// TestSummaryApprovalStamps verifies the approval records who approved
// and when, and that generation metadata round-trips
func TestSummaryApprovalStamps(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	sessionRepo := repository.NewSessionRepository(containers.DB)
	summaryRepo := repository.NewSummaryRepository(containers.DB)

	session := &models.Session{
		EngagementID: fixtures.Engagement.ID,
		Title:        "Kickoff",
		ScheduledAt:  time.Now().Add(-24 * time.Hour),
		Status:       "completed",
	}
	if err := sessionRepo.Create(session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if session.SessionNumber != 1 {
		t.Errorf("Expected session_number 1, got %d", session.SessionNumber)
	}

	generatedAt := time.Now().UTC().Truncate(time.Millisecond)
	summary := &models.SessionSummary{
		SessionID:     session.ID,
		Content:       "We agreed on the hiring plan.",
		KeyTakeaways:  []string{"Hiring is the bottleneck"},
		NextSteps:     []string{"Draft the job post"},
		Generated:     true,
		AIGeneratedAt: &generatedAt,
	}
	if err := summaryRepo.Create(summary); err != nil {
		t.Fatalf("Failed to create summary: %v", err)
	}

	stored, err := summaryRepo.GetByID(summary.ID)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if stored.AIGeneratedAt == nil || !stored.AIGeneratedAt.Equal(generatedAt) {
		t.Errorf("Expected ai_generated_at %v, got %v", generatedAt, stored.AIGeneratedAt)
	}
	if stored.ApprovedBy != nil || stored.ApprovedAt != nil {
		t.Error("Draft summary should carry no approval stamps")
	}

	if err := summaryRepo.MarkApproved(summary.ID, fixtures.Consultant.ID); err != nil {
		t.Fatalf("Failed to approve summary: %v", err)
	}

	stored, err = summaryRepo.GetByID(summary.ID)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if stored.Status != "approved" {
		t.Errorf("Expected status approved, got %s", stored.Status)
	}
	if stored.ApprovedBy == nil || *stored.ApprovedBy != fixtures.Consultant.ID {
		t.Errorf("Expected approved_by %s, got %v", fixtures.Consultant.ID, stored.ApprovedBy)
	}
	if stored.ApprovedAt == nil {
		t.Error("Approval must stamp approved_at")
	}

	if err := summaryRepo.MarkPublished(summary.ID); err != nil {
		t.Fatalf("Failed to publish summary: %v", err)
	}
	stored, err = summaryRepo.GetByID(summary.ID)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if stored.Status != "published" || stored.PublishedAt == nil {
		t.Errorf("Expected published with published_at set, got status=%s published_at=%v",
			stored.Status, stored.PublishedAt)
	}
	if stored.ApprovedBy == nil || *stored.ApprovedBy != fixtures.Consultant.ID {
		t.Error("Publishing must keep the approval attribution")
	}
}
