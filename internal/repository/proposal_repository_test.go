package repository_test

import (
	"testing"
	"time"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"
	"consulting-os/internal/testutil"

	"github.com/google/uuid"
)

// TestProposalLifecycle walks a proposal through draft, sent, and accepted,
// verifying the status guards on each transition
func TestProposalLifecycle(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewProposalRepository(containers.DB)

	draft := &models.Proposal{
		EngagementID: fixtures.Engagement.ID,
		Content:      "# Proposal\n\nScope, timeline, and fees.",
		Generated:    true,
		ModelUsed:    "mock",
	}
	if err := repo.Create(draft); err != nil {
		t.Fatalf("Failed to create draft: %v", err)
	}
	if draft.Status != "draft" {
		t.Errorf("Expected status draft, got %s", draft.Status)
	}

	// Drafts are not visible to clients
	current, err := repo.GetCurrent(fixtures.Engagement.ID)
	if err != nil {
		t.Fatalf("Failed to get current proposal: %v", err)
	}
	if current != nil {
		t.Errorf("Draft should not be visible as the current proposal, got status %s", current.Status)
	}

	// Accepting a draft must fail: only sent proposals can be answered
	if _, err := repo.MarkAccepted(draft.ID); err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound accepting a draft, got %v", err)
	}

	updated := "# Proposal v2\n\nRevised scope."
	if err := repo.UpdateContent(draft.ID, updated); err != nil {
		t.Fatalf("Failed to update draft content: %v", err)
	}

	sent, err := repo.MarkSent(draft.ID, fixtures.Consultant.ID)
	if err != nil {
		t.Fatalf("Failed to send proposal: %v", err)
	}
	if sent.Status != "sent" {
		t.Errorf("Expected status sent, got %s", sent.Status)
	}
	if sent.Content != updated {
		t.Errorf("Sent proposal lost the updated content: %q", sent.Content)
	}
	if sent.ApprovedBy == nil || *sent.ApprovedBy != fixtures.Consultant.ID {
		t.Errorf("Expected approved_by %s, got %v", fixtures.Consultant.ID, sent.ApprovedBy)
	}
	if sent.ApprovedAt == nil || sent.SentAt == nil {
		t.Error("Sending must stamp both approved_at and sent_at")
	}

	// Sent proposals are frozen
	if err := repo.UpdateContent(draft.ID, "tampered"); err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound editing a sent proposal, got %v", err)
	}
	if err := repo.Delete(draft.ID); err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound deleting a sent proposal, got %v", err)
	}

	// Sending twice must fail
	if _, err := repo.MarkSent(draft.ID, fixtures.Consultant.ID); err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound sending twice, got %v", err)
	}

	current, err = repo.GetCurrent(fixtures.Engagement.ID)
	if err != nil {
		t.Fatalf("Failed to get current proposal: %v", err)
	}
	if current == nil || current.ID != draft.ID {
		t.Fatal("Sent proposal should be the current proposal")
	}

	accepted, err := repo.MarkAccepted(draft.ID)
	if err != nil {
		t.Fatalf("Failed to accept proposal: %v", err)
	}
	if accepted.Status != "accepted" {
		t.Errorf("Expected status accepted, got %s", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Error("Acceptance must stamp responded_at")
	}

	// The decision is final
	if _, err := repo.MarkRejected(draft.ID, "changed my mind"); err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound rejecting an accepted proposal, got %v", err)
	}
}

// TestProposalRejectionStartsFreshDraft verifies that rejecting a sent
// proposal leaves it immutable and that a new draft coexists with it
func TestProposalRejectionStartsFreshDraft(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewProposalRepository(containers.DB)

	first := &models.Proposal{
		EngagementID: fixtures.Engagement.ID,
		Content:      "Round one.",
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Failed to create draft: %v", err)
	}
	if _, err := repo.MarkSent(first.ID, fixtures.Consultant.ID); err != nil {
		t.Fatalf("Failed to send proposal: %v", err)
	}

	rejected, err := repo.MarkRejected(first.ID, "budget too high")
	if err != nil {
		t.Fatalf("Failed to reject proposal: %v", err)
	}
	if rejected.Status != "rejected" {
		t.Errorf("Expected status rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "budget too high" {
		t.Errorf("Expected rejection reason to be stored, got %v", rejected.RejectionReason)
	}

	// A revised draft is a new row; the rejected one stays on record
	second := &models.Proposal{
		EngagementID: fixtures.Engagement.ID,
		Content:      "Round two, lower budget.",
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("Failed to create revised draft: %v", err)
	}

	proposals, err := repo.ListByEngagement(fixtures.Engagement.ID)
	if err != nil {
		t.Fatalf("Failed to list proposals: %v", err)
	}
	if len(proposals) != 2 {
		t.Fatalf("Expected 2 proposals, got %d", len(proposals))
	}

	// The client still sees the rejected one until the new draft is sent
	current, err := repo.GetCurrent(fixtures.Engagement.ID)
	if err != nil {
		t.Fatalf("Failed to get current proposal: %v", err)
	}
	if current == nil || current.ID != first.ID {
		t.Error("Rejected proposal should remain the current proposal while the revision is a draft")
	}

	if _, err := repo.GetByID(uuid.New()); err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound for unknown id, got %v", err)
	}
}

// TestProposalGenerationProvenance verifies that regenerating over an
// existing draft rewrites the provenance fields instead of only the content
func TestProposalGenerationProvenance(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewProposalRepository(containers.DB)

	generatedAt := time.Now().UTC().Truncate(time.Millisecond)
	draft := &models.Proposal{
		EngagementID:  fixtures.Engagement.ID,
		Content:       "Model output.",
		Generated:     true,
		ModelUsed:     "claude-sonnet-4-20250514",
		AIGeneratedAt: &generatedAt,
	}
	if err := repo.Create(draft); err != nil {
		t.Fatalf("Failed to create draft: %v", err)
	}

	stored, err := repo.GetByID(draft.ID)
	if err != nil {
		t.Fatalf("Failed to get proposal: %v", err)
	}
	if !stored.Generated || stored.ModelUsed != "claude-sonnet-4-20250514" {
		t.Errorf("Provenance not stored: generated=%v model=%q", stored.Generated, stored.ModelUsed)
	}
	if stored.AIGeneratedAt == nil || !stored.AIGeneratedAt.Equal(generatedAt) {
		t.Errorf("Expected ai_generated_at %v, got %v", generatedAt, stored.AIGeneratedAt)
	}

	// Regeneration without a provider falls back to the placeholder; the
	// old model attribution must not survive
	if err := repo.UpdateGeneration(draft.ID, "Placeholder document.", false, "", nil); err != nil {
		t.Fatalf("Failed to update generation: %v", err)
	}

	stored, err = repo.GetByID(draft.ID)
	if err != nil {
		t.Fatalf("Failed to get proposal: %v", err)
	}
	if stored.Content != "Placeholder document." {
		t.Errorf("Content not replaced: %q", stored.Content)
	}
	if stored.Generated || stored.ModelUsed != "" || stored.AIGeneratedAt != nil {
		t.Errorf("Stale provenance after regeneration: generated=%v model=%q ai_generated_at=%v",
			stored.Generated, stored.ModelUsed, stored.AIGeneratedAt)
	}

	// Sent proposals are frozen for regeneration too
	if _, err := repo.MarkSent(draft.ID, fixtures.Consultant.ID); err != nil {
		t.Fatalf("Failed to send proposal: %v", err)
	}
	err = repo.UpdateGeneration(draft.ID, "tampered", true, "claude-sonnet-4-20250514", &generatedAt)
	if err != repository.ErrProposalNotFound {
		t.Errorf("Expected ErrProposalNotFound regenerating a sent proposal, got %v", err)
	}
}
