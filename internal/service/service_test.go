package service

import (
	"testing"
	"time"

	"consulting-os/internal/models"
	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

func TestValidateEngagementTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		wantErr bool
	}{
		{"proposal", "active", false},
		{"proposal", "cancelled", false},
		{"proposal", "completed", true},
		{"active", "paused", false},
		{"active", "completed", false},
		{"paused", "active", false},
		{"completed", "active", true},
		{"cancelled", "active", true},
		{"bogus", "active", true},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			err := validateEngagementTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateEngagementTransition(%q, %q) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestToggledActionStatus(t *testing.T) {
	now := time.Now()

	status, completedAt := ToggledActionStatus("pending", now)
	if status != "completed" {
		t.Errorf("pending should toggle to completed, got %q", status)
	}
	if completedAt == nil || !completedAt.Equal(now) {
		t.Errorf("completing should stamp the completion time, got %v", completedAt)
	}

	status, completedAt = ToggledActionStatus("completed", now)
	if status != "pending" {
		t.Errorf("completed should toggle to pending, got %q", status)
	}
	if completedAt != nil {
		t.Errorf("reopening should clear the completion time, got %v", completedAt)
	}
}

func TestToggledActionStatusIsSelfInverse(t *testing.T) {
	now := time.Now()
	for _, start := range []string{"pending", "completed"} {
		mid, _ := ToggledActionStatus(start, now)
		back, _ := ToggledActionStatus(mid, now)
		if back != start {
			t.Errorf("toggling twice from %q ended at %q", start, back)
		}
	}
}

func TestValidateRejectionReason(t *testing.T) {
	tests := []struct {
		name    string
		reason  string
		want    string
		wantErr bool
	}{
		{"plain reason", "budget is too high", "budget is too high", false},
		{"trims whitespace", "  needs more detail  ", "needs more detail", false},
		{"empty", "", "", true},
		{"whitespace only", "   \t\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRejectionReason(tt.reason)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRejectionReason(%q) error = %v, wantErr %v", tt.reason, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateRejectionReason(%q) = %q, want %q", tt.reason, got, tt.want)
			}
		})
	}
}

func TestSummaryVisibleToClient(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	future := time.Now().Add(2 * time.Hour)

	tests := []struct {
		name    string
		session models.Session
		summary models.SessionSummary
		want    bool
	}{
		{
			name:    "published for completed session",
			session: models.Session{Status: "completed", ScheduledAt: future},
			summary: models.SessionSummary{Status: "published", Content: "recap"},
			want:    true,
		},
		{
			name:    "published for past scheduled session",
			session: models.Session{Status: "scheduled", ScheduledAt: past},
			summary: models.SessionSummary{Status: "published", Content: "recap"},
			want:    true,
		},
		{
			name:    "published but session still upcoming",
			session: models.Session{Status: "scheduled", ScheduledAt: future},
			summary: models.SessionSummary{Status: "published", Content: "recap"},
			want:    false,
		},
		{
			name:    "draft never visible",
			session: models.Session{Status: "completed", ScheduledAt: past},
			summary: models.SessionSummary{Status: "draft", Content: "recap"},
			want:    false,
		},
		{
			name:    "approved not yet visible",
			session: models.Session{Status: "completed", ScheduledAt: past},
			summary: models.SessionSummary{Status: "approved", Content: "recap"},
			want:    false,
		},
		{
			name:    "published but empty content",
			session: models.Session{Status: "completed", ScheduledAt: past},
			summary: models.SessionSummary{Status: "published", Content: ""},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummaryVisibleToClient(&tt.session, &tt.summary); got != tt.want {
				t.Errorf("SummaryVisibleToClient = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsParty(t *testing.T) {
	consultant := uuid.New()
	clientUser := uuid.New()
	stranger := uuid.New()

	parties := &repository.EngagementParties{
		ConsultantUserID: consultant,
		ClientUserID:     &clientUser,
	}

	if !isParty(parties, consultant) {
		t.Error("consultant should be a party")
	}
	if !isParty(parties, clientUser) {
		t.Error("client user should be a party")
	}
	if isParty(parties, stranger) {
		t.Error("stranger should not be a party")
	}

	// Engagement whose client has no portal account yet
	unlinked := &repository.EngagementParties{ConsultantUserID: consultant}
	if isParty(unlinked, clientUser) {
		t.Error("unlinked client user should not be a party")
	}
	if isClientParty(unlinked, clientUser) {
		t.Error("unlinked client user should not be the client party")
	}
}

func TestPublishWithNilPublisher(t *testing.T) {
	// Must not panic
	publish(nil, uuid.New(), "goal.updated", nil)
}

func TestSelectCurrentProposal(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		ts := base.Add(time.Duration(h) * time.Hour)
		return &ts
	}

	draft := models.Proposal{ID: uuid.New(), Status: "draft", CreatedAt: base.Add(99 * time.Hour)}
	rejected := models.Proposal{ID: uuid.New(), Status: "rejected", SentAt: at(1), CreatedAt: base}
	sent := models.Proposal{ID: uuid.New(), Status: "sent", SentAt: at(5), CreatedAt: base.Add(time.Hour)}
	legacy := models.Proposal{ID: uuid.New(), Status: "approved", CreatedAt: base.Add(2 * time.Hour)}

	t.Run("drafts never selected", func(t *testing.T) {
		if got := SelectCurrentProposal([]models.Proposal{draft}); got != nil {
			t.Errorf("expected nil, got %s", got.Status)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		if got := SelectCurrentProposal(nil); got != nil {
			t.Error("expected nil for empty list")
		}
	})

	t.Run("latest sent wins", func(t *testing.T) {
		got := SelectCurrentProposal([]models.Proposal{rejected, sent, draft})
		if got == nil || got.ID != sent.ID {
			t.Errorf("expected the later sent proposal, got %+v", got)
		}
	})

	t.Run("nil sent_at sorts last", func(t *testing.T) {
		got := SelectCurrentProposal([]models.Proposal{legacy, rejected})
		if got == nil || got.ID != rejected.ID {
			t.Errorf("expected the sent-and-rejected proposal over the unsent legacy row, got %+v", got)
		}
	})

	t.Run("created_at breaks ties among unsent", func(t *testing.T) {
		older := models.Proposal{ID: uuid.New(), Status: "approved", CreatedAt: base}
		got := SelectCurrentProposal([]models.Proposal{older, legacy})
		if got == nil || got.ID != legacy.ID {
			t.Errorf("expected the newer legacy row, got %+v", got)
		}
	})
}

func TestGoalProgress(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		goal   models.Goal
		want   int
		wantOK bool
	}{
		{"no target", models.Goal{CurrentValue: f(5)}, 0, false},
		{"no current", models.Goal{TargetValue: f(10)}, 0, false},
		{"zero target", models.Goal{TargetValue: f(0), CurrentValue: f(5)}, 0, false},
		{"halfway", models.Goal{TargetValue: f(40), CurrentValue: f(20)}, 50, true},
		{"rounded", models.Goal{TargetValue: f(40), CurrentValue: f(25)}, 63, true},
		{"overshoot capped", models.Goal{TargetValue: f(10), CurrentValue: f(15)}, 100, true},
		{"negative floored", models.Goal{TargetValue: f(10), CurrentValue: f(-3)}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.goal.Progress()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Progress() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
