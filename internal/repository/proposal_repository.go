package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"consulting-os/internal/models"

	"github.com/google/uuid"
)

var ErrProposalNotFound = errors.New("proposal not found")

// ProposalRepository handles proposal database operations
type ProposalRepository struct {
	db *sql.DB
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *sql.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `id, engagement_id, content, status, generated, COALESCE(model_used, ''),
	       ai_generated_at, approved_by, approved_at, sent_at, responded_at, rejection_reason, created_at, updated_at`

func scanProposalRow(scan func(dest ...any) error) (*models.Proposal, error) {
	p := &models.Proposal{}
	err := scan(
		&p.ID,
		&p.EngagementID,
		&p.Content,
		&p.Status,
		&p.Generated,
		&p.ModelUsed,
		&p.AIGeneratedAt,
		&p.ApprovedBy,
		&p.ApprovedAt,
		&p.SentAt,
		&p.RespondedAt,
		&p.RejectionReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create creates a new proposal draft
func (r *ProposalRepository) Create(proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (engagement_id, content, status, generated, model_used, ai_generated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	if proposal.Status == "" {
		proposal.Status = "draft"
	}
	err := r.db.QueryRow(
		query,
		proposal.EngagementID,
		proposal.Content,
		proposal.Status,
		proposal.Generated,
		proposal.ModelUsed,
		proposal.AIGeneratedAt,
		now,
		now,
	).Scan(&proposal.ID)

	if err != nil {
		return fmt.Errorf("failed to create proposal: %w", err)
	}

	proposal.CreatedAt = now
	proposal.UpdatedAt = now
	return nil
}

// GetByID retrieves a proposal by ID
func (r *ProposalRepository) GetByID(id uuid.UUID) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	proposal, err := scanProposalRow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return proposal, nil
}

// ListByEngagement lists all proposals of an engagement, newest first
func (r *ProposalRepository) ListByEngagement(engagementID uuid.UUID) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE engagement_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}()

	var proposals []models.Proposal
	for rows.Next() {
		proposal, err := scanProposalRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, *proposal)
	}

	return proposals, rows.Err()
}

// GetCurrent returns the proposal a client should see for an engagement:
// the most recently sent among sent, accepted and rejected (plus any
// legacy approved rows), with creation time breaking ties. Drafts are
// never visible to clients.
func (r *ProposalRepository) GetCurrent(engagementID uuid.UUID) (*models.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE engagement_id = $1 AND status IN ('approved', 'sent', 'accepted', 'rejected')
		ORDER BY sent_at DESC NULLS LAST, created_at DESC
		LIMIT 1
	`

	proposal, err := scanProposalRow(r.db.QueryRow(query, engagementID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current proposal: %w", err)
	}
	return proposal, nil
}

// UpdateContent replaces the draft content. Only drafts are editable.
func (r *ProposalRepository) UpdateContent(id uuid.UUID, content string) error {
	query := `UPDATE proposals SET content = $1, updated_at = $2 WHERE id = $3 AND status = 'draft'`
	result, err := r.db.Exec(query, content, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update proposal: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// UpdateGeneration replaces a draft's content together with its
// provenance fields. Regenerating over a hand-written draft (or the
// other way around) must not leave the old generated/model_used values
// behind.
func (r *ProposalRepository) UpdateGeneration(id uuid.UUID, content string, generated bool, modelUsed string, aiGeneratedAt *time.Time) error {
	query := `
		UPDATE proposals
		SET content = $1, generated = $2, model_used = NULLIF($3, ''), ai_generated_at = $4, updated_at = $5
		WHERE id = $6 AND status = 'draft'
	`
	result, err := r.db.Exec(query, content, generated, modelUsed, aiGeneratedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update proposal generation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// MarkSent approves and sends a draft in one step. The approval stamps
// and sent_at are written together so the proposal is never observable
// as approved-but-unsent.
func (r *ProposalRepository) MarkSent(id, approvedBy uuid.UUID) (*models.Proposal, error) {
	query := `
		UPDATE proposals
		SET status = 'sent', approved_by = $1, approved_at = $2, sent_at = $2, updated_at = $2
		WHERE id = $3 AND status = 'draft'
		RETURNING ` + proposalColumns + `
	`

	proposal, err := scanProposalRow(r.db.QueryRow(query, approvedBy, time.Now(), id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to send proposal: %w", err)
	}
	return proposal, nil
}

// MarkAccepted records the client's acceptance of a sent proposal
func (r *ProposalRepository) MarkAccepted(id uuid.UUID) (*models.Proposal, error) {
	query := `
		UPDATE proposals
		SET status = 'accepted', responded_at = $1, updated_at = $1
		WHERE id = $2 AND status IN ('approved', 'sent')
		RETURNING ` + proposalColumns + `
	`

	proposal, err := scanProposalRow(r.db.QueryRow(query, time.Now(), id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept proposal: %w", err)
	}
	return proposal, nil
}

// MarkRejected records the client's rejection with the given reason
func (r *ProposalRepository) MarkRejected(id uuid.UUID, reason string) (*models.Proposal, error) {
	query := `
		UPDATE proposals
		SET status = 'rejected', rejection_reason = $1, responded_at = $2, updated_at = $2
		WHERE id = $3 AND status IN ('approved', 'sent')
		RETURNING ` + proposalColumns + `
	`

	proposal, err := scanProposalRow(r.db.QueryRow(query, reason, time.Now(), id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject proposal: %w", err)
	}
	return proposal, nil
}

// Delete removes a proposal draft
func (r *ProposalRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM proposals WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrProposalNotFound
	}
	return nil
}
