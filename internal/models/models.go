package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         string     `json:"role" db:"role"` // "consultant" or "client"
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Client represents a client account managed by a consultant
type Client struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ConsultantID uuid.UUID  `json:"consultant_id" db:"consultant_id"`
	UserID       *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	CompanyName  string     `json:"company_name" db:"company_name"`
	ContactName  string     `json:"contact_name" db:"contact_name"`
	Industry     string     `json:"industry,omitempty" db:"industry"`
	Status       string     `json:"status" db:"status"` // prospect, active, inactive
	OnboardedAt  *time.Time `json:"onboarded_at,omitempty" db:"onboarded_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Engagement represents a unit of consulting work for a client
type Engagement struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ClientID    uuid.UUID  `json:"client_id" db:"client_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Status      string     `json:"status" db:"status"` // proposal, active, paused, completed, cancelled
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Goal represents a measurable objective inside an engagement
type Goal struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	EngagementID uuid.UUID  `json:"engagement_id" db:"engagement_id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description,omitempty" db:"description"`
	Status       string     `json:"status" db:"status"` // active, achieved, abandoned
	TargetValue  *float64   `json:"target_value,omitempty" db:"target_value"`
	CurrentValue *float64   `json:"current_value,omitempty" db:"current_value"`
	Unit         *string    `json:"unit,omitempty" db:"unit"`
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Progress returns the goal completion percentage, rounded and capped at 100.
// The second return value is false when the goal has no numeric target.
func (g *Goal) Progress() (int, bool) {
	if g.TargetValue == nil || g.CurrentValue == nil || *g.TargetValue == 0 {
		return 0, false
	}
	pct := int(math.Round(*g.CurrentValue / *g.TargetValue * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct, true
}

// Action represents a concrete task inside an engagement
type Action struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	EngagementID uuid.UUID  `json:"engagement_id" db:"engagement_id"`
	GoalID       *uuid.UUID `json:"goal_id,omitempty" db:"goal_id"`
	SessionID    *uuid.UUID `json:"session_id,omitempty" db:"session_id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description,omitempty" db:"description"`
	Status       string     `json:"status" db:"status"`           // pending, completed
	AssignedTo   string     `json:"assigned_to" db:"assigned_to"` // "consultant" or "client"
	DueDate      *time.Time `json:"due_date,omitempty" db:"due_date"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Session represents a scheduled consulting session
type Session struct {
	ID              uuid.UUID `json:"id" db:"id"`
	EngagementID    uuid.UUID `json:"engagement_id" db:"engagement_id"`
	SessionNumber   int       `json:"session_number" db:"session_number"`
	Title           string    `json:"title" db:"title"`
	ScheduledAt     time.Time `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Status          string    `json:"status" db:"status"` // scheduled, completed, cancelled
	Notes           string    `json:"notes,omitempty" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SessionSummary represents a write-up of a session shared with the client
type SessionSummary struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SessionID     uuid.UUID  `json:"session_id" db:"session_id"`
	Content       string     `json:"content" db:"content"`
	KeyTakeaways  []string   `json:"key_takeaways" db:"key_takeaways"`
	NextSteps     []string   `json:"next_steps" db:"next_steps"`
	Status        string     `json:"status" db:"status"` // draft, approved, published
	Generated     bool       `json:"generated" db:"generated"`
	AIGeneratedAt *time.Time `json:"ai_generated_at,omitempty" db:"ai_generated_at"`
	ApprovedBy    *uuid.UUID `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// IntakeResponse is a single question and answer pair on an intake form
type IntakeResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// IntakeForm represents a client's answers to the onboarding questionnaire
type IntakeForm struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	ClientID    uuid.UUID        `json:"client_id" db:"client_id"`
	Responses   []IntakeResponse `json:"responses" db:"responses"`
	Status      string           `json:"status" db:"status"` // pending, completed
	CompletedAt *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// Proposal represents an engagement proposal shown to the client.
// Approval and sending happen in a single step, so a proposal is never
// persisted as approved-but-unsent.
type Proposal struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	EngagementID    uuid.UUID  `json:"engagement_id" db:"engagement_id"`
	Content         string     `json:"content" db:"content"`
	Status          string     `json:"status" db:"status"` // draft, approved, sent, accepted, rejected
	Generated       bool       `json:"generated" db:"generated"`
	ModelUsed       string     `json:"model_used,omitempty" db:"model_used"`
	AIGeneratedAt   *time.Time `json:"ai_generated_at,omitempty" db:"ai_generated_at"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	SentAt          *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Message represents a message on an engagement thread
type Message struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	EngagementID uuid.UUID  `json:"engagement_id" db:"engagement_id"`
	SenderID     uuid.UUID  `json:"sender_id" db:"sender_id"`
	Body         string     `json:"body" db:"body"`
	ReadAt       *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Notification represents an in-app notification for a user
type Notification struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	Type         string     `json:"type" db:"type"`
	Title        string     `json:"title" db:"title"`
	Body         string     `json:"body,omitempty" db:"body"`
	EngagementID *uuid.UUID `json:"engagement_id,omitempty" db:"engagement_id"`
	ReadAt       *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// AIUsageLog records one model invocation for cost reporting
type AIUsageLog struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	EngagementID *uuid.UUID `json:"engagement_id,omitempty" db:"engagement_id"`
	Kind         string     `json:"kind" db:"kind"` // proposal, session_summary, progress_update
	Model        string     `json:"model" db:"model"`
	InputTokens  int        `json:"input_tokens" db:"input_tokens"`
	OutputTokens int        `json:"output_tokens" db:"output_tokens"`
	TotalTokens  int        `json:"total_tokens" db:"-"` // derived, input + output
	CostUSD      float64    `json:"cost_usd" db:"cost_usd"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// AuthSession represents a user session
type AuthSession struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	SessionID      string    `json:"session_id" db:"session_id"` // Groups access and refresh tokens from same login
	JTI            string    `json:"jti" db:"jti"`
	TokenType      string    `json:"token_type" db:"token_type"` // "access" or "refresh"
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty" db:"user_agent"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	UserEmail *string    `json:"user_email,omitempty" db:"user_email"`
	Action    string     `json:"action" db:"action"`
	Resource  string     `json:"resource" db:"resource"`
	Details   string     `json:"details,omitempty" db:"details"`
	IPAddress string     `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string     `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// EngagementKey holds the wrapped data key used to encrypt session notes
type EngagementKey struct {
	EngagementID uuid.UUID `json:"engagement_id" db:"engagement_id"`
	WrappedKey   string    `json:"-" db:"wrapped_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ClientWithUser extends Client with the linked portal user, if any
type ClientWithUser struct {
	Client
	User *User `json:"user,omitempty"`
}

// EngagementWithClient extends Engagement with its client record
type EngagementWithClient struct {
	Engagement
	Client Client `json:"client"`
}

// EngagementDetail aggregates an engagement with its working set
type EngagementDetail struct {
	Engagement
	Client   Client    `json:"client"`
	Goals    []Goal    `json:"goals"`
	Actions  []Action  `json:"actions"`
	Sessions []Session `json:"sessions"`
}

// SessionWithSummaries extends Session with its summaries
type SessionWithSummaries struct {
	Session
	Summaries []SessionSummary `json:"summaries"`
}

// MessageWithSender extends Message with the sender's display name
type MessageWithSender struct {
	Message
	SenderName string `json:"sender_name"`
	SenderRole string `json:"sender_role"`
}
