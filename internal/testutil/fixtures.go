package testutil

import (
	"database/sql"
	"testing"

	"consulting-os/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Fixtures holds test data
type Fixtures struct {
	DB         *sql.DB
	Consultant *models.User
	ClientUser *models.User
	Client     *models.Client
	Engagement *models.Engagement
}

// SetupFixtures creates a consultant, a client with a portal account,
// and one engagement between them
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{DB: db}

	fixtures.Consultant = CreateUser(t, db, "consultant@test.com", "Test Consultant", "consultant")
	fixtures.ClientUser = CreateUser(t, db, "client@test.com", "Test Client", "client")
	fixtures.Client = createClient(t, db, fixtures.Consultant, fixtures.ClientUser)
	fixtures.Engagement = createEngagement(t, db, fixtures.Client)

	return fixtures
}

// CreateUser inserts a user with a bcrypt-hashed default password
func CreateUser(t *testing.T, db *sql.DB, email, fullName, role string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-password-123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		FullName: fullName,
		Role:     role,
		IsActive: true,
	}

	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, updated_at
	`, email, string(hash), fullName, role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	return user
}

func createClient(t *testing.T, db *sql.DB, consultant, portalUser *models.User) *models.Client {
	t.Helper()

	client := &models.Client{
		ConsultantID: consultant.ID,
		UserID:       &portalUser.ID,
		CompanyName:  "Acme Widgets",
		ContactName:  "Jordan Acme",
		Industry:     "Manufacturing",
		Status:       "active",
	}

	err := db.QueryRow(`
		INSERT INTO clients (consultant_id, user_id, company_name, contact_name, industry, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, client.ConsultantID, client.UserID, client.CompanyName, client.ContactName, client.Industry, client.Status).
		Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return client
}

func createEngagement(t *testing.T, db *sql.DB, client *models.Client) *models.Engagement {
	t.Helper()

	engagement := &models.Engagement{
		ClientID:    client.ID,
		Title:       "Operations Review",
		Description: "Quarterly operations review engagement",
		Status:      "proposal",
	}

	err := db.QueryRow(`
		INSERT INTO engagements (client_id, title, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, engagement.ClientID, engagement.Title, engagement.Description, engagement.Status).
		Scan(&engagement.ID, &engagement.CreatedAt, &engagement.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create engagement: %v", err)
	}

	return engagement
}
