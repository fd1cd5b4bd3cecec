package service

import (
	"fmt"

	"consulting-os/internal/repository"

	"github.com/google/uuid"
)

// authorizeEngagement loads the engagement's parties and verifies the user
// is one of them. Every engagement-scoped operation goes through this check.
func authorizeEngagement(repo *repository.EngagementRepository, engagementID, userID uuid.UUID) (*repository.EngagementParties, error) {
	parties, err := repo.GetParties(engagementID)
	if err != nil {
		return nil, err
	}
	if !isParty(parties, userID) {
		return nil, fmt.Errorf("permission denied: not a party to this engagement")
	}
	return parties, nil
}

// authorizeConsultant verifies the user is the engagement's consultant
func authorizeConsultant(repo *repository.EngagementRepository, engagementID, userID uuid.UUID) (*repository.EngagementParties, error) {
	parties, err := repo.GetParties(engagementID)
	if err != nil {
		return nil, err
	}
	if parties.ConsultantUserID != userID {
		return nil, fmt.Errorf("permission denied: only the engagement's consultant can do this")
	}
	return parties, nil
}

func isParty(parties *repository.EngagementParties, userID uuid.UUID) bool {
	if parties.ConsultantUserID == userID {
		return true
	}
	return parties.ClientUserID != nil && *parties.ClientUserID == userID
}

// isClientParty reports whether the user is the engagement's client
func isClientParty(parties *repository.EngagementParties, userID uuid.UUID) bool {
	return parties.ClientUserID != nil && *parties.ClientUserID == userID
}

// publish sends a realtime event when a publisher is configured
func publish(p Publisher, engagementID uuid.UUID, event string, data any) {
	if p == nil {
		return
	}
	p.Publish(engagementID, event, data)
}
