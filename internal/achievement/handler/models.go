package handler

import (
	"strings"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// MintRequest describes the achievement to issue. The balance is escrowed
// from the attached deposit.
type MintRequest struct {
	ID          domain.AchievementID   `json:"id"`
	Type        domain.AchievementType `json:"type"`
	Issuer      domain.SoulID          `json:"issuer"`
	Owner       domain.SoulID          `json:"owner"`
	Verifier    domain.SoulID          `json:"verifier"`
	DataPointer string                 `json:"data_pointer"`
	Balance     domain.Amount          `json:"balance"`
}

func (r MintRequest) Validate() error {
	if r.Issuer.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "issuer is required")
	}
	if strings.TrimSpace(r.DataPointer) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "data_pointer is required")
	}
	return nil
}

func (r MintRequest) Achievement() models.Achievement {
	return models.Achievement{
		ID:          r.ID,
		Type:        r.Type,
		Issuer:      r.Issuer,
		Owner:       r.Owner,
		Verifier:    r.Verifier,
		DataPointer: r.DataPointer,
		Balance:     r.Balance,
	}
}

type UpdateOwnerRequest struct {
	Account domain.AccountID `json:"account"`
}

// AcceptedResponse is returned by every call that waits on identity
// resolution. Poll /requests/{token} for the outcome.
type AcceptedResponse struct {
	Token resolution.Token `json:"token"`
}

type BalanceResponse struct {
	ID      domain.AchievementID `json:"id"`
	Balance domain.Amount        `json:"balance"`
}

type ListResponse struct {
	Achievements []models.Achievement `json:"achievements"`
}
