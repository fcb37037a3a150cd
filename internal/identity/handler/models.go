package handler

import (
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

type MintRequest struct {
	SoulID  domain.SoulID    `json:"soul_id"`
	Account domain.AccountID `json:"account"`
}

func (r MintRequest) Validate() error {
	if r.SoulID.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "soul_id is required")
	}
	if _, err := domain.ParseAccountID(string(r.Account)); err != nil {
		return err
	}
	return nil
}

// ClaimRequest carries the two proof hashes, either precomputed (hex) or as
// raw material that the server digests.
type ClaimRequest struct {
	HashA  *domain.Hash `json:"hash_a,omitempty"`
	HashB  *domain.Hash `json:"hash_b,omitempty"`
	ProofA string       `json:"proof_a,omitempty"`
	ProofB string       `json:"proof_b,omitempty"`
}

func (r ClaimRequest) Hashes() (domain.Hash, domain.Hash, error) {
	a, okA := proofHash(r.HashA, r.ProofA)
	b, okB := proofHash(r.HashB, r.ProofB)
	if !okA || !okB {
		return domain.Hash{}, domain.Hash{}, dErrors.New(dErrors.CodeInvalidInput, "both proofs are required")
	}
	return a, b, nil
}

type SoulResponse struct {
	SoulID  domain.SoulID    `json:"soul_id"`
	Account domain.AccountID `json:"account,omitempty"`
}

type HashesResponse struct {
	HashA domain.Hash `json:"hash_a"`
	HashB domain.Hash `json:"hash_b"`
}

type HasIdentityResponse struct {
	HasIdentity bool `json:"has_identity"`
}

type PingResponse struct {
	OK bool `json:"ok"`
}

type PingStringResponse struct {
	Message string `json:"message"`
}
