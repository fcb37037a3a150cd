package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/identity/service"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/httputil"
	authmw "soulbound/pkg/platform/middleware/auth"
	request "soulbound/pkg/platform/middleware/request"
)

// Service defines the identity registry operations exposed over HTTP.
type Service interface {
	Mint(ctx context.Context, id domain.SoulID, account domain.AccountID) error
	Claim(ctx context.Context, hashA, hashB domain.Hash) (domain.SoulID, error)
	ResolveID(ctx context.Context, account domain.AccountID) (domain.SoulID, error)
	ResolveAccount(ctx context.Context, id domain.SoulID) (domain.AccountID, error)
	Burn(ctx context.Context) (domain.SoulID, error)
	HasIdentity(ctx context.Context, account domain.AccountID) bool
	HashedData(ctx context.Context) ([2]domain.Hash, error)
	Ping() bool
	PingString() string
}

// Handler serves the identity registry routes.
type Handler struct {
	logger    *slog.Logger
	service   Service
	validator authmw.JWTValidator
}

func New(svc Service, validator authmw.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		service:   svc,
		validator: validator,
	}
}

// Register mounts the identity routes. Reads are public; mutations and the
// caller's own hashes require a signer.
func (h *Handler) Register(r chi.Router) {
	r.Get("/ping", h.handlePing)
	r.Get("/ping-string", h.handlePingString)
	r.Get("/accounts/{account}/soul", h.handleResolveID)
	r.Get("/accounts/{account}/has-soul", h.handleHasIdentity)
	r.Get("/souls/{soulID}/account", h.handleResolveAccount)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSigner(h.validator, h.logger))
		r.Post("/souls", h.handleMint)
		r.Post("/souls/claim", h.handleClaim)
		r.Delete("/souls/me", h.handleBurn)
		r.Get("/souls/me/hashes", h.handleHashedData)
	})
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(ctx, w, "invalid mint request", err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Mint(ctx, req.SoulID, req.Account); err != nil {
		h.writeServiceError(ctx, w, "mint", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, SoulResponse{SoulID: req.SoulID, Account: req.Account})
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(ctx, w, "invalid claim request", err)
		return
	}
	hashA, hashB, err := req.Hashes()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	id, err := h.service.Claim(ctx, hashA, hashB)
	if err != nil {
		h.writeServiceError(ctx, w, "claim", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SoulResponse{SoulID: id})
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := h.service.Burn(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "burn", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SoulResponse{SoulID: id})
}

func (h *Handler) handleHashedData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hashes, err := h.service.HashedData(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "hashed_data", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HashesResponse{HashA: hashes[0], HashB: hashes[1]})
}

func (h *Handler) handleResolveID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := domain.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := h.service.ResolveID(ctx, account)
	if err != nil {
		h.writeServiceError(ctx, w, "resolve_id", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SoulResponse{SoulID: id, Account: account})
}

func (h *Handler) handleResolveAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseSoulID(chi.URLParam(r, "soulID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	account, err := h.service.ResolveAccount(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "resolve_account", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SoulResponse{SoulID: id, Account: account})
}

func (h *Handler) handleHasIdentity(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		// An account that cannot exist holds no identity.
		httputil.WriteJSON(w, http.StatusOK, HasIdentityResponse{HasIdentity: false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HasIdentityResponse{
		HasIdentity: h.service.HasIdentity(r.Context(), account),
	})
}

func (h *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, PingResponse{OK: h.service.Ping()})
}

func (h *Handler) handlePingString(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, PingStringResponse{Message: h.service.PingString()})
}

func (h *Handler) badRequest(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", request.GetRequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "identity operation failed",
			"op", op,
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

// proofHash picks the precomputed hash when present, else digests raw
// material.
func proofHash(hash *domain.Hash, material string) (domain.Hash, bool) {
	if hash != nil {
		return *hash, true
	}
	if material != "" {
		return service.HashProof(material), true
	}
	return domain.Hash{}, false
}
