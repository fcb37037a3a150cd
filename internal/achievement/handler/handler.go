package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/httputil"
	authmw "soulbound/pkg/platform/middleware/auth"
	request "soulbound/pkg/platform/middleware/request"
)

// Service defines the achievement registry operations exposed over HTTP.
type Service interface {
	Mint(ctx context.Context, a models.Achievement) (resolution.Token, error)
	Burn(ctx context.Context, id domain.AchievementID) (resolution.Token, error)
	UpdateOwner(ctx context.Context, id domain.AchievementID, newAccount domain.AccountID) (resolution.Token, error)
	AcceptAchievement(ctx context.Context, id domain.AchievementID) (resolution.Token, error)
	VerifyAchievement(ctx context.Context, id domain.AchievementID) (resolution.Token, error)
	ReplenishBalance(ctx context.Context, id domain.AchievementID) (domain.Amount, error)
	GetAchievement(ctx context.Context, id domain.AchievementID) (models.Achievement, error)
	ListByIssuer(ctx context.Context, issuer domain.SoulID) ([]models.Achievement, error)
	ListByOwner(ctx context.Context, owner domain.SoulID) ([]models.Achievement, error)
	RequestOutcome(ctx context.Context, token resolution.Token) (models.Outcome, error)
}

// Handler serves the achievement registry routes.
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

// Register mounts the achievement routes. Mutations answer 202 with a token
// because they complete only after identity resolution.
func (h *Handler) Register(r chi.Router) {
	r.Get("/achievements/{id}", h.handleGet)
	r.Get("/issuers/{soulID}/achievements", h.handleListByIssuer)
	r.Get("/owners/{soulID}/achievements", h.handleListByOwner)
	r.Get("/requests/{token}", h.handleRequestOutcome)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSigner(h.validator, h.logger))
		r.Post("/achievements", h.handleMint)
		r.Delete("/achievements/{id}", h.handleBurn)
		r.Put("/achievements/{id}/owner", h.handleUpdateOwner)
		r.Post("/achievements/{id}/accept", h.handleAccept)
		r.Post("/achievements/{id}/verify", h.handleVerify)
		r.Post("/achievements/{id}/balance", h.handleReplenish)
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

	token, err := h.service.Mint(ctx, req.Achievement())
	h.writeAccepted(ctx, w, "mint", token, err)
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.achievementID(w, r)
	if !ok {
		return
	}
	token, err := h.service.Burn(ctx, id)
	h.writeAccepted(ctx, w, "burn", token, err)
}

func (h *Handler) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.achievementID(w, r)
	if !ok {
		return
	}

	var req UpdateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(ctx, w, "invalid update owner request", err)
		return
	}

	token, err := h.service.UpdateOwner(ctx, id, req.Account)
	h.writeAccepted(ctx, w, "update_owner", token, err)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.achievementID(w, r)
	if !ok {
		return
	}
	token, err := h.service.AcceptAchievement(ctx, id)
	h.writeAccepted(ctx, w, "accept", token, err)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.achievementID(w, r)
	if !ok {
		return
	}
	token, err := h.service.VerifyAchievement(ctx, id)
	h.writeAccepted(ctx, w, "verify", token, err)
}

func (h *Handler) handleReplenish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.achievementID(w, r)
	if !ok {
		return
	}
	balance, err := h.service.ReplenishBalance(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "replenish", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{ID: id, Balance: balance})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.achievementID(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetAchievement(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "get", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleListByIssuer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_by_issuer", h.service.ListByIssuer)
}

func (h *Handler) handleListByOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list_by_owner", h.service.ListByOwner)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string,
	fetch func(context.Context, domain.SoulID) ([]models.Achievement, error),
) {
	ctx := r.Context()
	soulID, err := domain.ParseSoulID(chi.URLParam(r, "soulID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	achievements, err := fetch(ctx, soulID)
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Achievements: achievements})
}

func (h *Handler) handleRequestOutcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := resolution.ParseToken(chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	outcome, err := h.service.RequestOutcome(ctx, token)
	if err != nil {
		h.writeServiceError(ctx, w, "request_outcome", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *Handler) achievementID(w http.ResponseWriter, r *http.Request) (domain.AchievementID, bool) {
	id, err := domain.ParseAchievementID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.AchievementID{}, false
	}
	return id, true
}

func (h *Handler) writeAccepted(ctx context.Context, w http.ResponseWriter, op string, token resolution.Token, err error) {
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, AcceptedResponse{Token: token})
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
		h.logger.ErrorContext(ctx, "achievement operation failed",
			"op", op,
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
