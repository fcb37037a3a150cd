package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"soulbound/pkg/domain"
	request "soulbound/pkg/platform/middleware/request"
	"soulbound/pkg/requestcontext"
)

// HeaderDeposit carries the value attached to a call, as a decimal string.
const HeaderDeposit = "X-Attached-Deposit"

// JWTValidator defines the interface for validating signer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*SignerClaims, error)
}

// SignerClaims represents the claims we expect from the JWT validator.
type SignerClaims struct {
	Account string
	JTI     string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireSigner authenticates the bearer token and places the signer account
// and attached deposit into the request context.
func RequireSigner(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			signer, err := domain.ParseAccountID(claims.Account)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid token subject")
				return
			}

			var deposit domain.Amount
			if raw := r.Header.Get(HeaderDeposit); raw != "" {
				deposit, err = domain.ParseAmount(raw)
				if err != nil {
					writeJSONError(w, http.StatusBadRequest, "invalid_input", "Invalid attached deposit")
					return
				}
			}

			ctx = requestcontext.WithSigner(ctx, signer)
			ctx = requestcontext.WithDeposit(ctx, deposit)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
