package middleware

import (
	"context"
	"net/http"
	"strings"

	"gorecords/internal/domain"
	apperror "gorecords/internal/errors"
	"gorecords/internal/pkg/logger"
	"gorecords/internal/pkg/metrics"
	"gorecords/internal/pkg/response"
	"gorecords/internal/pkg/token"
)

// ContextKey é um tipo não exportado para evitar colisão de chaves no contexto.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims são os dados do chamador extraídos do token JWT.
type UserClaims struct {
	UserID string
	Role   domain.UserRole
}

// TokenValidator define o contrato de validação necessário para o middleware.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

// Authenticate valida o Bearer token e anexa as claims ao contexto da requisição.
func Authenticate(tokens TokenValidator, log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				m.RecordAuthFailure("missing_token")
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(raw))
			if err != nil {
				m.RecordAuthFailure("invalid_token")
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			role, _ := domain.ParseUserRole(claims.Role)
			ctx := context.WithValue(r.Context(), UserClaimsKey, UserClaims{UserID: claims.UserID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserClaimsFromContext extrai as claims anexadas por Authenticate.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// RequireRoles só deixa passar chamadores cuja role está em roles.
// Deve rodar depois de Authenticate.
func RequireRoles(log logger.Logger, m *metrics.Metrics, roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				m.RecordAuthFailure("missing_claims")
				response.Error(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.RecordAuthFailure("forbidden")
			response.Error(w, r, log, apperror.NewForbiddenError("Você não tem a permissão necessária."))
		})
	}
}
