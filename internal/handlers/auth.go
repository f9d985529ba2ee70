package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/authz"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
)

const tokenTTL = 12 * time.Hour

type AuthHandler struct {
	operators repository.OperatorRepository
	jwtSecret string
	logger    zerolog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(operators repository.OperatorRepository, jwtSecret string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		operators: operators,
		jwtSecret: jwtSecret,
		logger:    logger.With().Str("handler", "auth").Logger(),
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	operator, err := h.operators.AuthenticateOperator(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			http.Error(w, "Authentication failed: "+err.Error(), http.StatusUnauthorized)
			return
		}
		h.logger.Error().Err(err).Msg("failed to authenticate operator")
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	tokenString, err := h.IssueToken(operator, time.Now())
	if err != nil {
		http.Error(w, "Failed to generate token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":    tokenString,
		"operator": operator,
	})
}

// IssueToken signs an HS256 token carrying the operator id and roles.
func (h *AuthHandler) IssueToken(operator models.Operator, now time.Time) (string, error) {
	rolesClaim := make([]string, 0, len(operator.Roles))
	for _, role := range operator.Roles {
		rolesClaim = append(rolesClaim, string(role))
	}
	highest := models.HighestRole(operator.Roles)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   operator.ID,
		"role":  string(highest),
		"roles": rolesClaim,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
			http.Error(w, "Token expired", http.StatusUnauthorized)
			return
		}
		roles, ok := extractRolesFromClaims(claims)
		if !ok {
			http.Error(w, "Missing role claim", http.StatusUnauthorized)
			return
		}
		operatorID, ok := claims["sub"].(string)
		if !ok || operatorID == "" {
			http.Error(w, "Missing token claim", http.StatusUnauthorized)
			return
		}

		ctx := authz.WithIdentity(r.Context(), operatorID, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractRolesFromClaims(claims jwt.MapClaims) ([]models.Role, bool) {
	rawRoles, ok := claims["roles"]
	if !ok {
		if single, ok := claims["role"].(string); ok && single != "" {
			role := models.Role(single)
			if !models.IsValidRole(role) {
				return nil, false
			}
			return models.EnsureDefaultRole([]models.Role{role}), true
		}
		return nil, false
	}

	var roles []models.Role
	switch v := rawRoles.(type) {
	case []interface{}:
		for _, val := range v {
			str, ok := val.(string)
			if !ok {
				return nil, false
			}
			roles = append(roles, models.Role(str))
		}
	case []string:
		for _, str := range v {
			roles = append(roles, models.Role(str))
		}
	case string:
		roles = []models.Role{models.Role(v)}
	default:
		return nil, false
	}

	if !models.IsValidRoleList(roles) {
		return nil, false
	}
	return models.EnsureDefaultRole(models.NormalizeRoles(roles)), true
}
