package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ozavala/Clix-sub000/internal/app"
	"github.com/ozavala/Clix-sub000/internal/core"
)

type authClaimsKey struct{}

// AuthClaims is the authenticated identity extracted from the JWT. TenantID
// is the user's home tenant; Elevated marks cross-tenant admin access.
type AuthClaims struct {
	UserID   int64
	TenantID int64
	Elevated bool
}

// callerFromContext builds the app-level caller for the authenticated request.
func callerFromContext(ctx context.Context) app.Caller {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	if v == nil {
		return app.Caller{}
	}
	tenantID := v.TenantID
	return app.Caller{UserID: v.UserID, TenantID: &tenantID, Elevated: v.Elevated}
}

// jwtClaims is the JWT payload used for signing and parsing.
type jwtClaims struct {
	UserID   int64 `json:"user_id"`
	TenantID int64 `json:"tenant_id"`
	Elevated bool  `json:"elevated"`
	jwt.RegisteredClaims
}

func (h *Handler) parseToken(raw string) (*AuthClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return &AuthClaims{
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		Elevated: claims.Elevated,
	}, nil
}

// RequireAuth validates the auth_token cookie and injects AuthClaims into the
// request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims, err := h.parseToken(cookie.Value)
		if err != nil {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TenantCode string `json:"tenant_code"`
		Username   string `json:"username"`
		Password   string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.AuthenticateUser(r.Context(), req.TenantCode, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			writeError(w, r, "invalid credentials", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		writeError(w, r, "authentication failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	claims := &jwtClaims{
		UserID:   session.UserID,
		TenantID: session.TenantID,
		Elevated: session.Elevated,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		writeError(w, r, "token generation failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   3600,
	})
	writeJSON(w, session)
}

// logout handles POST /api/auth/logout.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if caller.UserID == 0 {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	result, err := h.svc.GetUser(r.Context(), caller.UserID)
	if err != nil {
		writeNotFound(w, r)
		return
	}

	type meResponse struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		TenantID    int64  `json:"tenant_id"`
		Elevated    bool   `json:"elevated"`
	}
	writeJSON(w, meResponse{
		Username:    result.User.Username,
		DisplayName: result.User.DisplayName,
		TenantID:    result.User.TenantID,
		Elevated:    result.User.IsElevated,
	})
}
