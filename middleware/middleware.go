package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/globals"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"userId"`
	Role     []string `json:"role"`
	jwt.RegisteredClaims
}

type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, apperr.Unauthorized, "missing token")
			return
		}

		claims, err := a.ValidateJWT(header)
		if err != nil || claims.UserID == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, apperr.Unauthorized, "invalid token")
			return
		}

		// Store UserID in context
		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := a.ValidateJWT(r.Header.Get("Authorization")); err == nil && claims.UserID != "" {
			r = r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, claims.UserID))
		}
		// Proceed regardless of token state
		next(w, r, ps)
	}
}

// ValidateJWT parses a "Bearer <token>" header value.
func (a *Auth) ValidateJWT(header string) (*Claims, error) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, fmt.Errorf("invalid token format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("unauthorized: invalid token")
	}
	return claims, nil
}

// Sign issues an HS256 token for claims.
func (a *Auth) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
