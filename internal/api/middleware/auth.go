package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yug-More/Parallel-AI/internal/models"
	"github.com/Yug-More/Parallel-AI/internal/store"
)

// sessionCookie is the cookie carrying the signed session token.
const sessionCookie = "access_token"

type contextKey string

// userContextKey is the request-context key holding the authenticated user.
const userContextKey contextKey = "auth_user"

// Claims is the JWT payload for a session.
type Claims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates session cookies and loads the current user.
type AuthMiddleware struct {
	secret     []byte
	sessionTTL time.Duration
	db         store.DataStore
	redis      *store.RedisStore
	logger     zerolog.Logger
	secure     bool
}

// NewAuthMiddleware creates the auth middleware. secure controls the
// cookie Secure flag and should be true outside development.
func NewAuthMiddleware(secret string, sessionTTL time.Duration, db store.DataStore, redis *store.RedisStore, logger zerolog.Logger, secure bool) *AuthMiddleware {
	return &AuthMiddleware{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		db:         db,
		redis:      redis,
		logger:     logger,
		secure:     secure,
	}
}

// IssueCookie signs a session token for the user and sets it as an
// HTTP-only cookie.
func (a *AuthMiddleware) IssueCookie(w http.ResponseWriter, userID uuid.UUID) error {
	now := time.Now()
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(a.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie.
func (a *AuthMiddleware) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests without a valid session and attaches
// the user to the request context. Each authenticated request also
// refreshes the user's presence marker.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.authenticate(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"not authenticated"}`))
			return
		}

		if a.redis != nil {
			if err := a.redis.MarkOnline(r.Context(), user.ID); err != nil {
				a.logger.Warn().Err(err).Msg("presence refresh failed")
			}
		}
		if err := a.db.TouchUserSeen(r.Context(), user.ID); err != nil {
			a.logger.Warn().Err(err).Msg("last_seen update failed")
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate parses and verifies the session cookie, then loads the
// user it names.
func (a *AuthMiddleware) authenticate(r *http.Request) (*models.User, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, false
	}

	user, err := a.db.GetUserByID(r.Context(), userID)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

// UserFromContext returns the authenticated user attached by
// RequireAuth, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
