package http

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	formuc "example.com/grocery-form/internal/usecase/productform"
)

const sessionCookieName = "grocery_session"

type ctxSessionKey struct{}

// sessionMiddleware resolves the form session of the browser from its signed
// cookie, issuing a fresh one when the cookie is missing or invalid.
func (a *API) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookieName); err == nil {
			id, err = a.tokenSvc.ParseToken(c.Value)
			if err != nil {
				id = ""
			}
		}

		if id == "" {
			id = uuid.NewString()
			token, err := a.tokenSvc.GenerateToken(id)
			if err != nil {
				respondError(w, http.StatusInternalServerError, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(a.tokenSvc.Expiration().Seconds()),
				HttpOnly: true,
				Secure:   a.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		sess := a.sessions.Get(id)
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSession(ctx context.Context) *formuc.Session {
	if sess, ok := ctx.Value(ctxSessionKey{}).(*formuc.Session); ok {
		return sess
	}
	return nil
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			a.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
