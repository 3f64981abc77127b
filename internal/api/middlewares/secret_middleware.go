package middleware

import (
	"context"
	"net/http"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

const websiteKey contextKey = "website"

// Website returns the website resolved by WebsiteSecret from the request
// context.
func Website(ctx context.Context) (*models.Website, bool) {
	w, ok := ctx.Value(websiteKey).(*models.Website)
	return w, ok
}

// WebsiteSecret authenticates embedded chat widgets: the X-Website-Secret
// header must match a registered website's api secret. The matched website is
// attached to the request context.
func WebsiteSecret(db core.DbClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get("X-Website-Secret")
			if secret == "" {
				http.Error(w, "missing website secret", http.StatusUnauthorized)
				return
			}

			site, err := db.GetWebsiteBySecret(r.Context(), secret)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if site == nil {
				http.Error(w, "invalid website secret", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), websiteKey, site)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
