package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/knowledgeledger/lms-backend/pkg/config"
)

// CORS applies the allowed origin policy: local dev plus the configured
// frontend site.
func CORS(cfg config.FrontendConfig) func(http.Handler) http.Handler {
	origins := []string{"http://localhost:3000"}
	if site := strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/"); site != "" && site != "http://localhost:3000" {
		origins = append(origins, site)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
