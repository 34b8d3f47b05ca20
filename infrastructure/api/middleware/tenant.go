package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/helixml/citetrack/internal/log"
)

// Request headers set by the upstream proxy.
const (
	TenantHeader        = "X-Tenant-ID"
	CorrelationIDHeader = "X-Correlation-ID"
)

// RequireTenant reads the tenant resolved by the upstream proxy into the
// request context. Requests without one are rejected with 401.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := strings.TrimSpace(r.Header.Get(TenantHeader))
		if tenant == "" {
			WriteError(w, r, NewAuthenticationError("missing tenant"), nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(log.WithTenantID(r.Context(), tenant)))
	})
}

// TenantID returns the tenant stored by RequireTenant.
func TenantID(r *http.Request) string {
	return log.TenantID(r.Context())
}

// Correlation propagates X-Correlation-ID, generating one when absent, and
// copies chi's request id into the logging context.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(CorrelationIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, id)

		ctx := log.WithCorrelationID(r.Context(), id)
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = log.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
