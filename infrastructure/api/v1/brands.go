package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/citetrack"
	"github.com/helixml/citetrack/application/service"
	"github.com/helixml/citetrack/infrastructure/api/middleware"
	"github.com/helixml/citetrack/infrastructure/api/v1/dto"
	"github.com/helixml/citetrack/internal/domain"
)

// maxActionBody caps the size of an action request body.
const maxActionBody = 64 << 10

// BrandsRouter handles brand-scoped analytics and action endpoints.
type BrandsRouter struct {
	client  *citetrack.Client
	limiter *middleware.TenantLimiter
	logger  *slog.Logger
}

// NewBrandsRouter creates a new BrandsRouter.
func NewBrandsRouter(client *citetrack.Client) *BrandsRouter {
	return &BrandsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// WithRateLimit limits the action endpoint per tenant. A nil limiter disables it.
func (r *BrandsRouter) WithRateLimit(l *middleware.TenantLimiter) *BrandsRouter {
	r.limiter = l
	return r
}

// Routes returns the chi router for brand endpoints. Callers must mount it
// behind middleware.RequireTenant.
func (r *BrandsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/{brandID}", func(br chi.Router) {
		br.Get("/analytics", r.Analytics)
		br.Get("/opportunities", r.Opportunities)
		br.Get("/content-matches", r.ContentMatches)
		br.Get("/competitors", r.Competitors)
		br.With(middleware.RateLimit(r.limiter)).Post("/actions", r.Action)
	})

	return router
}

// Analytics handles GET /api/v1/brands/{brandID}/analytics.
func (r *BrandsRouter) Analytics(w http.ResponseWriter, req *http.Request) {
	params, err := ParseReportParams(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	report, err := r.client.Analytics.Report(req.Context(), middleware.TenantID(req), chi.URLParam(req, "brandID"), params.WindowDays(), params.View())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}

// Opportunities handles GET /api/v1/brands/{brandID}/opportunities.
func (r *BrandsRouter) Opportunities(w http.ResponseWriter, req *http.Request) {
	params, err := ParseReportParams(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	summary, err := r.client.Analytics.Opportunities(req.Context(), middleware.TenantID(req), chi.URLParam(req, "brandID"), params.WindowDays())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}

// ContentMatches handles GET /api/v1/brands/{brandID}/content-matches.
func (r *BrandsRouter) ContentMatches(w http.ResponseWriter, req *http.Request) {
	params, err := ParseReportParams(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	matches, err := r.client.Analytics.ContentMatches(req.Context(), middleware.TenantID(req), chi.URLParam(req, "brandID"), params.WindowDays())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewContentMatchesResponse(params.WindowDays(), matches))
}

// Competitors handles GET /api/v1/brands/{brandID}/competitors.
func (r *BrandsRouter) Competitors(w http.ResponseWriter, req *http.Request) {
	competitors, err := r.client.Analytics.Competitors(req.Context(), middleware.TenantID(req), chi.URLParam(req, "brandID"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.NewCompetitorListResponse(competitors))
}

// Action handles POST /api/v1/brands/{brandID}/actions.
//
// The body is {"action": "<name>", ...fields}. The response is
// {"success": true, "message": ..., ...data} or {"error": ...}.
func (r *BrandsRouter) Action(w http.ResponseWriter, req *http.Request) {
	fields, action, err := decodeAction(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	res, err := r.client.Actions.Dispatch(req.Context(), service.ActionRequest{
		TenantID: middleware.TenantID(req),
		BrandID:  chi.URLParam(req, "brandID"),
		Action:   action,
		Fields:   fields,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	body := make(map[string]any, len(res.Data)+2)
	for k, v := range res.Data {
		body[k] = v
	}
	body["success"] = true
	body["message"] = res.Message
	middleware.WriteJSON(w, http.StatusOK, body)
}

func decodeAction(req *http.Request) (service.Fields, string, error) {
	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(req.Body, maxActionBody))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, "", domain.Validation("request body is required")
		}
		return nil, "", domain.Validation("invalid request body")
	}

	action, ok := body["action"].(string)
	if !ok || action == "" {
		return nil, "", domain.Validation("action is required")
	}
	delete(body, "action")

	return service.Fields(body), action, nil
}
