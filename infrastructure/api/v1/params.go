package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/helixml/citetrack/application/service"
	"github.com/helixml/citetrack/domain/analytics"
	"github.com/helixml/citetrack/internal/domain"
)

// ReportParams holds the report query parameters.
type ReportParams struct {
	windowDays int
	view       analytics.View
}

// WindowDays returns the reporting window in days.
func (p ReportParams) WindowDays() int { return p.windowDays }

// View returns the prompt view.
func (p ReportParams) View() analytics.View { return p.view }

// ParseReportParams reads window and view from the query string.
// Default: window=30, view=all.
func ParseReportParams(r *http.Request) (ReportParams, error) {
	q := r.URL.Query()
	params := ReportParams{
		windowDays: service.DefaultWindowDays,
		view:       analytics.ViewAll,
	}

	if raw := strings.TrimSpace(q.Get("window")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return ReportParams{}, domain.Validation("window must be a positive number of days")
		}
		if err := service.ValidateWindow(days); err != nil {
			return ReportParams{}, err
		}
		params.windowDays = days
	}

	if raw := strings.TrimSpace(q.Get("view")); raw != "" {
		view, err := analytics.ParseView(strings.ToLower(raw))
		if err != nil {
			return ReportParams{}, domain.Validation("view must be one of all, unbranded, branded")
		}
		params.view = view
	}

	return params, nil
}
