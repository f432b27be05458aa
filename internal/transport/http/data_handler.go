// Package http holds the chi handlers serving the dashboard API.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/metrics"
	"retailpulse/internal/services"
	"retailpulse/pkg/contracts/domain"
)

// DataHandler serves the aggregate endpoints. Every endpoint accepts
// the same filter query params: from, to (YYYY-MM-DD, inclusive) and
// country.
type DataHandler struct {
	service      DataProvider
	homeCountry  string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates the handler. homeCountry drives the
// home-vs-international split on /countries.
func NewDataHandler(service DataProvider, homeCountry string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service:      service,
		homeCountry:  homeCountry,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the aggregate API routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/revenue/monthly", h.GetMonthlyRevenue)
	r.Get("/revenue/yoy", h.GetYoYGrowth)
	r.Get("/segments", h.GetSegments)
	r.Get("/countries", h.GetCountries)
	r.Get("/cohorts", h.GetCohorts)
	r.Get("/patterns/time", h.GetTimePatterns)
	r.Get("/products/top", h.GetTopProducts)
	r.Get("/filters", h.GetFilters)

	return r
}

// GetSummary serves the headline totals.
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.Summary(txs)
	})
}

// GetMonthlyRevenue serves the monthly revenue series.
func (h *DataHandler) GetMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.MonthlyRevenue(txs)
	})
}

// GetYoYGrowth serves year-over-year growth over comparable months.
func (h *DataHandler) GetYoYGrowth(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.YoYGrowth(txs)
	})
}

// GetSegments serves the RFM segmentation rollup together with the
// per-customer scores.
func (h *DataHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		customers, err := metrics.ComputeRFM(txs)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"segments":  metrics.SummarizeSegments(customers),
			"customers": len(customers),
		}, nil
	})
}

// GetCountries serves the geographic breakdown.
func (h *DataHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.Geographic(txs, h.homeCountry)
	})
}

// GetCohorts serves the cohort retention matrix.
func (h *DataHandler) GetCohorts(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.CohortRetention(txs)
	})
}

// GetTimePatterns serves the day-of-week and hour breakdown.
func (h *DataHandler) GetTimePatterns(w http.ResponseWriter, r *http.Request) {
	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.TimePatterns(txs)
	})
}

// GetTopProducts serves the top product lists. The limit query param
// caps the list length (default 20, max 100).
func (h *DataHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := metrics.DefaultTopProducts
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be an integer between 1 and 100"))
			return
		}
		limit = parsed
	}

	h.serveMetric(w, r, func(txs []domain.Transaction) (interface{}, error) {
		return metrics.TopProducts(txs, limit)
	})
}

// GetFilters serves the filterable dimensions of the loaded dataset.
func (h *DataHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// serveMetric runs one metric function over the filtered dataset and
// renders the result.
func (h *DataHandler) serveMetric(w http.ResponseWriter, r *http.Request, compute func([]domain.Transaction) (interface{}, error)) {
	query := r.URL.Query()
	filter, err := services.ParseFilter(query.Get("from"), query.Get("to"), query.Get("country"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return
	}

	txs, err := h.service.Transactions(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := compute(txs)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
