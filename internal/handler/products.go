package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pricewatcher/internal/repository"
	"pricewatcher/internal/tracker"
)

// ProductHandler exposes the read-only view of tracked products, their price
// history and current alert states. Products come from config, prices from
// the store.
type ProductHandler struct {
	Repo     repository.Repository
	Products []tracker.Product
}

func (h *ProductHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/products", h.list)
	r.GET("/api/v1/products/history", h.history)
	r.GET("/api/v1/alerts", h.alerts)
}

type productView struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	TargetPrice *string    `json:"target_price,omitempty"`
	MinDiscount *string    `json:"min_discount,omitempty"`
	LatestPrice *string    `json:"latest_price,omitempty"`
	ObservedAt  *time.Time `json:"observed_at,omitempty"`
}

type observationView struct {
	Price      string    `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

func (h *ProductHandler) list(c *gin.Context) {
	out := make([]productView, 0, len(h.Products))
	for _, p := range h.Products {
		view := productView{Name: p.Name, URL: p.URL}
		if p.TargetPrice != nil {
			s := p.TargetPrice.StringFixed(2)
			view.TargetPrice = &s
		}
		if p.MinDiscount != nil {
			s := p.MinDiscount.String()
			view.MinDiscount = &s
		}
		if h.Repo != nil {
			latest, err := h.Repo.LatestObservation(c.Request.Context(), p.URL)
			if err != nil {
				Error(c, http.StatusInternalServerError, "load latest price failed", nil)
				return
			}
			if latest != nil {
				s := latest.Price.StringFixed(2)
				view.LatestPrice = &s
				at := latest.ObservedAt
				view.ObservedAt = &at
			}
		}
		out = append(out, view)
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

func (h *ProductHandler) history(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		Error(c, http.StatusBadRequest, "url query parameter is required", nil)
		return
	}
	if h.Repo == nil {
		Ok(c, []observationView{}, nil)
		return
	}
	items, err := h.Repo.ListObservations(c.Request.Context(), url)
	if err != nil {
		Error(c, http.StatusInternalServerError, "load history failed", nil)
		return
	}
	out := make([]observationView, 0, len(items))
	for _, obs := range items {
		out = append(out, observationView{
			Price:      obs.Price.StringFixed(2),
			ObservedAt: obs.ObservedAt,
		})
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

func (h *ProductHandler) alerts(c *gin.Context) {
	if h.Repo == nil {
		Ok(c, []any{}, nil)
		return
	}
	items, err := h.Repo.ListAlertStates(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, "load alert states failed", nil)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}
