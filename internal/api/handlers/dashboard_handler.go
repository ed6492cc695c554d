package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/reactive"
	"github.com/andresuchdata/procurement-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

var errBadRequest = errors.New("bad request")

// GetTabs lists the dashboard pages and their charts
func (h *DashboardHandler) GetTabs(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboardService.Tabs())
}

// GetHeader returns the page header of a tab
func (h *DashboardHandler) GetHeader(c *gin.Context) {
	tab, err := parseTab(c.Query("tab"))
	if err != nil {
		h.fail(c, err)
		return
	}
	header, err := h.dashboardService.Header(tab)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab, "header": header})
}

// GetOptions returns the cascading filter options
func (h *DashboardHandler) GetOptions(c *gin.Context) {
	var criteria domain.FilterCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	options, err := h.dashboardService.Options(c.Request.Context(), criteria)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

// GetTabCharts renders every chart of a tab
func (h *DashboardHandler) GetTabCharts(c *gin.Context) {
	state, err := parseState(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	charts, err := h.dashboardService.TabCharts(c.Request.Context(), state.Tab, state)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": state.Tab, "charts": charts})
}

// GetChart renders a single chart
func (h *DashboardHandler) GetChart(c *gin.Context) {
	state, err := parseState(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	chart, err := h.dashboardService.Chart(c.Request.Context(), c.Param("id"), state)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

type updateRequest struct {
	Changed []string `json:"changed"`
	State   struct {
		Tab     string                `json:"tab"`
		View    string                `json:"view"`
		Filters domain.FilterCriteria `json:"filters"`
	} `json:"state"`
}

// PostUpdate recomputes the outputs a UI event invalidates. An event
// without changed inputs is the initial render.
func (h *DashboardHandler) PostUpdate(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	state, err := buildState(req.State.Tab, req.State.View, req.State.Filters)
	if err != nil {
		h.fail(c, err)
		return
	}

	event := reactive.InitialEvent(state)
	if len(req.Changed) > 0 {
		event = reactive.Event{State: state}
		for _, raw := range req.Changed {
			in, err := reactive.ParseInput(raw)
			if err != nil {
				h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
				return
			}
			event.Changed = append(event.Changed, in)
		}
	}

	update, err := h.dashboardService.Update(c.Request.Context(), event)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

func parseState(c *gin.Context) (domain.UIState, error) {
	var criteria domain.FilterCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		return domain.UIState{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return buildState(c.Query("tab"), c.Query("view"), criteria)
}

func buildState(tabRaw, viewRaw string, criteria domain.FilterCriteria) (domain.UIState, error) {
	tab, err := parseTab(tabRaw)
	if err != nil {
		return domain.UIState{}, err
	}
	state := domain.UIState{Tab: tab, Filters: criteria}
	if strings.TrimSpace(viewRaw) != "" {
		view, ok := domain.ParseView(viewRaw)
		if !ok {
			return domain.UIState{}, fmt.Errorf("%w: unknown view %q", errBadRequest, viewRaw)
		}
		state.View = view
	}
	return state.Normalize(), nil
}

// parseTab defaults to the first tab when raw is empty.
func parseTab(raw string) (domain.Tab, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.TabOrderedSpend, nil
	}
	tab, ok := domain.ParseTab(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", service.ErrUnknownTab, raw)
	}
	return tab, nil
}

func (h *DashboardHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("dashboard request failed")
	}
	c.JSON(status, gin.H{"error": http.StatusText(status), "details": err.Error()})
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownChart), errors.Is(err, service.ErrUnknownTab):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDatasetNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
