package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/internal/dataset"
	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
	"go.uber.org/zap"
)

type forecastRequest struct {
	Data        []forecast.TimePoint `json:"data"`
	Horizon     *int                 `json:"horizon" validate:"omitempty,gte=0,lte=365"`
	Method      string               `json:"method"`
	Confidence  float64              `json:"confidence" validate:"gte=0,lt=1"`
	Seasonality string               `json:"seasonality"`
}

type anomaliesRequest struct {
	Data      []forecast.TimePoint `json:"data"`
	Threshold float64              `json:"threshold" validate:"gte=0"`
}

type seasonalityRequest struct {
	Data []forecast.TimePoint `json:"data"`
}

type seasonalityResponse struct {
	Period   int  `json:"period"`
	Seasonal bool `json:"seasonal"`
}

type movingAverageRequest struct {
	Data   []forecast.TimePoint `json:"data"`
	Window int                  `json:"window" validate:"gte=0"`
}

type simulateRequest struct {
	Budgets budget.Allocation `json:"budgets" validate:"required"`
	History budget.History    `json:"history"`
}

type optimizeRequest struct {
	TotalBudget float64            `json:"totalBudget" validate:"gt=0"`
	History     budget.History     `json:"history"`
	Constraints budget.Constraints `json:"constraints"`
}

type diminishingReturnsRequest struct {
	Spend   []float64 `json:"spend"`
	Revenue []float64 `json:"revenue"`
}

type breakevenRequest struct {
	FixedCosts       float64 `json:"fixedCosts" validate:"gte=0"`
	VariableCostRate float64 `json:"variableCostRate" validate:"gte=0"`
	AOV              float64 `json:"aov" validate:"gt=0"`
}

type shiftImpactRequest struct {
	Allocation budget.Allocation `json:"allocation" validate:"required"`
	From       string            `json:"from" validate:"required"`
	To         string            `json:"to" validate:"required,nefield=From"`
	Amount     float64           `json:"amount" validate:"gt=0"`
	History    budget.History    `json:"history"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case fe.Tag() == "nefield":
			msgs = append(msgs, fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param()))
		case fe.Param() != "":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if !h.decode(w, r, &req) {
		return
	}

	method, err := forecast.ParseMethod(req.Method)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	mode, length, err := forecast.ParseSeasonality(req.Seasonality)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	defaults, horizon := h.conf.ForecastOptions(config.SeriesConfig{})
	if req.Horizon != nil {
		horizon = *req.Horizon
	}
	opts := forecast.Options{Method: method, Confidence: req.Confidence, Seasonality: mode, SeasonLength: length}
	if req.Method == "" {
		opts.Method = defaults.Method
	}
	if req.Confidence == 0 {
		opts.Confidence = defaults.Confidence
	}
	if req.Seasonality == "" {
		opts.Seasonality, opts.SeasonLength = defaults.Seasonality, defaults.SeasonLength
	}

	result := forecast.Forecast(req.Data, horizon, opts)
	h.logger.Debug("forecast computed",
		zap.String("op", "server.handleForecast"),
		zap.String("requestID", RequestID(r.Context())),
		zap.String("method", string(result.Method)),
		zap.Int("points", len(req.Data)),
		zap.Int("horizon", horizon),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	var req anomaliesRequest
	if !h.decode(w, r, &req) {
		return
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.conf.AnomalyThreshold()
	}
	h.writeJSON(w, http.StatusOK, forecast.DetectAnomalies(req.Data, threshold))
}

func (h *handler) handleSeasonality(w http.ResponseWriter, r *http.Request) {
	var req seasonalityRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, seasonal := forecast.DetectSeasonality(req.Data)
	h.writeJSON(w, http.StatusOK, seasonalityResponse{Period: period, Seasonal: seasonal})
}

func (h *handler) handleMovingAverage(w http.ResponseWriter, r *http.Request) {
	var req movingAverageRequest
	if !h.decode(w, r, &req) {
		return
	}
	window := req.Window
	if window == 0 {
		window = h.conf.MovingAverageWindow()
	}
	h.writeJSON(w, http.StatusOK, forecast.MovingAverage(req.Data, window))
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.planner.Simulate(req.Budgets, req.History))
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	result := h.planner.Optimize(req.TotalBudget, req.History, req.Constraints)
	h.logger.Debug("allocation optimized",
		zap.String("op", "server.handleOptimize"),
		zap.String("requestID", RequestID(r.Context())),
		zap.Float64("totalBudget", req.TotalBudget),
		zap.Int("iterations", result.Iterations),
		zap.Bool("converged", result.Converged),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleDiminishingReturns(w http.ResponseWriter, r *http.Request) {
	var req diminishingReturnsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Spend) != len(req.Revenue) {
		h.respondError(w, r, http.StatusBadRequest,
			fmt.Sprintf("spend and revenue must have the same length, got %d and %d", len(req.Spend), len(req.Revenue)))
		return
	}
	h.writeJSON(w, http.StatusOK, budget.DiminishingReturnsModel(req.Spend, req.Revenue))
}

func (h *handler) handleBreakeven(w http.ResponseWriter, r *http.Request) {
	var req breakevenRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, budget.CalculateBreakeven(req.FixedCosts, req.VariableCostRate, req.AOV))
}

func (h *handler) handleShiftImpact(w http.ResponseWriter, r *http.Request) {
	var req shiftImpactRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.planner.ShiftImpact(req.Allocation, req.From, req.To, req.Amount, req.History))
}

func (h *handler) handleMockDataset(w http.ResponseWriter, r *http.Request) {
	opts := dataset.DefaultMockOptions()
	query := r.URL.Query()
	if v := query.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid seed %q", v))
			return
		}
		opts.Seed = seed
	}
	if v := query.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 || days > 3650 {
			h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid days %q", v))
			return
		}
		opts.Days = days
	}
	if v := query.Get("start"); v != "" {
		opts.Start = v
	}

	data, err := dataset.Generate(opts)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, data)
}
