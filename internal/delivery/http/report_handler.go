package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/pos-core/internal/analytics"
)

// Today handles GET /api/reports/today
// @Summary Today's sales, profit and expenses
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Router /api/reports/today [get]
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", h.reports.TodayStats())
}

// Day handles GET /api/reports/days/{date}
// @Summary One day with its orders and expenses
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/reports/days/{date} [get]
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	detail, err := h.reports.DayDetail(mux.Vars(r)["date"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", detail)
}

// Range handles GET /api/reports/range?start=&end=
// @Summary Daily stats for every day of an inclusive range
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param start query string true "YYYY-MM-DD"
// @Param end query string true "YYYY-MM-DD"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/reports/range [get]
func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.StatsForRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}

// Recent handles GET /api/reports/recent?days=
// @Summary The most recent days that have orders or expenses
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param days query int false "Days" default(7)
// @Success 200 {object} Response
// @Router /api/reports/recent [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", 7)
	if !ok || days <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid days parameter")
		return
	}
	respondData(w, http.StatusOK, "", h.reports.Recent(days))
}

// Finance handles GET /api/reports/finance?days=
// @Summary Sales, profit, expenses and net profit over recent days
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param days query int false "Days" default(7)
// @Success 200 {object} Response
// @Router /api/reports/finance [get]
func (h *Handler) Finance(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", 7)
	if !ok || days <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid days parameter")
		return
	}
	respondData(w, http.StatusOK, "", h.reports.FinanceSummary(days))
}

// Month handles GET /api/reports/months/{year}/{month}
// @Summary Month summary with its days
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month 1-12"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/reports/months/{year}/{month} [get]
func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(mux.Vars(r)["year"])
	month, _ := strconv.Atoi(mux.Vars(r)["month"])
	period, err := h.reports.StatsForMonth(year, time.Month(month))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", period)
}

// Year handles GET /api/reports/years/{year}
// @Summary Year summary with its twelve months
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param year path int true "Year"
// @Success 200 {object} Response
// @Router /api/reports/years/{year} [get]
func (h *Handler) Year(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(mux.Vars(r)["year"])
	period, err := h.reports.StatsForYear(year)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", period)
}

// Calendar handles GET /api/reports/calendar?mode=&date=
// @Summary Calendar page in week, month or year mode
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param mode query string false "week, month or year" default(month)
// @Param date query string false "Anchor day, defaults to today"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/reports/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	mode, err := analytics.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	view, err := h.reports.Calendar(mode, r.URL.Query().Get("date"))
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", view)
}
