package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/league-system/services"
)

type CalendarHandler struct {
	calendarService services.CalendarService
}

func NewCalendarHandler(calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

const dateLayout = "2006-01-02"

// Generate строит календарь и возвращает его БЕЗ сохранения — администратор
// сначала просматривает результат.
func (h *CalendarHandler) Generate(w http.ResponseWriter, r *http.Request) {
	leagueID, startDate, ok := h.readGenerateInput(w, r)
	if !ok {
		return
	}

	result, err := h.calendarService.GenerateCalendar(r.Context(), leagueID, startDate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"calendar": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateAndSave повторяет генерацию (она детерминирована для неизменных
// входных данных) и атомарно сохраняет результат.
func (h *CalendarHandler) GenerateAndSave(w http.ResponseWriter, r *http.Request) {
	leagueID, startDate, ok := h.readGenerateInput(w, r)
	if !ok {
		return
	}

	result, err := h.calendarService.GenerateCalendar(r.Context(), leagueID, startDate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := h.calendarService.SaveCalendar(r.Context(), leagueID, result); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"calendar": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.calendarService.GetLeagueCalendar(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"calendar": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AssignDate — ручное назначение даты матчу, который генератор пометил
// needs_manual_assignment (или перенос уже назначенного матча).
func (h *CalendarHandler) AssignDate(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MatchDate string `json:"match_date"`
		MatchTime string `json:"match_time"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.MatchDate == "" {
		badRequestResponse(w, r, errors.New("match_date is required"))
		return
	}
	date, err := time.Parse(dateLayout, input.MatchDate)
	if err != nil {
		badRequestResponse(w, r, errors.New("match_date must be formatted as YYYY-MM-DD"))
		return
	}

	match, err := h.calendarService.AssignMatchDate(r.Context(), matchID, date, input.MatchTime)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CalendarHandler) readGenerateInput(w http.ResponseWriter, r *http.Request) (int, time.Time, bool) {
	leagueID, err := urlParamInt(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, time.Time{}, false
	}

	var input struct {
		StartDate string `json:"start_date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return 0, time.Time{}, false
	}
	if input.StartDate == "" {
		badRequestResponse(w, r, errors.New("start_date is required"))
		return 0, time.Time{}, false
	}
	startDate, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		badRequestResponse(w, r, errors.New("start_date must be formatted as YYYY-MM-DD"))
		return 0, time.Time{}, false
	}
	return leagueID, startDate, true
}
