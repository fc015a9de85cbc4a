package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/services"
)

type MatchHandler struct {
	matchService services.MatchService
	loc          *time.Location
}

func NewMatchHandler(ms services.MatchService, loc *time.Location) *MatchHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &MatchHandler{matchService: ms, loc: loc}
}

// CreateMatch
// @Summary Создать товарищеский матч
// @Tags matches
// @Accept json
// @Produce json
// @Param body body services.CreateMatchInput true "Название, время начала, длительность и место"
// @Success 201 {object} map[string]interface{} "Матч создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), requester.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, jsonResponse{"match": match})
}

// GetMatch
// @Summary Получить матч
// @Description Статус пересчитывается перед ответом.
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Матч не найден"
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"match": match})
}

// ListMatches
// @Summary Список матчей
// @Tags matches
// @Produce json
// @Param status query string false "Статусы через запятую"
// @Param date_from query string false "YYYY-MM-DD или RFC3339"
// @Param q query string false "Поиск по названию и месту"
// @Param sort query string false "start_asc | start_desc | title"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Некорректный фильтр"
// @Router /matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseListFilter(r.URL.Query())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"matches": matches})
}

// DeleteMatch
// @Summary Удалить матч
// @Tags matches
// @Param matchID path int true "Match ID"
// @Success 204
// @Failure 403 {object} map[string]string "Не организатор"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Security BearerAuth
// @Router /matches/{matchID} [delete]
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	requester, err := requesterFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), matchID, requester); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) parseListFilter(q url.Values) (services.ListMatchesFilter, error) {
	filter := services.ListMatchesFilter{
		TextSearch: q.Get("q"),
		Sort:       services.MatchSort(q.Get("sort")),
	}

	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, models.MatchStatus(strings.TrimSpace(s)))
		}
	}

	if raw := q.Get("date_from"); raw != "" {
		from, err := time.ParseInLocation(services.DeadlineDateLayout, raw, h.loc)
		if err != nil {
			from, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				return filter, fmt.Errorf("invalid date_from: %q", raw)
			}
		}
		filter.DateFrom = &from
	}

	var err error
	if filter.Limit, err = intQuery(q, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = intQuery(q, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intQuery(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}
