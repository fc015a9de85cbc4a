package handlers

import (
	"net/http"

	"github.com/Dosada05/friendly-matches/services"
)

type RuleHandler struct {
	ruleService services.RuleService
}

func NewRuleHandler(rs services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: rs}
}

// CreateRule
// @Summary Задать правило допуска к матчу
// @Tags rules
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.CreateRuleInput true "Дедлайн регистрации, возраст, пол"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 403 {object} map[string]string "Не организатор"
// @Failure 409 {object} map[string]string "Правило уже есть"
// @Security BearerAuth
// @Router /matches/{matchID}/rule [post]
func (h *RuleHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
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

	var input services.CreateRuleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rule, err := h.ruleService.CreateRule(r.Context(), matchID, input, requester)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, jsonResponse{"rule": rule})
}

func (h *RuleHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rule, err := h.ruleService.GetRule(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"rule": rule})
}

// UpdateRule
// @Summary Изменить правило допуска
// @Description Передаются только изменяемые поля. Пересчитывает статус матча, в том числе может вернуть отменённый матч.
// @Tags rules
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.UpdateRuleInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/rule [patch]
func (h *RuleHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
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

	var input services.UpdateRuleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rule, err := h.ruleService.UpdateRule(r.Context(), matchID, input, requester)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"rule": rule})
}
