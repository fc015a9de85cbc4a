package handlers

import (
	"net/http"

	"github.com/Dosada05/friendly-matches/services"
)

type PenaltyHandler struct {
	penaltyService services.PenaltyService
}

func NewPenaltyHandler(ps services.PenaltyService) *PenaltyHandler {
	return &PenaltyHandler{penaltyService: ps}
}

// ApplyPenalty
// @Summary Присудить техническое поражение
// @Description Создаёт протокол 3:0 против наказанной команды и завершает матч.
// @Tags penalties
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.ApplyPenaltyInput true "Наказанная команда, хозяева, гости, причина"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Санкция или протокол уже есть"
// @Failure 422 {object} map[string]string "Регистрация не закрыта или команд меньше двух"
// @Security BearerAuth
// @Router /matches/{matchID}/penalty [post]
func (h *PenaltyHandler) ApplyPenalty(w http.ResponseWriter, r *http.Request) {
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

	var input services.ApplyPenaltyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	penalty, err := h.penaltyService.ApplyPenalty(r.Context(), matchID, input, requester)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, jsonResponse{"penalty": penalty})
}

func (h *PenaltyHandler) GetPenalty(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	penalty, err := h.penaltyService.GetPenalty(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"penalty": penalty})
}

func (h *PenaltyHandler) UpdatePenalty(w http.ResponseWriter, r *http.Request) {
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

	var input services.UpdatePenaltyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	penalty, err := h.penaltyService.UpdatePenalty(r.Context(), matchID, input, requester)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"penalty": penalty})
}

// RemovePenalty
// @Summary Отменить техническое поражение
// @Description Удаляет санкцию и протокол, матч возвращается в статус confirmed.
// @Tags penalties
// @Param matchID path int true "Match ID"
// @Success 204
// @Security BearerAuth
// @Router /matches/{matchID}/penalty [delete]
func (h *PenaltyHandler) RemovePenalty(w http.ResponseWriter, r *http.Request) {
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

	if err := h.penaltyService.RemovePenalty(r.Context(), matchID, requester); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
