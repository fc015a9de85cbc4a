package handlers

import (
	"net/http"

	"github.com/Dosada05/friendly-matches/services"
)

type EnrollmentHandler struct {
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(es services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: es}
}

// Enroll
// @Summary Записать команду на матч
// @Tags enrollments
// @Produce json
// @Param matchID path int true "Match ID"
// @Param teamID path int true "Team ID"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Не капитан"
// @Failure 404 {object} map[string]string "Матч или команда не найдены"
// @Failure 409 {object} map[string]string "Команда уже записана"
// @Failure 422 {object} map[string]string "Запись невозможна (дедлайн, мест нет, пересечение, состав)"
// @Security BearerAuth
// @Router /matches/{matchID}/teams/{teamID} [post]
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	matchID, teamID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	requester, err := requesterFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.enrollmentService.Enroll(r.Context(), matchID, teamID, requester); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, jsonResponse{"match_id": matchID, "team_id": teamID})
}

// Withdraw
// @Summary Снять команду с матча
// @Tags enrollments
// @Param matchID path int true "Match ID"
// @Param teamID path int true "Team ID"
// @Success 204
// @Security BearerAuth
// @Router /matches/{matchID}/teams/{teamID} [delete]
func (h *EnrollmentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	matchID, teamID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	requester, err := requesterFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.enrollmentService.Withdraw(r.Context(), matchID, teamID, requester); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EnrollmentHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	enrollments, err := h.enrollmentService.ListEnrollments(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"teams": enrollments})
}

// SweepCompliance
// @Summary Снять команды, не проходящие по правилу
// @Tags enrollments
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Список снятых команд с причинами"
// @Security BearerAuth
// @Router /matches/{matchID}/compliance-sweep [post]
func (h *EnrollmentHandler) SweepCompliance(w http.ResponseWriter, r *http.Request) {
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

	evictions, err := h.enrollmentService.SweepCompliance(r.Context(), matchID, requester)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, jsonResponse{"evicted": evictions})
}

func (h *EnrollmentHandler) pathIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return matchID, teamID, true
}
