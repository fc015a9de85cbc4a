package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/friendly-matches/middleware"
	"github.com/Dosada05/friendly-matches/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

// retryAfterSeconds — подсказка клиенту при временной ошибке хранилища.
const retryAfterSeconds = "5"

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, kind string, message interface{}, headers http.Header) {
	env := jsonResponse{"error": message, "kind": kind}
	if err := writeJSON(w, status, env, headers); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, string(services.KindInternal), message, nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, string(services.KindInvalidInput), err.Error(), nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, "unauthenticated", message, nil)
}

// mapServiceErrorToHTTP выбирает статус ответа по категории ошибки сервиса.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindNotFound:
		errorResponse(w, r, http.StatusNotFound, string(kind), err.Error(), nil)
	case services.KindConflict:
		errorResponse(w, r, http.StatusConflict, string(kind), err.Error(), nil)
	case services.KindInvalidInput:
		errorResponse(w, r, http.StatusBadRequest, string(kind), err.Error(), nil)
	case services.KindForbidden:
		errorResponse(w, r, http.StatusForbidden, string(kind), err.Error(), nil)
	case services.KindPreconditionFailed:
		errorResponse(w, r, http.StatusUnprocessableEntity, string(kind), err.Error(), nil)
	case services.KindTransient:
		// Причину (драйвер, таймаут) клиенту не отдаём.
		slog.WarnContext(r.Context(), "transient failure",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
		headers := http.Header{"Retry-After": []string{retryAfterSeconds}}
		errorResponse(w, r, http.StatusServiceUnavailable, string(kind), services.ErrTransient.Error(), headers)
	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// requesterFromContext собирает Requester из claims, положенных middleware.Authenticate.
func requesterFromContext(r *http.Request) (services.Requester, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return services.Requester{}, err
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return services.Requester{}, err
	}
	return services.Requester{UserID: userID, Role: role}, nil
}

func writeOK(w http.ResponseWriter, r *http.Request, status int, data jsonResponse) {
	if err := writeJSON(w, status, data, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
