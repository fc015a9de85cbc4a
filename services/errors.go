package services

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind — стабильная категория ошибки, по которой транспорт выбирает ответ.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindForbidden          ErrorKind = "forbidden"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindTransient          ErrorKind = "transient"
	KindInternal           ErrorKind = "internal"
)

// Базовые ошибки категорий. Конкретные ошибки ниже оборачивают одну из них.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrConflict           = errors.New("conflict")
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrTransient          = errors.New("temporary storage failure, retry later")
)

var (
	ErrMatchNotFound   = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrRuleNotFound    = fmt.Errorf("%w: eligibility rule not found", ErrNotFound)
	ErrTeamNotFound    = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrTeamDeleted     = fmt.Errorf("%w: team has been deleted", ErrNotFound)
	ErrNotEnrolled     = fmt.Errorf("%w: team is not enrolled in this match", ErrNotFound)
	ErrPenaltyNotFound = fmt.Errorf("%w: penalty not found", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("%w: match report not found", ErrNotFound)

	ErrAlreadyEnrolled  = fmt.Errorf("%w: team is already enrolled in this match", ErrConflict)
	ErrRuleExists       = fmt.Errorf("%w: eligibility rule already exists for this match", ErrConflict)
	ErrPenaltyExists    = fmt.Errorf("%w: penalty already exists for this match", ErrConflict)
	ErrReportExists     = fmt.Errorf("%w: match already has a report", ErrConflict)
	ErrMatchIsPenalized = fmt.Errorf("%w: match has a penalty, remove it first", ErrConflict)

	ErrMatchTitleRequired    = fmt.Errorf("%w: match title is required", ErrValidationFailed)
	ErrMatchTitleTooLong     = fmt.Errorf("%w: match title is too long", ErrValidationFailed)
	ErrMatchStartRequired    = fmt.Errorf("%w: scheduled start is required", ErrValidationFailed)
	ErrMatchStartInPast      = fmt.Errorf("%w: scheduled start must be in the future", ErrValidationFailed)
	ErrMatchInvalidDuration  = fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidationFailed)
	ErrInvalidMatchStatus    = fmt.Errorf("%w: invalid match status", ErrValidationFailed)
	ErrInvalidSort           = fmt.Errorf("%w: invalid sort order", ErrValidationFailed)
	ErrDeadlineRequired      = fmt.Errorf("%w: registration deadline date is required", ErrValidationFailed)
	ErrInvalidDeadlineDate   = fmt.Errorf("%w: registration deadline date must be YYYY-MM-DD", ErrValidationFailed)
	ErrInvalidDeadlineTime   = fmt.Errorf("%w: registration deadline time must be HH:MM", ErrValidationFailed)
	ErrDeadlineAfterStart    = fmt.Errorf("%w: registration deadline must not be after the match start", ErrValidationFailed)
	ErrInvalidAgeRange       = fmt.Errorf("%w: ages must be between 0 and 100 and minimum must not exceed maximum", ErrValidationFailed)
	ErrInvalidGender         = fmt.Errorf("%w: gender must be one of male, female, any", ErrValidationFailed)
	ErrInvalidID             = fmt.Errorf("%w: identifiers must be positive", ErrValidationFailed)
	ErrSameHomeAndAway       = fmt.Errorf("%w: home and away teams must be different", ErrValidationFailed)
	ErrPenalizedNotInPair    = fmt.Errorf("%w: penalized team must be the home or the away team", ErrValidationFailed)
	ErrPenaltyReasonRequired = fmt.Errorf("%w: penalty reason is required", ErrValidationFailed)
	ErrPenaltyReasonTooLong  = fmt.Errorf("%w: penalty reason is too long", ErrValidationFailed)
	ErrNoFieldsToUpdate      = fmt.Errorf("%w: no fields provided for update", ErrValidationFailed)

	ErrNotOrganizer           = fmt.Errorf("%w: only the match organizer or an administrator can do this", ErrForbiddenOperation)
	ErrUserMustBeCaptain      = fmt.Errorf("%w: only the team captain or an administrator can enroll the team", ErrForbiddenOperation)
	ErrWithdrawForbidden      = fmt.Errorf("%w: only the team captain, the organizer or an administrator can withdraw the team", ErrForbiddenOperation)
	ErrFinishedWithdrawDenied = fmt.Errorf("%w: only the organizer or an administrator can withdraw from a finished match", ErrForbiddenOperation)

	ErrMatchCancelled      = fmt.Errorf("%w: match is cancelled", ErrPreconditionFailed)
	ErrMatchNotOpen        = fmt.Errorf("%w: match is not open for enrollment", ErrPreconditionFailed)
	ErrRegistrationClosed  = fmt.Errorf("%w: registration deadline has passed", ErrPreconditionFailed)
	ErrRegistrationOngoing = fmt.Errorf("%w: registration deadline has not passed yet", ErrPreconditionFailed)
	ErrMatchFull           = fmt.Errorf("%w: match already has two teams", ErrPreconditionFailed)
	ErrNotEnoughTeams      = fmt.Errorf("%w: match needs two enrolled teams", ErrPreconditionFailed)
	ErrScheduleConflict    = fmt.Errorf("%w: team has another match at the same time", ErrPreconditionFailed)
	ErrTeamNotEligible     = fmt.Errorf("%w: team roster does not satisfy the match rule", ErrPreconditionFailed)
	ErrTeamNotInMatch      = fmt.Errorf("%w: team is not enrolled in this match", ErrPreconditionFailed)
)

// KindOf возвращает категорию ошибки. Неизвестные ошибки считаются внутренними.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrValidationFailed):
		return KindInvalidInput
	case errors.Is(err, ErrForbiddenOperation):
		return KindForbidden
	case errors.Is(err, ErrPreconditionFailed):
		return KindPreconditionFailed
	case errors.Is(err, ErrTransient),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransient
	default:
		return KindInternal
	}
}

// isRejection: ошибка бизнес-проверки, а не сбой хранилища или программы.
func isRejection(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindConflict, KindInvalidInput, KindForbidden, KindPreconditionFailed:
		return true
	}
	return false
}

// storeError превращает ошибку хранилища в Transient, сохраняя исходную причину.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}
