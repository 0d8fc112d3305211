package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrLeagueNameRequired  = errors.New("league name is required")
	ErrUserAlreadyInTeam   = errors.New("user is already on the team roster")
	ErrCannotRemoveCaptain = errors.New("cannot remove the team captain")
	ErrInvalidDayOfWeek    = errors.New("invalid day of week")
	ErrInvalidTimeOfDay    = errors.New("invalid time of day")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrTeamNameConflict     = errors.New("team name is already in use")
	ErrLeagueNameConflict   = errors.New("league name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrCaptainActionForbidden = errors.New("only the team captain can perform this action")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound   = errors.New("user not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrLeagueNotFound = errors.New("league not found")
	ErrMatchNotFound  = errors.New("match not found")

	// Ошибки лиг
	ErrLeagueInvalidDateRange        = errors.New("league end date must be after start date")
	ErrLeagueInvalidStatus           = errors.New("invalid league status provided")
	ErrLeagueInvalidStatusTransition = errors.New("invalid league status transition")

	// Ошибки генерации календаря
	ErrCalendarStartDateNotFuture = errors.New("calendar start date must be strictly in the future")
	ErrInsufficientTeams          = errors.New("league needs at least 2 teams to generate a calendar")
	ErrInvalidTeamData            = errors.New("malformed team availability data encountered")
	ErrMatchDateOutOfBounds       = errors.New("match date is outside the league date bounds")
	ErrMatchDateRequired          = errors.New("a concrete match date is required")
)

// MissingAvailabilityError называет каждую команду без записей доступности;
// генерация прерывается до начала планирования.
type MissingAvailabilityError struct {
	TeamNames []string
}

func (e *MissingAvailabilityError) Error() string {
	return fmt.Sprintf("teams have no availability records: %s", strings.Join(e.TeamNames, ", "))
}

// PlayerConflictError поднимается только из пути ручного назначения даты.
type PlayerConflictError struct {
	Date time.Time
}

func (e *PlayerConflictError) Error() string {
	return fmt.Sprintf("player conflict detected on %s: a roster member is already booked for another match that day",
		e.Date.Format("2006-01-02"))
}
