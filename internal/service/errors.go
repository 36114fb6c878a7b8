package service

import (
	"errors"
)

// ErrorKind 錯誤分類，由 HTTP 層對應到狀態碼
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindConflict     ErrorKind = "CONFLICT"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindValidation   ErrorKind = "VALIDATION"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindExternal     ErrorKind = "EXTERNAL_SERVICE_ERROR"
	KindInternal     ErrorKind = "INTERNAL"
)

// Error 可直接顯示給使用者的錯誤；errors.Is 比對 Kind 與 Message
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

// Wrap 保留原始錯誤，回傳新的副本
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// KindOf 取得錯誤分類，非 *Error 視為 KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrRoomNotFound        = newError(KindNotFound, "Room not found")
	ErrUserNotFound        = newError(KindNotFound, "User not found")
	ErrSpeechNotFound      = newError(KindNotFound, "Speech not found")
	ErrParticipantNotFound = newError(KindNotFound, "Participant not found")

	ErrInvalidRoomCode   = newError(KindValidation, "Invalid room code")
	ErrUnsupportedFormat = newError(KindValidation, "Unsupported debate format")
	ErrInvalidTeam       = newError(KindValidation, "Invalid team")
	ErrInvalidDuration   = newError(KindValidation, "Invalid speech duration")
	ErrPOIProtectedTime  = newError(KindValidation, "Points of information are not allowed during protected time")
	ErrInvalidTopicArea  = newError(KindValidation, "Invalid topic area")
	ErrInvalidDifficulty = newError(KindValidation, "Invalid difficulty")
	ErrInvalidExperience = newError(KindValidation, "Invalid experience level")
	ErrInvalidAudio      = newError(KindValidation, "Invalid audio payload")

	ErrRoomNotAccepting    = newError(KindInvalidState, "Room is not accepting participants")
	ErrNoMotion            = newError(KindInvalidState, "A motion must be set before starting")
	ErrNotAllReady         = newError(KindInvalidState, "All participants must be ready")
	ErrDebateNotInProgress = newError(KindInvalidState, "Debate is not in progress")
	ErrAlreadyStarted      = newError(KindInvalidState, "Debate has already started")
	ErrLeaveNotAllowed     = newError(KindInvalidState, "Participants cannot leave after the debate has started")
	ErrReadyNotAllowed     = newError(KindInvalidState, "Ready state can only change before the debate starts")
	ErrMotionNotWaiting    = newError(KindInvalidState, "Motion can only be set before the debate starts")
	ErrCancelNotWaiting    = newError(KindInvalidState, "Only a waiting room can be cancelled")
	ErrSpeechClosed        = newError(KindInvalidState, "Speech has already ended")

	ErrInvalidGovernmentRole = newError(KindConflict, "Invalid role for Government team")
	ErrInvalidOppositionRole = newError(KindConflict, "Invalid role for Opposition team")
	ErrSeatTaken             = newError(KindConflict, "This speaker role is already taken")
	ErrAlreadyJoined         = newError(KindConflict, "You have already joined this room")
	ErrSpeechAlreadyOpen     = newError(KindConflict, "A speech is already in progress")
	ErrSpeechAlreadyGiven    = newError(KindConflict, "This speech has already been given")
	ErrSpeechStillOpen       = newError(KindConflict, "The current speech must end before advancing")
	ErrUsernameTaken         = newError(KindConflict, "Username already taken")

	ErrNotCreator          = newError(KindForbidden, "Only the room creator can start the debate")
	ErrMotionNotCreator    = newError(KindForbidden, "Only the room creator can set the motion")
	ErrCancelNotCreator    = newError(KindForbidden, "Only the room creator can cancel the debate")
	ErrAdvanceForbidden    = newError(KindForbidden, "Only the room creator or a debater can advance the speaker")
	ErrNotCurrentSpeaker   = newError(KindForbidden, "Only the current speaker can start a speech")
	ErrEndSpeechForbidden  = newError(KindForbidden, "Only the speaker or the room creator can end a speech")
	ErrTranscribeForbidden = newError(KindForbidden, "Only the speaker can submit audio for this speech")
	ErrNotParticipant      = newError(KindForbidden, "You are not a participant in this room")
	ErrPOISameTeam         = newError(KindForbidden, "Cannot offer a point of information to your own team")

	ErrInvalidCredentials = newError(KindUnauthorized, "Invalid username or password")

	ErrMotionGeneration = newError(KindExternal, "Failed to generate motion")
)

// invalidRoleFor 依隊伍回傳對應的角色錯誤
func invalidRoleFor(team string) *Error {
	if team == "opposition" {
		return ErrInvalidOppositionRole
	}
	return ErrInvalidGovernmentRole
}
