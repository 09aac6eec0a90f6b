package rooms

import (
	"errors"
	"fmt"
)

// Kind classifies a room engine failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindState
	KindAuthorization
	KindCapacity
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindAuthorization:
		return "authorization"
	case KindCapacity:
		return "capacity"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a room engine failure carrying a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation wraps a payload problem as a KindValidation error.
func Validation(message string) *Error {
	return NewError(KindValidation, message)
}

var (
	ErrRoomNotFound     = NewError(KindNotFound, "Room not found. Check the code and try again.")
	ErrAlreadyStarted   = NewError(KindState, "This test has already started.")
	ErrNotStarted       = NewError(KindState, "The test has not started yet.")
	ErrAlreadyInRoom    = NewError(KindState, "You are already in a room. Leave it first.")
	ErrNotFriendly      = NewError(KindState, "This room is not in friendly mode.")
	ErrAlreadyRevealed  = NewError(KindState, "Answers for this question were already revealed.")
	ErrNotRevealed      = NewError(KindState, "Wait until everyone has answered.")
	ErrNoMoreQuestions  = NewError(KindState, "There are no more questions.")
	ErrNotHostStart     = NewError(KindAuthorization, "Only the host can start the test.")
	ErrNotHostAdvance   = NewError(KindAuthorization, "Only host can advance.")
	ErrNotParticipant   = NewError(KindAuthorization, "You are not a participant of this room.")
	ErrStaleQuestion    = NewError(KindValidation, "That question is no longer active.")
	ErrInvalidOption    = NewError(KindValidation, "Invalid option for this question.")
	ErrNameTaken        = NewError(KindValidation, "That name is already taken in this room.")
	ErrCodeTaken        = NewError(KindInternal, "room code already in use")
	ErrNoQuestions      = NewError(KindValidation, "At least one question is required.")
	ErrInvalidRoomMode  = NewError(KindValidation, "Room mode must be friendly or exam.")
	ErrNegativeResult   = NewError(KindValidation, "Result values must not be negative.")
	ErrMalformedRequest = NewError(KindValidation, "Malformed request.")
)

// RoomFull is the capacity error for a room limited to max participants.
func RoomFull(max int) *Error {
	return NewError(KindCapacity, fmt.Sprintf("Room is full (max %d participants).", max))
}

// KindOf reports the Kind of err, KindInternal when err is not a room engine error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindInternal
}
