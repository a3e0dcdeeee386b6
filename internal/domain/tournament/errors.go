package tournament

import (
	"errors"

	"github.com/riskibarqy/badminton-tournament/internal/platform/errkind"
)

// Error categories. Every specific error below belongs to exactly one of
// them, so callers can branch on either with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrState      = errors.New("invalid state")
	ErrNotFound   = errors.New("not found")
	ErrConstraint = errors.New("constraint unsatisfied")
)

var (
	ErrInvalidName        = validationError("player name must be a non-empty string")
	ErrDuplicateName      = validationError("player name must be unique")
	ErrInvalidScore       = validationError("score must be a non-negative number")
	ErrInvalidPair        = validationError("pair must contain exactly 2 distinct player ids")
	ErrOverlappingPairs   = validationError("a player cannot appear in both pairs of the same match")
	ErrInvalidWinner      = validationError("winner must be 1 (pair1) or 2 (pair2)")
	ErrInvalidRoundNumber = validationError("round number must be a positive integer")
	ErrDoubleBooked       = validationError("player cannot appear in multiple matches in same round")
	ErrInvalidSettings    = validationError("invalid tournament settings")

	ErrNotEnoughPlayers  = stateError("tournament requires at least 4 players to start")
	ErrInvalidTransition = stateError("invalid state transition")
	ErrAlreadyCompleted  = stateError("match result already recorded")
	ErrMatchNotCompleted = stateError("match has no recorded result")
	ErrEmptyRound        = stateError("cannot start round without matches")
	ErrIncompleteMatches = stateError("cannot complete round until all matches are finished")
	ErrNotActive         = stateError("tournament not active or previous round not completed")
	ErrNoActiveRound     = stateError("no active round to record results")
	ErrRosterFrozen      = stateError("players cannot change during active tournament")
	ErrSettingsLocked    = stateError("settings cannot change during active tournament")

	ErrPlayerNotFound = notFoundError("player not found")
	ErrMatchNotFound  = notFoundError("match not found in current round")
	ErrRoundNotFound  = notFoundError("round not found")

	ErrConstraintUnsatisfied = errkind.New(ErrConstraint, "pairing constraints could not be satisfied")
)

func validationError(msg string) error {
	return errkind.New(ErrValidation, msg)
}

func stateError(msg string) error {
	return errkind.New(ErrState, msg)
}

func notFoundError(msg string) error {
	return errkind.New(ErrNotFound, msg)
}
