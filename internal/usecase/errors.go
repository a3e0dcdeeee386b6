package usecase

import (
	"errors"

	"github.com/riskibarqy/badminton-tournament/internal/platform/errkind"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	ErrNoTournament       = errkind.New(ErrNotFound, "no tournament loaded")
	ErrBackupNotFound     = errkind.New(ErrNotFound, "backup not found")
	ErrInvalidBackupKey   = errkind.New(ErrInvalidInput, "invalid backup key")
	ErrCorruptData        = errkind.New(ErrInvalidInput, "stored tournament data is corrupt")
	ErrStorageUnavailable = errkind.New(ErrDependencyUnavailable, "tournament storage unavailable")
)
