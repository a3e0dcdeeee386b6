package tournament

import "fmt"

type Mode string

const (
	ModeSingles Mode = "singles"
	ModeDoubles Mode = "doubles"
)

func (m Mode) Valid() bool {
	return m == ModeSingles || m == ModeDoubles
}

type Settings struct {
	WinnerPoints int
	LoserPoints  int
	Mode         Mode
}

func DefaultSettings() Settings {
	return Settings{
		WinnerPoints: 2,
		LoserPoints:  1,
		Mode:         ModeSingles,
	}
}

func (s Settings) Validate() error {
	if s.WinnerPoints <= 0 {
		return fmt.Errorf("%w: winnerPoints must be greater than 0, got %d", ErrInvalidSettings, s.WinnerPoints)
	}
	if s.LoserPoints < 0 {
		return fmt.Errorf("%w: loserPoints must not be negative, got %d", ErrInvalidSettings, s.LoserPoints)
	}
	if s.LoserPoints >= s.WinnerPoints {
		return fmt.Errorf("%w: loserPoints (%d) must be lower than winnerPoints (%d)", ErrInvalidSettings, s.LoserPoints, s.WinnerPoints)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, s.Mode)
	}
	return nil
}

// SettingsUpdate carries a partial change; nil fields keep the current value.
type SettingsUpdate struct {
	WinnerPoints *int
	LoserPoints  *int
	Mode         *Mode
}

func (s Settings) Merge(update SettingsUpdate) Settings {
	out := s
	if update.WinnerPoints != nil {
		out.WinnerPoints = *update.WinnerPoints
	}
	if update.LoserPoints != nil {
		out.LoserPoints = *update.LoserPoints
	}
	if update.Mode != nil {
		out.Mode = *update.Mode
	}
	return out
}
