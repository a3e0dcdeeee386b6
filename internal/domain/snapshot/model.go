package snapshot

import "time"

// Entry is one stored document addressed by key.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

func (e Entry) Size() int {
	return len(e.Value)
}
