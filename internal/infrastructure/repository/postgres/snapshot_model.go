package postgres

import "time"

const kvEntriesTable = "kv_entries"

type kvEntryTableModel struct {
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
