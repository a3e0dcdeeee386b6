package postgres

import "testing"

func TestGetEntryQuery(t *testing.T) {
	query, args, err := getEntryQuery("badminton_tournament")
	if err != nil {
		t.Fatalf("build get query: %v", err)
	}

	wantQuery := "SELECT key, value, updated_at FROM kv_entries WHERE key = $1 LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "badminton_tournament" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
