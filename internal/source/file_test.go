package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceFiltersSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"schema_id":"presence","publisher":"0x01","seq":0,"fields":["1","p1","0x02","view_start"]}

{"schema_id":"social_interactions","publisher":"0x01","seq":1,"fields":["a"]}
{"schema_id":"presence","publisher":"0x01","seq":2,"fields":["2","p1","0x03","typing_start"]}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src := NewFileSource(path, "presence")
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 presence records, got %d", len(records))
	}
	if records[1].Seq != 2 {
		t.Fatalf("seq mismatch: %d", records[1].Seq)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.jsonl"), "")
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
