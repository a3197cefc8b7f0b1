package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"socialpulse/internal/model"
)

// FileSource replays raw records from a JSONL file, as written by a previous
// fetch. Records for other schemas are skipped.
type FileSource struct {
	path     string
	schemaID string
}

func NewFileSource(path, schemaID string) *FileSource {
	return &FileSource{path: path, schemaID: schemaID}
}

func (s *FileSource) Name() string {
	return "file"
}

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []model.RawRecord
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record model.RawRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("parse record: %w", err)
		}
		if s.schemaID != "" && record.SchemaID != s.schemaID {
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return records, nil
}
