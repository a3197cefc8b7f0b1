package storage

import "socialpulse/internal/model"

// Storage defines a sink for raw records.
type Storage interface {
	PutRecordBatch(records []model.RawRecord) error
}
