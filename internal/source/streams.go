package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"socialpulse/internal/model"
)

const defaultStreamsMethod = "streams_getAllPublisherDataForSchema"

// StreamsConfig parameterizes the data-streams RPC source.
type StreamsConfig struct {
	RPCURL    string
	Method    string
	SchemaID  string
	Publisher string
}

// StreamsSource reads published records for a schema from a data-streams
// node over JSON-RPC.
type StreamsSource struct {
	cfg       StreamsConfig
	rpcClient *rpc.Client
}

// NewStreamsSource dials the data-streams endpoint.
func NewStreamsSource(ctx context.Context, cfg StreamsConfig) (*StreamsSource, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.SchemaID == "" {
		return nil, fmt.Errorf("schema id is required")
	}
	if cfg.Publisher == "" {
		return nil, fmt.Errorf("publisher is required")
	}
	if cfg.Method == "" {
		cfg.Method = defaultStreamsMethod
	}

	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	return &StreamsSource{cfg: cfg, rpcClient: rpcClient}, nil
}

// Close closes the underlying RPC client.
func (s *StreamsSource) Close() {
	if s.rpcClient != nil {
		s.rpcClient.Close()
	}
}

func (s *StreamsSource) Name() string {
	return "streams"
}

// Fetch pulls the full published set for the schema. Records keep their
// stream position as the sequence number; the stream is append-only, so
// positions are stable across fetches.
func (s *StreamsSource) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	var raw []json.RawMessage
	if err := s.rpcClient.CallContext(ctx, &raw, s.cfg.Method, s.cfg.SchemaID, s.cfg.Publisher); err != nil {
		return nil, fmt.Errorf("streams call: %w", err)
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339Nano)
	records := make([]model.RawRecord, 0, len(raw))
	for i, fields := range raw {
		records = append(records, model.RawRecord{
			SchemaID:  s.cfg.SchemaID,
			Publisher: s.cfg.Publisher,
			Seq:       uint64(i),
			Fields:    fields,
			FetchedAt: fetchedAt,
		})
	}
	return records, nil
}
