package source

import (
	"context"
	"fmt"

	"socialpulse/internal/model"
	"socialpulse/internal/schema"
)

// Source retrieves the current full set of raw records for one schema from
// an external append-only log. How the set is obtained (RPC, HTTP, local
// file) is the source's concern; callers only ask for it on demand.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawRecord, error)
}

// Config selects and parameterizes a source implementation.
type Config struct {
	Type       string
	RPCURL     string
	Method     string
	Endpoint   string
	Collection string
	Publisher  string
	PageSize   int
	Path       string
}

// NewFromConfig builds a source for the given schema.
func NewFromConfig(ctx context.Context, cfg Config, eventSchema *schema.EventSchema) (Source, error) {
	switch cfg.Type {
	case "streams":
		return NewStreamsSource(ctx, StreamsConfig{
			RPCURL:    cfg.RPCURL,
			Method:    cfg.Method,
			SchemaID:  eventSchema.ID,
			Publisher: cfg.Publisher,
		})
	case "subgraph":
		return NewSubgraphSource(SubgraphConfig{
			Endpoint:   cfg.Endpoint,
			Collection: cfg.Collection,
			PageSize:   cfg.PageSize,
			Publisher:  cfg.Publisher,
		}, eventSchema)
	case "file":
		return NewFileSource(cfg.Path, eventSchema.ID), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}
