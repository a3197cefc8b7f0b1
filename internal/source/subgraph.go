package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"socialpulse/internal/model"
	"socialpulse/internal/schema"
)

const defaultPageSize = 1000

// SubgraphConfig parameterizes the GraphQL subgraph source.
type SubgraphConfig struct {
	Endpoint   string
	Collection string
	PageSize   int
	Publisher  string
}

// SubgraphSource reads records from a GraphQL subgraph, paging with
// first/skip until a short page is returned.
type SubgraphSource struct {
	cfg    SubgraphConfig
	schema *schema.EventSchema
	query  string
	client *http.Client
}

// NewSubgraphSource builds the source; the selection set is derived from the
// schema's declared field order.
func NewSubgraphSource(cfg SubgraphConfig, eventSchema *schema.EventSchema) (*SubgraphSource, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("subgraph endpoint is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("subgraph collection is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if eventSchema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	return &SubgraphSource{
		cfg:    cfg,
		schema: eventSchema,
		query:  buildQuery(cfg.Collection, eventSchema),
		client: newHTTPClient(30 * time.Second),
	}, nil
}

func (s *SubgraphSource) Name() string {
	return "subgraph"
}

// Fetch pages through the collection and returns the full set. The sequence
// number is the record's position in the paged scan.
func (s *SubgraphSource) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	fetchedAt := time.Now().UTC().Format(time.RFC3339Nano)
	records := make([]model.RawRecord, 0, s.cfg.PageSize)

	for skip := 0; ; skip += s.cfg.PageSize {
		page, err := s.fetchPage(ctx, skip)
		if err != nil {
			return nil, err
		}
		for _, fields := range page {
			records = append(records, model.RawRecord{
				SchemaID:  s.schema.ID,
				Publisher: s.cfg.Publisher,
				Seq:       uint64(len(records)),
				Fields:    fields,
				FetchedAt: fetchedAt,
			})
		}
		if len(page) < s.cfg.PageSize {
			return records, nil
		}
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *SubgraphSource) fetchPage(ctx context.Context, skip int) ([]json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: s.query,
		Variables: map[string]interface{}{
			"first": s.cfg.PageSize,
			"skip":  skip,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subgraph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subgraph status %d", resp.StatusCode)
	}

	var parsed graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("subgraph error: %s", parsed.Errors[0].Message)
	}

	raw, ok := parsed.Data[s.cfg.Collection]
	if !ok {
		return nil, fmt.Errorf("collection %s missing from response", s.cfg.Collection)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse collection: %w", err)
	}
	return items, nil
}

func buildQuery(collection string, eventSchema *schema.EventSchema) string {
	names := make([]string, 0, len(eventSchema.Fields))
	for _, f := range eventSchema.Fields {
		names = append(names, f.Name)
	}
	return fmt.Sprintf(
		"query($first: Int!, $skip: Int!) { %s(first: $first, skip: $skip, orderBy: %s) { %s } }",
		collection, eventSchema.TimestampField, strings.Join(names, " "),
	)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}
