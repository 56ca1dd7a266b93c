package graphdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/hexmerlin/kgseed/internal/util"
	"github.com/hexmerlin/kgseed/pkg/config"
)

// ErrUnreachable is returned when the graph store cannot be reached or a
// query against it fails.
var ErrUnreachable = errors.New("graph store unreachable")

const (
	connectTimeout  = 10 * time.Second
	connectMaxTries = 3
)

// Client wraps the Neo4j driver with the small set of operations the reseed
// pipeline needs. Sessions are scoped per operation; nothing is held open
// between calls.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// New connects to the graph store described by cfg and verifies
// connectivity before returning.
func New(ctx context.Context, cfg config.Neo4jConfig) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.SocketConnectTimeout = connectTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	err = util.RetryErrWithContext(ctx, connectMaxTries, func(ctx context.Context) error {
		vCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return driver.VerifyConnectivity(vCtx)
	})
	if err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return &Client{
		driver:   driver,
		database: cfg.Database,
	}, nil
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.database,
	})
}

// NodeCount returns the total number of nodes in the graph.
func (c *Client) NodeCount(ctx context.Context) (int64, error) {
	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	count, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n) RETURN count(n) AS count`, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record.Values[0], nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting nodes: %v", ErrUnreachable, err)
	}
	return count.(int64), nil
}

// DeleteAll removes every node and relationship, then confirms the graph is
// empty. Returns the number of nodes that existed before the wipe.
func (c *Client) DeleteAll(ctx context.Context) (int64, error) {
	before, err := c.NodeCount(ctx)
	if err != nil {
		return 0, err
	}

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	if err != nil {
		return before, fmt.Errorf("%w: deleting all nodes: %v", ErrUnreachable, err)
	}

	after, err := c.NodeCount(ctx)
	if err != nil {
		return before, err
	}
	if after != 0 {
		return before, fmt.Errorf("%w: %d nodes remain after delete", ErrUnreachable, after)
	}
	return before, nil
}

// LabelCounts returns node counts grouped by the node's full label set,
// rendered as a ":"-joined sorted string.
func (c *Client) LabelCounts(ctx context.Context) (map[string]int64, error) {
	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	counts, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n) RETURN labels(n) AS labels, count(*) AS count`, nil)
		if err != nil {
			return nil, err
		}
		out := make(map[string]int64)
		for res.Next(ctx) {
			record := res.Record()
			rawLabels, _ := record.Get("labels")
			rawCount, _ := record.Get("count")
			labels := make([]string, 0)
			if list, ok := rawLabels.([]any); ok {
				for _, l := range list {
					if s, ok := l.(string); ok {
						labels = append(labels, s)
					}
				}
			}
			sort.Strings(labels)
			key := strings.Join(labels, ":")
			if key == "" {
				key = "(no label)"
			}
			if n, ok := rawCount.(int64); ok {
				out[key] += n
			}
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing label sets: %v", ErrUnreachable, err)
	}
	return counts.(map[string]int64), nil
}

// RelationshipTypeCounts returns relationship counts grouped by type.
func (c *Client) RelationshipTypeCounts(ctx context.Context) (map[string]int64, error) {
	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	counts, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH ()-[r]->() RETURN type(r) AS type, count(*) AS count`, nil)
		if err != nil {
			return nil, err
		}
		out := make(map[string]int64)
		for res.Next(ctx) {
			record := res.Record()
			rawType, _ := record.Get("type")
			rawCount, _ := record.Get("count")
			relType, _ := rawType.(string)
			if n, ok := rawCount.(int64); ok {
				out[relType] += n
			}
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: counting relationship types: %v", ErrUnreachable, err)
	}
	return counts.(map[string]int64), nil
}

// CreateDiagnosticNode writes a single labeled throwaway node. The verifier
// uses it to tell an engine that silently failed to populate the graph from
// a process that cannot write to the graph at all.
func (c *Client) CreateDiagnosticNode(ctx context.Context, id string) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `CREATE (n:Diagnostic {id: $id, created_at: $created_at})`, map[string]any{
			"id":         id,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("%w: creating diagnostic node: %v", ErrUnreachable, err)
	}
	return nil
}

// DeleteDiagnosticNode removes a node previously written by
// CreateDiagnosticNode.
func (c *Client) DeleteDiagnosticNode(ctx context.Context, id string) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n:Diagnostic {id: $id}) DETACH DELETE n`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("%w: deleting diagnostic node: %v", ErrUnreachable, err)
	}
	return nil
}

func consume(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}
