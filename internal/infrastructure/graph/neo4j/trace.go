package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ekomarov/drafter/internal/core/domain"
)

// TraceGraph records which reference assets fed which generated section,
// so a reviewer can trace any paragraph back to its sources.
type TraceGraph struct {
	driver   neo4j.DriverWithContext
	database string
}

func New(uri, user, password, database string) (*TraceGraph, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = 10
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("init neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	return &TraceGraph{driver: driver, database: database}, nil
}

func (g *TraceGraph) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

func (g *TraceGraph) RecordGeneration(ctx context.Context, node domain.OutlineNode, assetIDs []string) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (o:Outline {id: $outline_id})
MERGE (s:Section {id: $node_id})
SET s.title = $title, s.order_no = $order_no, s.generated_at = $generated_at
MERGE (o)-[:HAS_SECTION]->(s)
`, map[string]any{
			"outline_id":   node.OutlineID,
			"node_id":      node.ID,
			"title":        node.Title,
			"order_no":     node.OrderNo,
			"generated_at": now,
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		for _, assetID := range assetIDs {
			res, err := tx.Run(ctx, `
MATCH (s:Section {id: $node_id})
MERGE (a:Asset {id: $asset_id})
MERGE (s)-[e:GENERATED_FROM]->(a)
SET e.recorded_at = $recorded_at
`, map[string]any{
				"node_id":     node.ID,
				"asset_id":    assetID,
				"recorded_at": now,
			})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("record generation trace: %w", err)
	}
	return nil
}
