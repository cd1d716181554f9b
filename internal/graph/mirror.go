// Package graph mirrors analyzed sessions into Neo4j for downstream
// relationship modeling. The mirror only consumes finalized output; it is
// never required for interview correctness.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/model"
)

// Mirror pushes session/analysis nodes and relationships into Neo4j.
type Mirror struct {
	driver   neo4j.DriverWithContext
	database string
	log      *zap.SugaredLogger
}

// NewMirror connects to Neo4j. Returns (nil, nil) when no URI is
// configured; callers treat a nil mirror as disabled.
func NewMirror(cfg *config.Config, log *zap.SugaredLogger) (*Mirror, error) {
	if cfg.Neo4jURI == "" {
		return nil, nil
	}

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("graph: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}

	return &Mirror{driver: driver, log: log}, nil
}

// Close releases the driver.
func (m *Mirror) Close(ctx context.Context) error {
	if m == nil || m.driver == nil {
		return nil
	}
	return m.driver.Close(ctx)
}

// SyncAnalyzedSession mirrors one analyzed session: the session node, its
// company, its archetype, and one SCORED edge per dimension.
func (m *Mirror) SyncAnalyzedSession(ctx context.Context, session *model.Session) error {
	if session.Analysis == nil {
		return nil
	}

	sess := m.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: m.database})
	defer sess.Close(ctx)

	analysis := session.Analysis
	analyzedAt := ""
	if session.AnalyzedAt != nil {
		analyzedAt = session.AnalyzedAt.UTC().Format(time.RFC3339)
	}

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MERGE (s:Session {id: $id})
			SET s.participant = $participant,
			    s.role = $role,
			    s.industry = $industry,
			    s.overallScore = $overallScore,
			    s.degraded = $degraded,
			    s.analyzedAt = $analyzedAt,
			    s.syncedAt = datetime()
			MERGE (c:Company {name: $company})
			MERGE (s)-[:FOR_COMPANY]->(c)
			MERGE (a:Archetype {name: $archetype})
			MERGE (s)-[r:CLASSIFIED_AS]->(a)
			SET r.confidence = $archetypeConfidence
		`, map[string]any{
			"id":                  session.ID,
			"participant":         session.Participant.Name,
			"role":                session.Participant.Role,
			"industry":            session.Participant.Industry,
			"company":             session.Participant.Company,
			"overallScore":        analysis.OverallScore,
			"degraded":            analysis.Degraded,
			"analyzedAt":          analyzedAt,
			"archetype":           analysis.Archetype.Name,
			"archetypeConfidence": analysis.Archetype.Confidence,
		})
		if err != nil {
			return nil, err
		}

		for dim, score := range analysis.Dimensions {
			_, err := tx.Run(ctx, `
				MERGE (d:ScoringDimension {name: $dim})
				WITH d
				MATCH (s:Session {id: $id})
				MERGE (s)-[r:SCORED]->(d)
				SET r.score = $score, r.confidence = $confidence
			`, map[string]any{
				"id":         session.ID,
				"dim":        dim,
				"score":      score.Score,
				"confidence": score.Confidence,
			})
			if err != nil {
				return nil, err
			}
		}

		for _, gap := range analysis.Gaps {
			_, err := tx.Run(ctx, `
				MATCH (s:Session {id: $id})
				MERGE (a:ScoringDimension {name: $dimA})
				MERGE (b:ScoringDimension {name: $dimB})
				CREATE (g:GapFinding {delta: $delta, insight: $insight, createdAt: datetime()})
				CREATE (s)-[:HAS_GAP]->(g)
				CREATE (g)-[:BETWEEN]->(a)
				CREATE (g)-[:BETWEEN]->(b)
			`, map[string]any{
				"id":      session.ID,
				"dimA":    gap.DimensionA,
				"dimB":    gap.DimensionB,
				"delta":   gap.Delta,
				"insight": gap.Insight,
			})
			if err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: sync session %s: %w", session.ID, err)
	}

	m.log.Infow("session mirrored to graph", "sessionId", session.ID,
		"dimensions", len(analysis.Dimensions), "gaps", len(analysis.Gaps))
	return nil
}

// RemoveSession deletes the session node and everything hanging off it.
func (m *Mirror) RemoveSession(ctx context.Context, sessionID string) error {
	sess := m.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: m.database})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MATCH (s:Session {id: $id})
			OPTIONAL MATCH (s)-[:HAS_GAP]->(g:GapFinding)
			DETACH DELETE s, g
		`, map[string]any{"id": sessionID})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("graph: remove session %s: %w", sessionID, err)
	}
	return nil
}
