// Package repositories provides the neo4j implementation of the citation
// graph port.
package repositories

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/patent-radar/internal/domain/citation"
	driver "github.com/turtacn/patent-radar/internal/infrastructure/database/neo4j"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// CitationRepository stores patents as (:Patent {number}) nodes and citations
// as (citing)-[:CITES]->(cited) relationships.
type CitationRepository struct {
	driver *driver.Driver
	logger logging.Logger
}

// NewCitationRepository constructs a ready-to-use CitationRepository.
func NewCitationRepository(d *driver.Driver, logger logging.Logger) *CitationRepository {
	return &CitationRepository{driver: d, logger: logger.Named("citation_repo")}
}

var _ citation.Repository = (*CitationRepository)(nil)

// EnsureNode creates the patent node if it does not exist.
func (r *CitationRepository) EnsureNode(ctx context.Context, patentNumber string) error {
	_, err := r.driver.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `
			MERGE (p:Patent {number: $number})
			ON CREATE SET p.created_at = datetime()`,
			map[string]interface{}{"number": patentNumber})
		return nil, err
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to ensure patent node")
	}
	return nil
}

// BatchEnsureNodes creates all missing patent nodes in one round trip.
func (r *CitationRepository) BatchEnsureNodes(ctx context.Context, patentNumbers []string) error {
	if len(patentNumbers) == 0 {
		return nil
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `
			UNWIND $numbers AS number
			MERGE (p:Patent {number: number})
			ON CREATE SET p.created_at = datetime()`,
			map[string]interface{}{"numbers": patentNumbers})
		return nil, err
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to ensure patent nodes")
	}
	return nil
}

// CreateCitation records a citing -> cited edge; duplicates are merged.
func (r *CitationRepository) CreateCitation(ctx context.Context, citingNumber, citedNumber string) error {
	_, err := r.driver.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `
			MATCH (a:Patent {number: $citing}), (b:Patent {number: $cited})
			MERGE (a)-[r:CITES]->(b)
			ON CREATE SET r.created_at = datetime()`,
			map[string]interface{}{"citing": citingNumber, "cited": citedNumber})
		return nil, err
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to create citation")
	}
	return nil
}

// BatchCreateCitations records edges in one round trip.
func (r *CitationRepository) BatchCreateCitations(ctx context.Context, citations []citation.Citation) error {
	if len(citations) == 0 {
		return nil
	}
	batch := make([]map[string]interface{}, len(citations))
	for i, c := range citations {
		batch[i] = map[string]interface{}{"citing": c.CitingNumber, "cited": c.CitedNumber}
	}
	_, err := r.driver.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `
			UNWIND $batch AS row
			MATCH (a:Patent {number: row.citing}), (b:Patent {number: row.cited})
			MERGE (a)-[r:CITES]->(b)
			ON CREATE SET r.created_at = datetime()`,
			map[string]interface{}{"batch": batch})
		return nil, err
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to create citations")
	}
	return nil
}

// Cited returns up to limit numbers the given patent cites.
func (r *CitationRepository) Cited(ctx context.Context, patentNumber string, limit int) ([]string, error) {
	return r.neighborQuery(ctx, `
		MATCH (:Patent {number: $number})-[:CITES]->(cited:Patent)
		RETURN cited.number AS number
		ORDER BY number ASC
		LIMIT $limit`, patentNumber, limit)
}

// CitedBy returns up to limit numbers that cite the given patent.
func (r *CitationRepository) CitedBy(ctx context.Context, patentNumber string, limit int) ([]string, error) {
	return r.neighborQuery(ctx, `
		MATCH (citing:Patent)-[:CITES]->(:Patent {number: $number})
		RETURN citing.number AS number
		ORDER BY number ASC
		LIMIT $limit`, patentNumber, limit)
}

func (r *CitationRepository) neighborQuery(ctx context.Context, cypher, patentNumber string, limit int) ([]string, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher,
			map[string]interface{}{"number": patentNumber, "limit": limit})
		if err != nil {
			return nil, err
		}
		var numbers []string
		for result.Next(ctx) {
			if number, ok := result.Record().Get("number"); ok {
				if s, ok := number.(string); ok {
					numbers = append(numbers, s)
				}
			}
		}
		return numbers, result.Err()
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "citation neighbor query failed")
	}
	numbers, _ := res.([]string)
	return numbers, nil
}

// Counts returns how many patents this one cites and how many cite it.
func (r *CitationRepository) Counts(ctx context.Context, patentNumber string) (int64, int64, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (p:Patent {number: $number})
			RETURN COUNT { (p)-[:CITES]->(:Patent) } AS cited,
			       COUNT { (:Patent)-[:CITES]->(p) } AS cited_by`,
			map[string]interface{}{"number": patentNumber})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		counts := [2]int64{}
		if v, ok := record.Get("cited"); ok {
			counts[0], _ = v.(int64)
		}
		if v, ok := record.Get("cited_by"); ok {
			counts[1], _ = v.(int64)
		}
		return counts, nil
	})
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "citation count query failed")
	}
	counts, _ := res.([2]int64)
	return counts[0], counts[1], nil
}

// MostCited returns the patents with the highest cited-by counts.
func (r *CitationRepository) MostCited(ctx context.Context, limit int) ([]citation.RankedPatent, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (p:Patent)<-[:CITES]-(citing:Patent)
			WITH p, count(citing) AS cited_by
			RETURN p.number AS number, cited_by
			ORDER BY cited_by DESC, number ASC
			LIMIT $limit`,
			map[string]interface{}{"limit": limit})
		if err != nil {
			return nil, err
		}
		var ranked []citation.RankedPatent
		for result.Next(ctx) {
			record := result.Record()
			var rp citation.RankedPatent
			if v, ok := record.Get("number"); ok {
				rp.PatentNumber, _ = v.(string)
			}
			if v, ok := record.Get("cited_by"); ok {
				rp.CitedByCount, _ = v.(int64)
			}
			ranked = append(ranked, rp)
		}
		return ranked, result.Err()
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "most-cited query failed")
	}
	ranked, _ := res.([]citation.RankedPatent)
	return ranked, nil
}
