package citation

import "context"

// Repository is the graph persistence port for citations, implemented by the
// neo4j adapter.
type Repository interface {
	// EnsureNode creates the patent node if it does not exist.
	EnsureNode(ctx context.Context, patentNumber string) error

	// BatchEnsureNodes creates all missing patent nodes in one round trip.
	BatchEnsureNodes(ctx context.Context, patentNumbers []string) error

	// CreateCitation records a citing -> cited edge; duplicates are merged.
	CreateCitation(ctx context.Context, citingNumber, citedNumber string) error

	// BatchCreateCitations records edges in one round trip.
	BatchCreateCitations(ctx context.Context, citations []Citation) error

	// Cited returns up to limit numbers the given patent cites.
	Cited(ctx context.Context, patentNumber string, limit int) ([]string, error)

	// CitedBy returns up to limit numbers that cite the given patent.
	CitedBy(ctx context.Context, patentNumber string, limit int) ([]string, error)

	// Counts returns how many patents this one cites and how many cite it.
	Counts(ctx context.Context, patentNumber string) (cited, citedBy int64, err error)

	// MostCited returns the patents with the highest cited-by counts.
	MostCited(ctx context.Context, limit int) ([]RankedPatent, error)
}
