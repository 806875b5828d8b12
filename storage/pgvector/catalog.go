// Package pgvector implements storage.CatalogRepository on PostgreSQL with the
// pgvector extension. Similarity ordering uses the cosine distance operator.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/storage"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "catalog_passages"

// Config configures the PostgreSQL catalog store.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string
	// Table holds the passages. Default: catalog_passages
	Table string
	// Dimension is the embedding size; the column is created as vector(Dimension).
	Dimension int
	// EnsureIndex creates an ivfflat cosine index on the embedding column.
	EnsureIndex bool
}

// CatalogRepository implements storage.CatalogRepository for PostgreSQL.
type CatalogRepository struct {
	pool       *pgxpool.Pool
	table      string
	tableIdent string
	dimension  int
	logger     *slog.Logger
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewRepository connects to PostgreSQL, creates the schema if needed and
// returns a catalog repository.
func NewRepository(ctx context.Context, cfg Config) (storage.CatalogRepository, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgvector: failed to connect to postgres: %w", err)
	}

	repo := newCatalogRepository(pool, cfg)
	if err := repo.ensureSchema(ctx, cfg.EnsureIndex); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func newCatalogRepository(pool *pgxpool.Pool, cfg Config) *CatalogRepository {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	return &CatalogRepository{
		pool:       pool,
		table:      table,
		tableIdent: pgx.Identifier{table}.Sanitize(),
		dimension:  cfg.Dimension,
		logger:     slog.Default().With("component", "pgvector", "table", table),
	}
}

func (c Config) validate() error {
	if c.DSN == "" {
		return fmt.Errorf("%w: pgvector: DSN is required", core.ErrConfiguration)
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: pgvector: Dimension must be positive", core.ErrConfiguration)
	}
	return nil
}

func (r *CatalogRepository) ensureSchema(ctx context.Context, ensureIndex bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("pgvector: acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("pgvector: enable extension: %w", err)
	}
	if _, err = conn.Exec(ctx, r.createTableSQL()); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}
	sourceIndex := pgx.Identifier{r.table + "_source_idx"}.Sanitize()
	if _, err = conn.Exec(ctx, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (source)", sourceIndex, r.tableIdent)); err != nil {
		return fmt.Errorf("pgvector: create source index: %w", err)
	}
	if ensureIndex {
		embeddingIndex := pgx.Identifier{r.table + "_embedding_idx"}.Sanitize()
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_cosine_ops)",
			embeddingIndex, r.tableIdent)
		if _, err = conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgvector: create embedding index: %w", err)
		}
	}
	r.logger.Debug("schema ready", "dimension", r.dimension)
	return nil
}

func (r *CatalogRepository) createTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT PRIMARY KEY,
		content TEXT NOT NULL,
		source TEXT NOT NULL,
		page INTEGER NOT NULL,
		embedding vector(%d) NOT NULL
	)`, r.tableIdent, r.dimension)
}

func (r *CatalogRepository) upsertSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (id, content, source, page, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
    content = excluded.content,
    source = excluded.source,
    page = excluded.page,
    embedding = excluded.embedding`, r.tableIdent)
}

func (r *CatalogRepository) searchSQL() string {
	return fmt.Sprintf(`SELECT id, content, source, page, embedding::real[], 1 - (embedding <=> $1) AS score
FROM %s ORDER BY embedding <=> $1 ASC LIMIT $2`, r.tableIdent)
}

// AddPassages upserts passages in a single transaction.
func (r *CatalogRepository) AddPassages(ctx context.Context, passages ...*core.Passage) (_ []*core.Passage, err error) {
	for _, passage := range passages {
		if err := core.ValidatePassage(passage); err != nil {
			return nil, err
		}
		if len(passage.Vector) != r.dimension {
			return nil, fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch, len(passage.Vector), r.dimension)
		}
	}
	if len(passages) == 0 {
		return passages, nil
	}

	tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if txErr != nil {
		return nil, fmt.Errorf("pgvector: begin tx: %w", txErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("pgvector: rollback failed: %w; original error: %v", rbErr, err)
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("pgvector: commit: %w", commitErr)
		}
	}()

	stmt := r.upsertSQL()
	for _, passage := range passages {
		if passage.Id == 0 {
			passage.Id = core.PassageID(passage.Source, passage.Page, passage.Content)
		}
		if _, execErr := tx.Exec(ctx, stmt,
			int64(passage.Id),
			passage.Content,
			passage.Source,
			int(passage.Page),
			pgvector.NewVector(passage.Vector),
		); execErr != nil {
			return nil, fmt.Errorf("pgvector: upsert %d: %w", passage.Id, execErr)
		}
	}
	return passages, nil
}

// GetPassage retrieves a single passage by ID.
func (r *CatalogRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	stmt := fmt.Sprintf("SELECT content, source, page, embedding::real[] FROM %s WHERE id = $1", r.tableIdent)

	passage := &core.Passage{Id: id}
	var page int
	err := r.pool.QueryRow(ctx, stmt, int64(id)).Scan(&passage.Content, &passage.Source, &page, &passage.Vector)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pgvector: get %d: %w", id, err)
	}
	passage.Page = core.Page(page)
	return passage, nil
}

// DeleteSource removes every passage whose source equals source.
func (r *CatalogRepository) DeleteSource(ctx context.Context, source string) (int, error) {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE source = $1", r.tableIdent), source)
	if err != nil {
		return 0, fmt.Errorf("pgvector: delete source: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of stored passages.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", r.tableIdent)).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return int(count), nil
}

// FindSimilar returns the limit passages nearest to vector by cosine distance.
func (r *CatalogRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredPassage, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	if len(vector) != r.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch, len(vector), r.dimension)
	}

	rows, err := r.pool.Query(ctx, r.searchSQL(), pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	results := make([]*core.ScoredPassage, 0, limit)
	for rows.Next() {
		var (
			id    int64
			page  int
			score float64
		)
		passage := &core.Passage{}
		if err := rows.Scan(&id, &passage.Content, &passage.Source, &page, &passage.Vector, &score); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		passage.Id = core.ID(id)
		passage.Page = core.Page(page)
		results = append(results, &core.ScoredPassage{Passage: passage, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: search rows: %w", err)
	}
	return results, nil
}

// Close closes the connection pool.
func (r *CatalogRepository) Close() error {
	r.pool.Close()
	return nil
}
