package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pkgpostgres "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/postgres"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/port"
)

const selectArtifact = `
	SELECT id, checksum, pipeline, mean_auc, std_auc,
		training_rows, positive_rows, created_at
	FROM model_artifacts
`

// ArtifactRepository implements port.ArtifactRepository using PostgreSQL.
type ArtifactRepository struct {
	pool *pgxpool.Pool
}

// NewArtifactRepository creates a new PostgreSQL-backed model registry.
func NewArtifactRepository(pool *pgxpool.Pool) *ArtifactRepository {
	return &ArtifactRepository{pool: pool}
}

// Save inserts the artifact and its fold scores in one transaction.
// Pending domain events are staged in event_outbox within the same
// transaction. Artifacts are immutable, so saving an existing id is an error.
func (r *ArtifactRepository) Save(ctx context.Context, a *model.ModelArtifact) error {
	entries, err := a.OutboxEntries()
	if err != nil {
		return err
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO model_artifacts (
				id, checksum, pipeline, mean_auc, std_auc,
				training_rows, positive_rows, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			a.ID(),
			a.Checksum(),
			a.Pipeline(),
			a.MeanAUC(),
			a.StdAUC(),
			a.TrainingRows(),
			a.PositiveRows(),
			a.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save artifact: %w", err)
		}

		batch := &pgx.Batch{}
		for i, auc := range a.FoldScores() {
			batch.Queue(`INSERT INTO fold_scores (artifact_id, position, auc) VALUES ($1, $2, $3)`, a.ID(), i, auc)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save fold scores: %w", err)
		}

		if len(entries) > 0 {
			return sendOutboxBatch(ctx, tx, entries)
		}
		return nil
	})
}

// FindByID retrieves an artifact by its unique identifier.
func (r *ArtifactRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ModelArtifact, error) {
	return r.find(ctx, selectArtifact+` WHERE id = $1`, id)
}

// FindLatest retrieves the most recently created artifact.
func (r *ArtifactRepository) FindLatest(ctx context.Context) (*model.ModelArtifact, error) {
	return r.find(ctx, selectArtifact+` ORDER BY created_at DESC, id LIMIT 1`)
}

// find reads the artifact row and its fold scores from one snapshot.
func (r *ArtifactRepository) find(ctx context.Context, query string, args ...any) (*model.ModelArtifact, error) {
	return pkgpostgres.ReadSnapshot(ctx, r.pool, func(tx pgx.Tx) (*model.ModelArtifact, error) {
		return scanArtifact(ctx, tx, tx.QueryRow(ctx, query, args...))
	})
}

func scanArtifact(ctx context.Context, q pkgpostgres.Querier, row pgx.Row) (*model.ModelArtifact, error) {
	var (
		id           uuid.UUID
		checksum     string
		pipeline     []byte
		meanAUC      float64
		stdAUC       float64
		trainingRows int
		positiveRows int
		createdAt    time.Time
	)

	err := row.Scan(&id, &checksum, &pipeline, &meanAUC, &stdAUC, &trainingRows, &positiveRows, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to scan artifact: %w", err)
	}

	scores, err := loadFoldScores(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return model.ReconstructModelArtifact(
		id, checksum, pipeline, scores,
		meanAUC, stdAUC, trainingRows, positiveRows,
		createdAt.UTC(),
	), nil
}

func loadFoldScores(ctx context.Context, q pkgpostgres.Querier, artifactID uuid.UUID) ([]float64, error) {
	rows, err := q.Query(ctx,
		`SELECT auc FROM fold_scores WHERE artifact_id = $1 ORDER BY position`,
		artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fold scores: %w", err)
	}

	scores, err := pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan fold scores: %w", err)
	}
	return scores, nil
}
