package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/whatif-futures/internal/analytics"
	"github.com/yourusername/whatif-futures/internal/database"
	"github.com/yourusername/whatif-futures/internal/models"
	"github.com/yourusername/whatif-futures/internal/scenario"
)

// PostgresScenarioRepository implements ScenarioRepository for PostgreSQL.
// Parameters, metrics and modified trades are stored as JSONB documents so
// a saved scenario round-trips without schema churn.
type PostgresScenarioRepository struct {
	db *database.DB
}

// NewPostgresScenarioRepository creates a new scenario repository
func NewPostgresScenarioRepository(db *database.DB) ScenarioRepository {
	return &PostgresScenarioRepository{db: db}
}

// Save persists a completed scenario run
func (r *PostgresScenarioRepository) Save(ctx context.Context, portfolioID uuid.UUID, scn *scenario.Scenario) error {
	paramsJSON, err := json.Marshal(scn.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario params: %w", err)
	}
	metricsJSON, err := json.Marshal(scn.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario metrics: %w", err)
	}
	tradesJSON, err := json.Marshal(scn.Trades)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario trades: %w", err)
	}

	query := `
		INSERT INTO scenarios (id, portfolio_id, name, is_baseline, params, metrics, trades, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			params = EXCLUDED.params,
			metrics = EXCLUDED.metrics,
			trades = EXCLUDED.trades
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		scn.ID, portfolioID, scn.Name, scn.IsBaseline, paramsJSON, metricsJSON, tradesJSON, scn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}

	return nil
}

// GetByID retrieves a persisted scenario by ID
func (r *PostgresScenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*scenario.Scenario, error) {
	query := `
		SELECT id, name, is_baseline, params, metrics, trades, created_at
		FROM scenarios WHERE id = $1
	`

	scn, err := scanScenario(r.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}

	return scn, nil
}

// ListByPortfolio retrieves all scenarios saved for a portfolio, baseline first
func (r *PostgresScenarioRepository) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]*scenario.Scenario, error) {
	query := `
		SELECT id, name, is_baseline, params, metrics, trades, created_at
		FROM scenarios
		WHERE portfolio_id = $1
		ORDER BY is_baseline DESC, created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []*scenario.Scenario
	for rows.Next() {
		scn, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, scn)
	}

	return scenarios, rows.Err()
}

// Delete removes a persisted scenario
func (r *PostgresScenarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanScenario(row pgx.Row) (*scenario.Scenario, error) {
	var (
		scn         scenario.Scenario
		paramsJSON  []byte
		metricsJSON []byte
		tradesJSON  []byte
	)

	err := row.Scan(&scn.ID, &scn.Name, &scn.IsBaseline, &paramsJSON, &metricsJSON, &tradesJSON, &scn.CreatedAt)
	if err != nil {
		return nil, err
	}

	var params scenario.Parameters
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario params: %w", err)
	}
	scn.Params = params

	var metrics analytics.Metrics
	if err := json.Unmarshal(metricsJSON, &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario metrics: %w", err)
	}
	scn.Metrics = metrics

	var trades []*models.Trade
	if err := json.Unmarshal(tradesJSON, &trades); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario trades: %w", err)
	}
	scn.Trades = trades

	return &scn, nil
}
