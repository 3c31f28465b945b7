package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"papertrade/src/models"
)

type HoldingRepository interface {
	GetByPortfolioID(ctx context.Context, portfolioID int64) ([]models.Holding, error)
	Upsert(ctx context.Context, h *models.Holding, tx pgx.Tx) error
	Delete(ctx context.Context, id int64, tx pgx.Tx) error
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

func (r *holdingRepo) GetByPortfolioID(ctx context.Context, portfolioID int64) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, portfolio_id, ticker, quantity, average_cost
		FROM holdings
		WHERE portfolio_id = $1
		ORDER BY ticker`,
		portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.PortfolioID, &h.Ticker, &h.Quantity, &h.AverageCost); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (r *holdingRepo) Upsert(ctx context.Context, h *models.Holding, tx pgx.Tx) error {
	query := `
		INSERT INTO holdings (portfolio_id, ticker, quantity, average_cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (portfolio_id, ticker) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			average_cost = EXCLUDED.average_cost
		RETURNING id`

	var err error
	if tx == nil {
		// If no transaction is provided, create a new one
		tx, err = r.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback(ctx)
			}
		}()

		err = tx.QueryRow(ctx, query,
			h.PortfolioID, h.Ticker, h.Quantity, h.AverageCost,
		).Scan(&h.ID)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	// Use the provided transaction
	return tx.QueryRow(ctx, query,
		h.PortfolioID, h.Ticker, h.Quantity, h.AverageCost,
	).Scan(&h.ID)
}

func (r *holdingRepo) Delete(ctx context.Context, id int64, tx pgx.Tx) error {
	query := `DELETE FROM holdings WHERE id = $1`

	if tx == nil {
		_, err := r.db.Exec(ctx, query, id)
		return err
	}
	_, err := tx.Exec(ctx, query, id)
	return err
}
