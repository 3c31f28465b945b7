package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"papertrade/src/models"
)

type TransactionRepository interface {
	GetByPortfolioID(ctx context.Context, portfolioID int64) ([]models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) GetByPortfolioID(ctx context.Context, portfolioID int64) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, portfolio_id, ticker, side, quantity, price_per_unit, executed_at
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY executed_at DESC, id DESC`,
		portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Ticker, &t.Side, &t.Quantity, &t.PricePerUnit, &t.ExecutedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	query := `
		INSERT INTO transactions (portfolio_id, ticker, side, quantity, price_per_unit, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
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
			t.PortfolioID, t.Ticker, t.Side, t.Quantity, t.PricePerUnit, t.ExecutedAt,
		).Scan(&t.ID)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	// Use the provided transaction
	return tx.QueryRow(ctx, query,
		t.PortfolioID, t.Ticker, t.Side, t.Quantity, t.PricePerUnit, t.ExecutedAt,
	).Scan(&t.ID)
}
