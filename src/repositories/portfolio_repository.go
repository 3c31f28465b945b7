package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"papertrade/src/engine"
	"papertrade/src/models"
)

type PortfolioRepository interface {
	// GetByUserID loads the portfolio snapshot including its holdings.
	GetByUserID(ctx context.Context, userID int64) (models.Portfolio, error)

	// ApplyTrade persists a full trade outcome (cash, holding, transaction
	// record) as one unit. Returns ErrConcurrentModification when the
	// portfolio version moved since the snapshot was read; nothing is
	// applied in that case.
	ApplyTrade(ctx context.Context, out *engine.Outcome) error

	// ListHeldTickers returns every ticker currently held in any portfolio.
	ListHeldTickers(ctx context.Context) ([]string, error)
}

type portfolioRepo struct {
	db           *pgxpool.Pool
	holdings     HoldingRepository
	transactions TransactionRepository
}

func NewPortfolioRepository(db *pgxpool.Pool) PortfolioRepository {
	return &portfolioRepo{
		db:           db,
		holdings:     NewHoldingRepository(db),
		transactions: NewTransactionRepository(db),
	}
}

func (r *portfolioRepo) GetByUserID(ctx context.Context, userID int64) (models.Portfolio, error) {
	var p models.Portfolio
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, cash_balance, version, created_at, updated_at
		FROM portfolios
		WHERE user_id = $1`,
		userID,
	).Scan(&p.ID, &p.UserID, &p.CashBalance, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Portfolio{}, ErrNotFound
		}
		return models.Portfolio{}, err
	}

	p.Holdings, err = r.holdings.GetByPortfolioID(ctx, p.ID)
	if err != nil {
		return models.Portfolio{}, err
	}
	return p, nil
}

func (r *portfolioRepo) ApplyTrade(ctx context.Context, out *engine.Outcome) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// The version guard serializes concurrent trades against the same
	// portfolio: a commit computed from a stale snapshot matches zero rows.
	tag, err := tx.Exec(ctx,
		`UPDATE portfolios
		SET cash_balance = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3`,
		out.NewCashBalance, out.PortfolioID, out.FromVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = ErrConcurrentModification
		return err
	}

	if out.DeleteHolding {
		err = r.holdings.Delete(ctx, out.Holding.ID, tx)
	} else {
		err = r.holdings.Upsert(ctx, &out.Holding, tx)
	}
	if err != nil {
		return err
	}

	err = r.transactions.Create(ctx, &out.Transaction, tx)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *portfolioRepo) ListHeldTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT ticker FROM holdings ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
