package storage

import (
	"context"
	"database/sql"
)

// Queries holds the SQL used by SQLiteRepository.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Transaction is a row of the transactions table.
type Transaction struct {
	Seq         int64
	ID          string
	Date        string
	Category    string
	AmountMinor int64
	Note        string
	IsIncome    bool
}

const transactionColumns = `seq, id, date, category, amount_minor, note, is_income`

type CreateTransactionParams struct {
	ID          string
	Date        string
	Category    string
	AmountMinor int64
	Note        string
	IsIncome    bool
}

const createTransaction = `INSERT INTO transactions (id, date, category, amount_minor, note, is_income)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

// CreateTransaction returns 0 rows affected when the id already exists.
func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.Date, arg.Category, arg.AmountMinor, arg.Note, arg.IsIncome)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateTransaction = `UPDATE transactions
SET date = ?, category = ?, amount_minor = ?, note = ?, is_income = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date, arg.Category, arg.AmountMinor, arg.Note, arg.IsIncome, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	var t Transaction
	err := q.db.QueryRowContext(ctx, getTransaction, id).Scan(
		&t.Seq, &t.ID, &t.Date, &t.Category, &t.AmountMinor, &t.Note, &t.IsIncome)
	return t, err
}

const listTransactions = `SELECT ` + transactionColumns + ` FROM transactions ORDER BY seq DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.Seq, &t.ID, &t.Date, &t.Category, &t.AmountMinor, &t.Note, &t.IsIncome); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const listCategories = `SELECT DISTINCT TRIM(category) AS c FROM transactions
WHERE TRIM(category) <> '' ORDER BY c`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
