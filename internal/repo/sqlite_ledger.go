package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/coatline/boothlag/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS stage_records (
	seq                 INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id            INTEGER NOT NULL,
	slot                TEXT    NOT NULL,
	stage               TEXT    NOT NULL,
	date                TEXT,
	operator            TEXT,
	time_in_booth       REAL,
	time_start          REAL,
	time_end            REAL,
	processing_duration REAL,
	lag_duration        REAL
);
CREATE INDEX IF NOT EXISTS idx_stage_records_entry ON stage_records (batch_id, slot);
`

const insertStageRecord = `INSERT INTO stage_records
	(batch_id, slot, stage, date, operator, time_in_booth, time_start, time_end, processing_duration, lag_duration)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteLedger stores the ledger in a SQLite table ordered by insertion sequence.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (creating if needed) the database at path and applies the schema.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, errors.New("sqlite ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: the ledger has a single writer and this keeps
	// ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Load reads every record in insertion order.
func (l *SQLiteLedger) Load(ctx context.Context) ([]models.StageRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT batch_id, slot, stage, date, operator, time_in_booth, time_start, time_end FROM stage_records ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var records []models.StageRecord
	for rows.Next() {
		var (
			rec                 models.StageRecord
			stage               string
			date, operator      sql.NullString
			inBooth, start, end sql.NullFloat64
		)
		if err := rows.Scan(&rec.BatchID, &rec.Slot, &stage, &date, &operator, &inBooth, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		rec.Stage = models.Stage(stage)
		if date.Valid {
			d, err := models.ParseDate(date.String)
			if err != nil {
				return nil, err
			}
			rec.Date = &d
		}
		if operator.Valid {
			op := operator.String
			rec.Operator = &op
		}
		rec.TimeInBooth = fromNullFloat(inBooth)
		rec.TimeStart = fromNullFloat(start)
		rec.TimeEnd = fromNullFloat(end)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger: %w", err)
	}
	return records, nil
}

// Append inserts records in one transaction.
func (l *SQLiteLedger) Append(ctx context.Context, records []models.StageRecord) error {
	if len(records) == 0 {
		return nil
	}
	return l.withTx(ctx, func(tx *sql.Tx) error {
		return insertRecords(ctx, tx, records)
	})
}

// Replace deletes every row and inserts records in one transaction.
func (l *SQLiteLedger) Replace(ctx context.Context, records []models.StageRecord) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM stage_records"); err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}
		return insertRecords(ctx, tx, records)
	})
}

// Close closes the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, records []models.StageRecord) error {
	stmt, err := tx.PrepareContext(ctx, insertStageRecord)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var date, operator sql.NullString
		if rec.Date != nil {
			date = sql.NullString{String: rec.Date.String(), Valid: true}
		}
		if rec.Operator != nil {
			operator = sql.NullString{String: *rec.Operator, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			rec.BatchID, rec.Slot, string(rec.Stage), date, operator,
			toNullFloat(rec.TimeInBooth), toNullFloat(rec.TimeStart), toNullFloat(rec.TimeEnd),
			toNullFloat(rec.ProcessingDuration()), toNullFloat(rec.LagDuration()),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	return nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
