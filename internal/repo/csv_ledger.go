package repo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/coatline/boothlag/internal/models"
)

// CSVLedger stores the ledger as a flat CSV file with a Columns header.
type CSVLedger struct {
	path string
}

// NewCSVLedger creates the parent directory and returns a ledger at path.
// The file itself is created on first append.
func NewCSVLedger(path string) (*CSVLedger, error) {
	if path == "" {
		return nil, errors.New("csv ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &CSVLedger{path: path}, nil
}

// Load reads every record in file order. A missing file is an empty ledger.
func (l *CSVLedger) Load(ctx context.Context) ([]models.StageRecord, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(Columns)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}
	if !slices.Equal(header, Columns) {
		return nil, fmt.Errorf("unexpected ledger header %v", header)
	}

	var records []models.StageRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		rec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Append adds records to the end of the file, writing the header first when
// the file is new or empty.
func (l *CSVLedger) Append(ctx context.Context, records []models.StageRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat ledger: %w", err)
	}
	if err := writeRows(f, records, info.Size() == 0); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	return f.Close()
}

// Replace rewrites the whole file through a temp file and rename.
func (l *CSVLedger) Replace(ctx context.Context, records []models.StageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create ledger temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, records, true); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close ledger temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// Close is a no-op; the file is opened per call.
func (l *CSVLedger) Close() error { return nil }

// Path returns the backing file path.
func (l *CSVLedger) Path() string { return l.path }

func writeRows(w io.Writer, records []models.StageRecord, header bool) error {
	writer := csv.NewWriter(w)
	if header {
		if err := writer.Write(Columns); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := writer.Write(encodeRow(rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
