// Package repo holds the ledger stores: the append-only StageRecord table the
// service loads, appends to, and rewrites after a retraction.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/coatline/boothlag/internal/models"
)

// Ledger drivers accepted by Open.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Ledger is implemented by every store in this package.
type Ledger interface {
	Load(ctx context.Context) ([]models.StageRecord, error)
	Append(ctx context.Context, records []models.StageRecord) error
	Replace(ctx context.Context, records []models.StageRecord) error
	Close() error
}

// Open returns the ledger selected by driver.
func Open(driver, path string) (Ledger, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverCSV, "":
		return NewCSVLedger(path)
	case DriverSQLite:
		return NewSQLiteLedger(path)
	case DriverMemory:
		return NewMemoryLedger(), nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", driver)
	}
}
