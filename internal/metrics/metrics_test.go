package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register should tolerate duplicates: %v", err)
	}
}

func TestObserveLine(t *testing.T) {
	before := testutil.ToFloat64(linesTotal.WithLabelValues(OutcomeRejected))
	ObserveLine(OutcomeRejected)
	if got := testutil.ToFloat64(linesTotal.WithLabelValues(OutcomeRejected)); got != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, got)
	}
}

func TestObserveAnalysis(t *testing.T) {
	ObserveAnalysis(-time.Second, 12, 3)
	if got := testutil.ToFloat64(ledgerRecords); got != 12 {
		t.Fatalf("ledger gauge = %v", got)
	}
	if got := testutil.ToFloat64(frontiersLearned); got != 3 {
		t.Fatalf("frontier gauge = %v", got)
	}
}
