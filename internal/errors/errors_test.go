package errors

import (
	"strings"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrInsufficientCash, "buy %s qty %d", "600000.SH", 200)
	if !Is(err, ErrInsufficientCash) {
		t.Error("wrapped error lost its sentinel")
	}
	if !strings.Contains(err.Error(), "600000.SH") {
		t.Errorf("wrapped message missing context: %v", err)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) is not nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) is not nil")
	}
}

func TestOrderErrorUnwrap(t *testing.T) {
	err := NewOrderError("ORD-000001", "600000.SH", "BUY", "rejected", ErrOpenOrder)
	if !Is(err, ErrOpenOrder) {
		t.Error("OrderError does not unwrap to its cause")
	}

	var oe *OrderError
	if !As(err, &oe) {
		t.Fatal("As failed to match OrderError")
	}
	if oe.Instrument != "600000.SH" || oe.OrderID != "ORD-000001" {
		t.Errorf("OrderError fields = %+v", oe)
	}
}

func TestDataErrorMessage(t *testing.T) {
	err := NewDataError("600000.SH", "no bars in range", ErrDataGap)
	if !Is(err, ErrDataGap) {
		t.Error("DataError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "600000.SH") {
		t.Errorf("message missing instrument: %v", err)
	}

	bare := NewDataError("600000.SH", "empty series", nil)
	if bare.Error() == "" || strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("bare message malformed: %v", bare)
	}
}
