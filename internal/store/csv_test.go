package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestReadBarsCSV(t *testing.T) {
	path := writeTemp(t, "bars.csv", `ts_code,trade_date,open,high,low,close,vol
600000.SH,20230102,10.5,10.9,10.3,10.8,123456
600000.SH,20230103,10.8,11.2,10.7,11.0,98765
`)

	bars, err := ReadBarsCSV(path)
	if err != nil {
		t.Fatalf("ReadBarsCSV: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}

	b := bars[0]
	if b.Instrument != "600000.SH" {
		t.Errorf("instrument = %s", b.Instrument)
	}
	if want := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC); !b.Date.Equal(want) {
		t.Errorf("date = %v, want %v", b.Date, want)
	}
	if b.Open != 10.5 || b.Close != 10.8 || b.Volume != 123456 {
		t.Errorf("bar = %+v", b)
	}
}

func TestReadBarsCSVBadDate(t *testing.T) {
	path := writeTemp(t, "bars.csv", `ts_code,trade_date,open,high,low,close,vol
600000.SH,2023-01-02,10.5,10.9,10.3,10.8,123456
`)
	if _, err := ReadBarsCSV(path); err == nil {
		t.Error("ReadBarsCSV accepted a non-compact date")
	}
}

func TestReadPoolCSVDedups(t *testing.T) {
	path := writeTemp(t, "pool.csv", `ts_code,name
600000.SH,Pudong Bank
000001.SZ,Ping An Bank
600000.SH,Pudong Bank
`)

	pool, err := ReadPoolCSV(path)
	if err != nil {
		t.Fatalf("ReadPoolCSV: %v", err)
	}
	if len(pool) != 2 || pool[0] != "600000.SH" || pool[1] != "000001.SZ" {
		t.Errorf("pool = %v, want deduped in file order", pool)
	}
}
