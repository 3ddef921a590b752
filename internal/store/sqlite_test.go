package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stock-backtester/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBars(id string, n int) []models.Bar {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Instrument: id,
			Date:       base.AddDate(0, 0, i),
			Open:       100 + float64(i),
			High:       101 + float64(i),
			Low:        99 + float64(i),
			Close:      100.5 + float64(i),
			Volume:     int64(1000 + i),
		}
	}
	return bars
}

func TestSaveAndGetBars(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	bars := testBars("600000.SH", 5)
	if err := s.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	got, err := s.GetBars(ctx, "600000.SH", bars[0].Date, bars[4].Date)
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d bars, want 5", len(got))
	}
	for i, b := range got {
		want := bars[i]
		if b.Close != want.Close || b.Volume != want.Volume || !b.Date.Equal(want.Date) {
			t.Errorf("bar %d = %+v, want %+v", i, b, want)
		}
		if i > 0 && !b.Date.After(got[i-1].Date) {
			t.Errorf("bars not ordered at %d", i)
		}
	}
}

func TestSaveBarsUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	bars := testBars("600000.SH", 3)
	if err := s.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	bars[1].Close = 999
	if err := s.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars again: %v", err)
	}

	got, err := s.GetBars(ctx, "600000.SH", bars[0].Date, bars[2].Date)
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d bars after upsert, want 3", len(got))
	}
	if got[1].Close != 999 {
		t.Errorf("upserted close = %v, want 999", got[1].Close)
	}
}

func TestGetBarsRangeFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	bars := testBars("600000.SH", 10)
	if err := s.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	got, err := s.GetBars(ctx, "600000.SH", bars[2].Date, bars[6].Date)
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d bars in range, want 5", len(got))
	}
}

func TestGetLastDate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.GetLastDate(ctx); err == nil {
		t.Error("GetLastDate on an empty store succeeded")
	}

	bars := testBars("600000.SH", 4)
	if err := s.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}
	last, err := s.GetLastDate(ctx)
	if err != nil {
		t.Fatalf("GetLastDate: %v", err)
	}
	if !last.Equal(bars[3].Date) {
		t.Errorf("last date = %v, want %v", last, bars[3].Date)
	}
}

func TestListInstruments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.SaveBars(ctx, testBars("600001.SH", 1))
	s.SaveBars(ctx, testBars("000001.SZ", 1))

	got, err := s.ListInstruments(ctx)
	if err != nil {
		t.Fatalf("ListInstruments: %v", err)
	}
	if len(got) != 2 || got[0] != "000001.SZ" || got[1] != "600001.SH" {
		t.Errorf("instruments = %v, want sorted pair", got)
	}
}

func TestPoolAddRemove(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"600000.SH", "000001.SZ", "600000.SH"} { // duplicate ignored
		if err := s.AddToPool(ctx, id); err != nil {
			t.Fatalf("AddToPool(%s): %v", id, err)
		}
	}

	pool, err := s.GetPool(ctx)
	if err != nil {
		t.Fatalf("GetPool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool size = %d, want 2", len(pool))
	}

	if err := s.RemoveFromPool(ctx, "600000.SH"); err != nil {
		t.Fatalf("RemoveFromPool: %v", err)
	}
	pool, _ = s.GetPool(ctx)
	if len(pool) != 1 || pool[0] != "000001.SZ" {
		t.Errorf("pool after remove = %v, want [000001.SZ]", pool)
	}
}

func TestLoadSeriesFillsGapsWithEmptySlices(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	bars := testBars("600000.SH", 3)
	if err := s.SaveBars(ctx, bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	series, err := LoadSeries(ctx, s, []string{"600000.SH", "999999.SH"}, bars[0].Date, bars[2].Date)
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(series["600000.SH"]) != 3 {
		t.Errorf("loaded %d bars, want 3", len(series["600000.SH"]))
	}
	if got, ok := series["999999.SH"]; !ok || len(got) != 0 {
		t.Errorf("missing instrument series = %v, want present and empty", got)
	}
}
