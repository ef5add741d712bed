package utils

import (
	"path/filepath"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00 zł"},
		{999.5, "999,50 zł"},
		{2050.5, "2 050,50 zł"},
		{1234567.891, "1 234 567,89 zł"},
		{-1500, "-1 500,00 zł"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptionalPrice(t *testing.T) {
	if got := OptionalPrice(nil); got != "-" {
		t.Fatalf("OptionalPrice(nil) = %q", got)
	}
	v := 850.0
	if got := OptionalPrice(&v); got != "850,00 zł" {
		t.Fatalf("OptionalPrice(850) = %q", got)
	}
}

func TestDBLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.sqlite")
	lock, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if err := lock.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("second Unlock: %v", err)
	}
}

func TestDBLockSharedReaders(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.sqlite")
	readers := make([]*DBLock, 2)
	for i := range readers {
		l, err := NewDBLock(dbPath)
		if err != nil {
			t.Fatalf("NewDBLock: %v", err)
		}
		if err := l.RLock(); err != nil {
			t.Fatalf("RLock %d: %v", i, err)
		}
		readers[i] = l
	}
	for i, l := range readers {
		if err := l.Unlock(); err != nil {
			t.Fatalf("Unlock %d: %v", i, err)
		}
	}

	writer, _ := NewDBLock(dbPath)
	if err := writer.Lock(); err != nil {
		t.Fatalf("Lock after readers left: %v", err)
	}
	if err := writer.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestGetAbsDBPath(t *testing.T) {
	got, err := GetAbsDBPath("")
	if err != nil {
		t.Fatalf("GetAbsDBPath: %v", err)
	}
	if filepath.Base(got) != "history.sqlite" || filepath.Base(filepath.Dir(got)) != "quotescope" {
		t.Fatalf("default path = %q", got)
	}
	rel, _ := GetAbsDBPath("data/h.sqlite")
	if !filepath.IsAbs(rel) {
		t.Fatalf("relative path not resolved: %q", rel)
	}
}
