package database

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, nil, 1, false},
		{"retries stream errors", 2, errors.New("hrana: stream not found"), 3, false},
		{"gives up after max retries", 5, errors.New("stream not found"), 3, true},
		{"does not retry other errors", 5, errors.New("syntax error"), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := WithRetry(ctx, 2, func() (int, error) {
				calls++
				if calls <= tt.failures {
					return 0, tt.err
				}
				return 42, nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != 42 {
				t.Errorf("result = %d, want 42", got)
			}
		})
	}
}

func TestNewSQLiteInMemory(t *testing.T) {
	c, err := New(Options{Driver: DriverSQLite, Ping: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	var fk int
	if err := c.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New(Options{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := map[string]string{
		"":                  ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		"file:punch.db":     "punch.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		"punch.db?mode=rwc": "punch.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}
	for in, want := range tests {
		if got := sqliteDSN(in); got != want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}
