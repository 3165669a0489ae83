package repository_test

import (
	"strings"
	"testing"

	"github.com/jaekwang-park/todo-items-api/internal/repository"
)

func TestIsSupportedDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   bool
	}{
		{"postgres", true},
		{"pgx", true},
		{"mysql", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if got := repository.IsSupportedDriver(tt.driver); got != tt.want {
				t.Errorf("IsSupportedDriver(%q) = %v, want %v", tt.driver, got, tt.want)
			}
		})
	}
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := repository.NewDB("sqlite3", "file::memory:")
	if err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported database driver") {
		t.Errorf("unexpected error: %v", err)
	}
}
