package database

import "testing"

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "postgres", want: "postgres"},
		{driver: "PostgreSQL", want: "postgres"},
		{driver: "", want: "postgres"},
		{driver: "sqlite3", want: "sqlite3"},
		{driver: "sqlite", want: "sqlite3"},
		{driver: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := DialectFor(tt.driver)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DialectFor(%q) expected error", tt.driver)
				}
				return
			}
			if err != nil {
				t.Fatalf("DialectFor(%q): %v", tt.driver, err)
			}
			if d.DriverName() != tt.want {
				t.Errorf("DriverName() = %v, want %v", d.DriverName(), tt.want)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	query := "UPDATE guests SET checked_in = ?, check_in_time = ? WHERE id = ? AND event_id = ?"

	t.Run("postgres", func(t *testing.T) {
		got := NewPostgresDialect().RewriteQuery(query)
		want := "UPDATE guests SET checked_in = $1, check_in_time = $2 WHERE id = $3 AND event_id = $4"
		if got != want {
			t.Errorf("RewriteQuery() = %v, want %v", got, want)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		if got := NewSQLiteDialect().RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want unchanged", got)
		}
	})
}

func TestMigrationsSubdir(t *testing.T) {
	if got := NewPostgresDialect().MigrationsSubdir(); got != "postgres" {
		t.Errorf("postgres MigrationsSubdir() = %v", got)
	}
	if got := NewSQLiteDialect().MigrationsSubdir(); got != "sqlite" {
		t.Errorf("sqlite MigrationsSubdir() = %v", got)
	}
}
