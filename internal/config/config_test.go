package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.List.DefaultPageSize != 25 {
		t.Errorf("DefaultPageSize = %d, want 25", cfg.List.DefaultPageSize)
	}
	if cfg.Worker.FavoritePrunerSchedule != "@hourly" {
		t.Errorf("FavoritePrunerSchedule = %q, want @hourly", cfg.Worker.FavoritePrunerSchedule)
	}
	if cfg.Database.DSN() != cfg.Database.Path {
		t.Errorf("sqlite DSN = %q, want path", cfg.Database.DSN())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_NAME", "lists")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	want := "host=localhost port=5432 user= password= dbname=lists sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}, wantErr: true},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, wantErr: true},
		{name: "bad driver", env: map[string]string{"JWT_SECRET": "0123456789abcdef", "DB_DRIVER": "mysql"}, wantErr: true},
		{name: "bad role", env: map[string]string{"JWT_SECRET": "0123456789abcdef", "DEFAULT_ROLE": "root"}, wantErr: true},
		{name: "max below default", env: map[string]string{"JWT_SECRET": "0123456789abcdef", "LIST_MAX_PAGE_SIZE": "10"}, wantErr: true},
		{name: "valid", env: map[string]string{"JWT_SECRET": "0123456789abcdef"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
