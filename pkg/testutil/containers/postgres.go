//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"unitgate/migrations"
	id "unitgate/pkg/domain"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("unitgate_test"),
		postgres.WithUsername("unitgate"),
		postgres.WithPassword("unitgate_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}

	if err := pc.runMigrations(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Shared through Manager; Ryuk removes the container when the process exits.

	return pc
}

func (p *PostgresContainer) runMigrations(ctx context.Context) error {
	_, err := migrations.Apply(ctx, p.DB)
	return err
}

// TruncateTables clears all data from the specified tables.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAll clears every workflow and directory table between tests.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	return p.TruncateTables(ctx,
		"outbox",
		"membership_requests",
		"conflict_reports",
		"invite_links",
		"family_invitations",
		"family_members",
		"unit_occupants",
		"buildings",
	)
}

// SeedBuilding inserts a building row and returns its id.
func (p *PostgresContainer) SeedBuilding(ctx context.Context, t testing.TB, code, managerPhone string) id.BuildingID {
	t.Helper()
	buildingID := id.BuildingID(uuid.New())
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO buildings (id, code, name, manager_phone)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(buildingID), code, "Building "+code, managerPhone)
	if err != nil {
		t.Fatalf("SeedBuilding: %v", err)
	}
	return buildingID
}
