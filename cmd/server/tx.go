package main

import (
	"context"
	"database/sql"
	"time"

	conflictservice "unitgate/internal/conflict/service"
	conflictpostgres "unitgate/internal/conflict/store/postgres"
	"unitgate/internal/directory"
	invitationservice "unitgate/internal/invitation/service"
	invitationpostgres "unitgate/internal/invitation/store/postgres"
	membershipservice "unitgate/internal/membership/service"
	membershippostgres "unitgate/internal/membership/store/postgres"
	"unitgate/internal/platform/database"
	outboxpostgres "unitgate/pkg/platform/outbox/postgres"
)

// writerBinder returns the directory for one transaction. The Postgres
// directory joins the caller's *sql.Tx; remote directories ignore it and are
// compensated by the service instead.
type writerBinder func(db database.DBTX) directory.Directory

type membershipPostgresTx struct {
	db      *sql.DB
	writer  writerBinder
	timeout time.Duration
}

func newMembershipPostgresTx(db *sql.DB, writer writerBinder, timeout time.Duration) *membershipPostgresTx {
	return &membershipPostgresTx{db: db, writer: writer, timeout: timeout}
}

func (t *membershipPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores membershipservice.Stores) error) error {
	return database.WithTx(ctx, t.db, t.timeout, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, membershipservice.Stores{
			Requests:  membershippostgres.New(tx),
			Directory: t.writer(tx),
			Outbox:    outboxpostgres.New(tx),
		})
	})
}

type conflictPostgresTx struct {
	db      *sql.DB
	writer  writerBinder
	timeout time.Duration
}

func newConflictPostgresTx(db *sql.DB, writer writerBinder, timeout time.Duration) *conflictPostgresTx {
	return &conflictPostgresTx{db: db, writer: writer, timeout: timeout}
}

func (t *conflictPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores conflictservice.Stores) error) error {
	return database.WithTx(ctx, t.db, t.timeout, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, conflictservice.Stores{
			Reports:   conflictpostgres.New(tx),
			Directory: t.writer(tx),
			Outbox:    outboxpostgres.New(tx),
		})
	})
}

type invitationPostgresTx struct {
	db      *sql.DB
	writer  writerBinder
	timeout time.Duration
}

func newInvitationPostgresTx(db *sql.DB, writer writerBinder, timeout time.Duration) *invitationPostgresTx {
	return &invitationPostgresTx{db: db, writer: writer, timeout: timeout}
}

func (t *invitationPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores invitationservice.Stores) error) error {
	return database.WithTx(ctx, t.db, t.timeout, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, invitationservice.Stores{
			Links:     invitationpostgres.NewLinkStore(tx),
			Family:    invitationpostgres.NewFamilyStore(tx),
			Directory: t.writer(tx),
			Outbox:    outboxpostgres.New(tx),
		})
	})
}
