package postgres

import (
	"context"
	"fmt"
)

// schemaDDL creates every table the service uses. Statements are
// idempotent so the tool can run against an existing database.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS technicians (
	id           BIGSERIAL PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL DEFAULT '',
	badge        TEXT NOT NULL UNIQUE,
	email        TEXT,
	account_type INT,
	active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS technicians_email_idx ON technicians (email) WHERE email IS NOT NULL;

CREATE TABLE IF NOT EXISTS work_orders (
	id                   BIGSERIAL PRIMARY KEY,
	external_id          TEXT NOT NULL UNIQUE,
	number               INT,
	fiscal_year          INT,
	order_date           TIMESTAMPTZ NOT NULL,
	started_at           TIMESTAMPTZ,
	ended_at             TIMESTAMPTZ,
	description          TEXT NOT NULL DEFAULT '',
	notes                TEXT,
	status               INT NOT NULL,
	signed               BOOLEAN NOT NULL DEFAULT FALSE,
	archived             BOOLEAN NOT NULL DEFAULT FALSE,
	client_internal_code TEXT,
	client_id            TEXT,
	client_company       TEXT,
	client_tax_id        TEXT,
	client_address       TEXT,
	client_province      TEXT,
	client_city          TEXT,
	client_country       TEXT,
	client_phone         TEXT,
	client_email         TEXT,
	client_erp_id        TEXT,
	project_id           TEXT,
	erp_id               TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS work_order_technicians (
	work_order_id BIGINT NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
	technician_id BIGINT NOT NULL REFERENCES technicians (id) ON DELETE CASCADE,
	PRIMARY KEY (work_order_id, technician_id)
);

CREATE TABLE IF NOT EXISTS holidays (
	id    BIGSERIAL PRIMARY KEY,
	day   DATE NOT NULL UNIQUE,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS overtime_records (
	id                  BIGSERIAL PRIMARY KEY,
	work_order_id       BIGINT NOT NULL REFERENCES work_orders (id) ON DELETE CASCADE,
	technician_id       BIGINT NOT NULL REFERENCES technicians (id) ON DELETE CASCADE,
	work_date           DATE NOT NULL,
	started_at          TIMESTAMPTZ NOT NULL,
	ended_at            TIMESTAMPTZ NOT NULL,
	normal_hours        DOUBLE PRECISION NOT NULL DEFAULT 0,
	extra_normal_hours  DOUBLE PRECISION NOT NULL DEFAULT 0,
	extra_special_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	day_type            TEXT NOT NULL,
	auto_computed       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (work_order_id, technician_id)
);
CREATE INDEX IF NOT EXISTS overtime_records_work_date_idx ON overtime_records (work_date);
CREATE INDEX IF NOT EXISTS overtime_records_technician_idx ON overtime_records (technician_id);

CREATE TABLE IF NOT EXISTS sync_snapshots (
	id                 UUID PRIMARY KEY,
	order_count        INT NOT NULL,
	raw_size           INT NOT NULL,
	payload_compressed BYTEA NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
