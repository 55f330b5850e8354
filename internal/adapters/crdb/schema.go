package crdb

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	package_id UUID NOT NULL,
	booking_date DATE NOT NULL,
	number_of_members INT NOT NULL CHECK (number_of_members BETWEEN 1 AND 20),
	total_price NUMERIC NOT NULL CHECK (total_price >= 0),
	advance_payment NUMERIC NOT NULL CHECK (advance_payment >= 0),
	remaining_payment NUMERIC NOT NULL CHECK (remaining_payment >= 0),
	status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status, created_at DESC);
CREATE TABLE IF NOT EXISTS booking_members (
	id UUID PRIMARY KEY,
	booking_id UUID NOT NULL REFERENCES bookings (id) ON DELETE CASCADE,
	position INT NOT NULL,
	name TEXT NOT NULL CHECK (name <> ''),
	age INT NOT NULL CHECK (age > 0),
	phone TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (booking_id, position)
);
CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY,
	booking_id UUID NOT NULL REFERENCES bookings (id) ON DELETE CASCADE,
	amount NUMERIC NOT NULL CHECK (amount >= 0),
	payment_type TEXT NOT NULL CHECK (payment_type IN ('advance', 'full')),
	utr_id TEXT NOT NULL CHECK (utr_id <> ''),
	screenshot_url TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('pending', 'verified', 'rejected')),
	verified_by UUID,
	verified_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS payments_booking_idx ON payments (booking_id, created_at);
CREATE TABLE IF NOT EXISTS outbox (
	id UUID PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	payload_json JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'NEW' CHECK (status IN ('NEW', 'PUBLISHED', 'FAILED')),
	attempts INT NOT NULL DEFAULT 0,
	dedupe_key TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS outbox_status_idx ON outbox (status, created_at);
`

// Migrate creates the tables the repository needs. It is safe to run on
// every start.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}
