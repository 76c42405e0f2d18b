package mysql

import (
	"context"
	"database/sql"
	"errors"

	"petotel/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// Repo persists pet-policy snapshots, detail misses and the confirmed-booking ledger.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertSnapshot(ctx context.Context, s domain.PetPolicySnapshot) error {
	_, err := r.db.ExecContext(ctx, upsertSnapshotSQL,
		s.HotelID,
		valStr(s.HotelName),
		s.PetFriendly,
		valStr(s.PolicyText),
		valStr(s.Source),
		valJSON(s.RawJSON),
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, hotelID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, hotelID, status, reason)
	return err
}

func (r *Repo) GetSnapshot(ctx context.Context, hotelID string) (domain.PetPolicySnapshot, error) {
	var s domain.PetPolicySnapshot
	var name, text, source sql.NullString
	var raw []byte
	err := r.db.QueryRowContext(ctx, getSnapshotSQL, hotelID).Scan(
		&s.HotelID, &name, &s.PetFriendly, &text, &source, &raw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PetPolicySnapshot{}, domain.ErrNotFound
		}
		return domain.PetPolicySnapshot{}, err
	}
	s.HotelName = name.String
	s.PolicyText = text.String
	s.Source = source.String
	if len(raw) > 0 {
		s.RawJSON = append([]byte(nil), raw...)
	}
	return s, nil
}

func (r *Repo) RecordBooking(ctx context.Context, e domain.LedgerEntry) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		e.BookingID,
		e.AttemptID,
		e.HotelID,
		valStr(e.HotelName),
		valStr(e.Checkin),
		valStr(e.Checkout),
		valStr(e.Status),
		valStr(e.Confirmation),
		e.Price,
		valStr(e.Currency),
		valStr(e.HolderEmail),
		valStr(e.PetType),
		valStr(e.PetCount),
		valJSON(e.RawJSON),
		e.ConfirmedAt.UTC(),
	)
	return err
}

func (r *Repo) GetBooking(ctx context.Context, bookingID string) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var (
		hotelName, checkin, checkout   sql.NullString
		status, confirmation, currency sql.NullString
		email, petType, petCount       sql.NullString
		price                          sql.NullFloat64
		raw                            []byte
	)
	err := r.db.QueryRowContext(ctx, getBookingSQL, bookingID).Scan(
		&e.BookingID,
		&e.AttemptID,
		&e.HotelID,
		&hotelName,
		&checkin,
		&checkout,
		&status,
		&confirmation,
		&price,
		&currency,
		&email,
		&petType,
		&petCount,
		&raw,
		&e.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LedgerEntry{}, domain.ErrNotFound
		}
		return domain.LedgerEntry{}, err
	}
	e.HotelName = hotelName.String
	e.Checkin = checkin.String
	e.Checkout = checkout.String
	e.Status = status.String
	e.Confirmation = confirmation.String
	e.Price = price.Float64
	e.Currency = currency.String
	e.HolderEmail = email.String
	e.PetType = petType.String
	e.PetCount = petCount.String
	if len(raw) > 0 {
		e.RawJSON = append([]byte(nil), raw...)
	}
	return e, nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
