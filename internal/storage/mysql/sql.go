package mysql

const upsertSnapshotSQL = `
INSERT INTO hotel_pet_policies
  (hotel_id, hotel_name, pet_friendly, policy_text, source, raw)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_name   = VALUES(hotel_name),
  pet_friendly = VALUES(pet_friendly),
  policy_text  = VALUES(policy_text),
  source       = VALUES(source),
  raw          = VALUES(raw),
  updated_at   = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO detail_misses (hotel_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// A replayed confirmation for the same booking keeps the first row.
const insertBookingSQL = `
INSERT INTO booking_ledger
  (booking_id, attempt_id, hotel_id, hotel_name, checkin, checkout, status,
   confirmation, price, currency, holder_email, pet_type, pet_count, raw, confirmed_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  status = VALUES(status)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getSnapshotSQL = `
SELECT hotel_id, hotel_name, pet_friendly, policy_text, source, raw
FROM hotel_pet_policies
WHERE hotel_id = ?
`

const getBookingSQL = `
SELECT
  booking_id,
  attempt_id,
  hotel_id,
  hotel_name,
  DATE_FORMAT(checkin, '%Y-%m-%d'),
  DATE_FORMAT(checkout, '%Y-%m-%d'),
  status,
  confirmation,
  price,
  currency,
  holder_email,
  pet_type,
  pet_count,
  raw,
  confirmed_at
FROM booking_ledger
WHERE booking_id = ?
`
