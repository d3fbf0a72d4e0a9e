// Package sqlite implements the blood bank store on SQLite via
// modernc.org/sqlite. It is the default backend for single-host deployments
// and the backend the repository tests run against.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/anshikarawat07/lifelink/internal/model"
	"github.com/anshikarawat07/lifelink/internal/repository"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists blood bank state in SQLite.
type Store struct {
	db *sql.DB

	// hookAfterCredit runs between the stock credit and the donation
	// insert inside RecordDonation's transaction. Tests inject failures
	// here to prove the transaction unwinds the credit.
	hookAfterCredit func() error
}

var _ repository.Store = (*Store)(nil)

// Open opens a SQLite store and creates the schema. SQLite allows a single
// writer, so the store caps the pool at one connection; every ledger
// transaction serializes on it, which makes the read-then-debit in
// fulfillment atomic without row locks.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS donors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			blood_group TEXT NOT NULL,
			contact TEXT,
			city TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recipients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			blood_group TEXT NOT NULL,
			contact TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS camps (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL,
			camp_date INTEGER NOT NULL,
			description TEXT,
			total_donations INTEGER NOT NULL DEFAULT 0,
			total_units INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS blood_stock (
			blood_group TEXT PRIMARY KEY,
			available_units INTEGER NOT NULL DEFAULT 0 CHECK (available_units >= 0),
			expiry_hint INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS donations (
			id TEXT PRIMARY KEY,
			donor_id TEXT REFERENCES donors(id) ON DELETE CASCADE,
			blood_group TEXT NOT NULL,
			amount INTEGER NOT NULL CHECK (amount > 0),
			donation_date INTEGER NOT NULL,
			camp_id TEXT REFERENCES camps(id) ON DELETE SET NULL,
			camp_label TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			requester_name TEXT NOT NULL,
			blood_group TEXT NOT NULL,
			requested_units INTEGER NOT NULL CHECK (requested_units > 0),
			fulfilled_units INTEGER NOT NULL DEFAULT 0 CHECK (fulfilled_units >= 0),
			status TEXT NOT NULL,
			request_date INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS camp_registrations (
			id TEXT PRIMARY KEY,
			camp_id TEXT NOT NULL REFERENCES camps(id) ON DELETE CASCADE,
			person_id TEXT,
			donor_name TEXT NOT NULL,
			amount INTEGER NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			registered_on INTEGER NOT NULL,
			UNIQUE (camp_id, person_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_camp ON camp_registrations(camp_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func isUniqueViolation(err error) bool {
	var serr *msqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
}

// ─── Donors ───────────────────────────────────────────────────────────────────

// CreateDonor inserts a new donor and returns it with a generated UUID.
func (s *Store) CreateDonor(ctx context.Context, req model.CreateDonorRequest) (*model.Donor, error) {
	d := &model.Donor{
		ID:         uuid.New().String(),
		Name:       req.Name,
		BloodGroup: req.BloodGroup,
		Contact:    req.Contact,
		City:       req.City,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO donors (id, name, blood_group, contact, city, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.BloodGroup, d.Contact, d.City, toMillis(d.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert donor: %w", err)
	}
	return d, nil
}

// ListDonors returns all donors ordered by name.
func (s *Store) ListDonors(ctx context.Context) ([]model.Donor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, blood_group, contact, city, created_at
		 FROM donors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	var donors []model.Donor
	for rows.Next() {
		var d model.Donor
		var createdAt int64
		if err := rows.Scan(&d.ID, &d.Name, &d.BloodGroup, &d.Contact, &d.City, &createdAt); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		d.CreatedAt = fromMillis(createdAt)
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

// GetDonor returns a single donor or ErrNotFound.
func (s *Store) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	var d model.Donor
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, blood_group, contact, city, created_at
		 FROM donors WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.BloodGroup, &d.Contact, &d.City, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get donor: %w", err)
	}
	d.CreatedAt = fromMillis(createdAt)
	return &d, nil
}

// DeleteDonor removes a donor; its donation records cascade.
func (s *Store) DeleteDonor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM donors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ─── Recipients ───────────────────────────────────────────────────────────────

// CreateRecipient inserts a new recipient.
func (s *Store) CreateRecipient(ctx context.Context, req model.CreateRecipientRequest) (*model.Recipient, error) {
	r := &model.Recipient{
		ID:         uuid.New().String(),
		Name:       req.Name,
		BloodGroup: req.BloodGroup,
		Contact:    req.Contact,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipients (id, name, blood_group, contact, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.BloodGroup, r.Contact, toMillis(r.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipient: %w", err)
	}
	return r, nil
}

// ListRecipients returns all recipients ordered by name.
func (s *Store) ListRecipients(ctx context.Context) ([]model.Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, blood_group, contact, created_at
		 FROM recipients ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var r model.Recipient
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Name, &r.BloodGroup, &r.Contact, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

// ─── Camps ────────────────────────────────────────────────────────────────────

// CreateCamp inserts a new camp with zeroed aggregates.
func (s *Store) CreateCamp(ctx context.Context, p repository.CampParams) (*model.Camp, error) {
	c := &model.Camp{
		ID:          uuid.New().String(),
		Name:        p.Name,
		Location:    p.Location,
		Date:        p.Date,
		Description: p.Description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO camps (id, name, location, camp_date, description, total_donations, total_units, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?)`,
		c.ID, c.Name, c.Location, toMillis(c.Date), c.Description, toMillis(c.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert camp: %w", err)
	}
	return c, nil
}

// ListCamps returns all camps ordered by camp date descending.
func (s *Store) ListCamps(ctx context.Context) ([]model.Camp, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, camp_date, description, total_donations, total_units, created_at
		 FROM camps ORDER BY camp_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list camps: %w", err)
	}
	defer rows.Close()

	var camps []model.Camp
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, err
		}
		camps = append(camps, *c)
	}
	return camps, rows.Err()
}

// GetCamp returns a single camp or ErrNotFound.
func (s *Store) GetCamp(ctx context.Context, id string) (*model.Camp, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, location, camp_date, description, total_donations, total_units, created_at
		 FROM camps WHERE id = ?`, id)
	c, err := scanCamp(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCamp(row rowScanner) (*model.Camp, error) {
	var c model.Camp
	var campDate, createdAt int64
	err := row.Scan(&c.ID, &c.Name, &c.Location, &campDate, &c.Description,
		&c.TotalDonations, &c.TotalUnits, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan camp: %w", err)
	}
	c.Date = fromMillis(campDate)
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}

// ListRegistrationsByCamp returns all registrations for a camp.
func (s *Store) ListRegistrationsByCamp(ctx context.Context, campID string) ([]model.CampRegistration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, camp_id, person_id, donor_name, amount, mode, status, registered_on
		 FROM camp_registrations WHERE camp_id = ? ORDER BY registered_on DESC`,
		campID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.CampRegistration
	for rows.Next() {
		var reg model.CampRegistration
		var personID sql.NullString
		var registeredOn int64
		if err := rows.Scan(&reg.ID, &reg.CampID, &personID, &reg.DonorName,
			&reg.Amount, &reg.Mode, &reg.Status, &registeredOn); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.PersonID = personID.String
		reg.RegisteredOn = fromMillis(registeredOn)
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// ─── Donation recording ───────────────────────────────────────────────────────

// RecordDonation inserts a donation, credits the stock ledger and, when the
// donation is camp-attributed, bumps the camp aggregates. All three writes
// happen in one transaction: a failure in any step rolls back every step.
func (s *Store) RecordDonation(ctx context.Context, p repository.DonationParams) (donation *model.Donation, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var donorGroup string
	err = tx.QueryRowContext(ctx, `SELECT blood_group FROM donors WHERE id = ?`, p.DonorID).Scan(&donorGroup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("resolve donor: %w", err)
	}
	group := p.BloodGroup
	if group == "" {
		group = donorGroup
	}

	campLabel := ""
	if p.CampID != "" {
		var name, location string
		err = tx.QueryRowContext(ctx, `SELECT name, location FROM camps WHERE id = ?`, p.CampID).Scan(&name, &location)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, repository.ErrNotFound
			}
			return nil, fmt.Errorf("resolve camp: %w", err)
		}
		campLabel = fmt.Sprintf("%s (%s)", name, location)
	}

	if err = creditStock(ctx, tx, group, p.Amount, p.Date); err != nil {
		return nil, err
	}
	if s.hookAfterCredit != nil {
		if err = s.hookAfterCredit(); err != nil {
			return nil, err
		}
	}

	donation = &model.Donation{
		ID:           uuid.New().String(),
		DonorID:      p.DonorID,
		BloodGroup:   group,
		Amount:       p.Amount,
		DonationDate: p.Date,
		CampID:       p.CampID,
		CampLabel:    campLabel,
		CreatedAt:    time.Now().UTC(),
	}
	if err = insertDonation(ctx, tx, donation); err != nil {
		return nil, err
	}

	if p.CampID != "" {
		if err = addCampTotals(ctx, tx, p.CampID, 1, p.Amount); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return donation, nil
}

// creditStock adds units to the ledger row for a blood group inside the
// caller's transaction, creating the row on first credit. The expiry hint is
// refreshed from the donation date.
func creditStock(ctx context.Context, tx *sql.Tx, group string, units int, date time.Time) error {
	expiry := toMillis(date.Add(model.ShelfLife))
	_, err := tx.ExecContext(ctx,
		`INSERT INTO blood_stock (blood_group, available_units, expiry_hint)
		 VALUES (?, ?, ?)
		 ON CONFLICT (blood_group) DO UPDATE
		 SET available_units = available_units + excluded.available_units,
		     expiry_hint = excluded.expiry_hint`,
		group, units, expiry,
	)
	if err != nil {
		return fmt.Errorf("credit stock: %w", err)
	}
	return nil
}

func insertDonation(ctx context.Context, tx *sql.Tx, d *model.Donation) error {
	var donorID, campID any
	if d.DonorID != "" {
		donorID = d.DonorID
	}
	if d.CampID != "" {
		campID = d.CampID
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO donations (id, donor_id, blood_group, amount, donation_date, camp_id, camp_label, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, donorID, d.BloodGroup, d.Amount, toMillis(d.DonationDate), campID, d.CampLabel, toMillis(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// addCampTotals increments the camp aggregates inside the caller's
// transaction. It never opens its own commit boundary.
func addCampTotals(ctx context.Context, tx *sql.Tx, campID string, donations, units int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE camps
		 SET total_donations = total_donations + ?, total_units = total_units + ?
		 WHERE id = ?`,
		donations, units, campID,
	)
	if err != nil {
		return fmt.Errorf("update camp totals: %w", err)
	}
	return nil
}

// ListDonations returns all donations, newest first.
func (s *Store) ListDonations(ctx context.Context) ([]model.Donation, error) {
	return s.queryDonations(ctx,
		`SELECT id, donor_id, blood_group, amount, donation_date, camp_id, camp_label, created_at
		 FROM donations ORDER BY created_at DESC`)
}

// ListDonationsByDonor returns one donor's donation history, newest first.
func (s *Store) ListDonationsByDonor(ctx context.Context, donorID string) ([]model.Donation, error) {
	return s.queryDonations(ctx,
		`SELECT id, donor_id, blood_group, amount, donation_date, camp_id, camp_label, created_at
		 FROM donations WHERE donor_id = ? ORDER BY created_at DESC`, donorID)
}

func (s *Store) queryDonations(ctx context.Context, query string, args ...any) ([]model.Donation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var donations []model.Donation
	for rows.Next() {
		var d model.Donation
		var donorID, campID, campLabel sql.NullString
		var donationDate, createdAt int64
		if err := rows.Scan(&d.ID, &donorID, &d.BloodGroup, &d.Amount,
			&donationDate, &campID, &campLabel, &createdAt); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		d.DonorID = donorID.String
		d.CampID = campID.String
		d.CampLabel = campLabel.String
		d.DonationDate = fromMillis(donationDate)
		d.CreatedAt = fromMillis(createdAt)
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

// ─── Request fulfillment ──────────────────────────────────────────────────────

// FulfillRequest allocates stock to a request. The read of available_units
// and the clamped debit run in one transaction on the store's single writer
// connection, so two concurrent requests for the same group cannot both
// allocate the same stock. The resulting request is terminal; replenished
// stock never revisits it.
func (s *Store) FulfillRequest(ctx context.Context, requesterName, bloodGroup string, requestedUnits int) (req *model.Request, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Absent row means zero stock, not an error.
	available := 0
	err = tx.QueryRowContext(ctx,
		`SELECT available_units FROM blood_stock WHERE blood_group = ?`, bloodGroup,
	).Scan(&available)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read stock: %w", err)
	}
	err = nil

	fulfilled, status := model.Allocate(available, requestedUnits)
	if fulfilled > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE blood_stock SET available_units = available_units - ? WHERE blood_group = ?`,
			fulfilled, bloodGroup,
		)
		if err != nil {
			return nil, fmt.Errorf("debit stock: %w", err)
		}
	}

	req = &model.Request{
		ID:             uuid.New().String(),
		RequesterName:  requesterName,
		BloodGroup:     bloodGroup,
		RequestedUnits: requestedUnits,
		FulfilledUnits: fulfilled,
		Status:         status,
		RequestDate:    time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO requests (id, requester_name, blood_group, requested_units, fulfilled_units, status, request_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.RequesterName, req.BloodGroup, req.RequestedUnits, req.FulfilledUnits, req.Status, toMillis(req.RequestDate),
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return req, nil
}

// ListRequests returns all requests, newest first.
func (s *Store) ListRequests(ctx context.Context) ([]model.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, requester_name, blood_group, requested_units, fulfilled_units, status, request_date
		 FROM requests ORDER BY request_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var r model.Request
		var requestDate int64
		if err := rows.Scan(&r.ID, &r.RequesterName, &r.BloodGroup, &r.RequestedUnits,
			&r.FulfilledUnits, &r.Status, &requestDate); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		r.RequestDate = fromMillis(requestDate)
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// ─── Camp registration ────────────────────────────────────────────────────────

// RegisterForCamp registers a person for a camp and records their donation
// with camp attribution, all in one transaction. A duplicate registration
// for the same (camp, person) fails fast before any donation side effect.
// A person without a donor on file still donates; their units land under the
// "Unknown" ledger group.
func (s *Store) RegisterForCamp(ctx context.Context, p repository.RegistrationParams) (reg *model.CampRegistration, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var campName, campLocation string
	err = tx.QueryRowContext(ctx, `SELECT name, location FROM camps WHERE id = ?`, p.CampID).Scan(&campName, &campLocation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("resolve camp: %w", err)
	}

	var personID any
	if p.PersonID != "" {
		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM camp_registrations WHERE camp_id = ? AND person_id = ?`,
			p.CampID, p.PersonID,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("check duplicate: %w", err)
		}
		if count > 0 {
			return nil, repository.ErrDuplicateRegistration
		}
		personID = p.PersonID
	}

	// Resolve the donor: known people by id, walk-ins by name. An
	// unresolved donor still registers; the group defaults to Unknown.
	donorID, group := "", model.UnknownBloodGroup
	var row *sql.Row
	if p.PersonID != "" {
		row = tx.QueryRowContext(ctx, `SELECT id, blood_group FROM donors WHERE id = ?`, p.PersonID)
	} else {
		row = tx.QueryRowContext(ctx, `SELECT id, blood_group FROM donors WHERE name = ? ORDER BY created_at ASC LIMIT 1`, p.DonorName)
	}
	if err = row.Scan(&donorID, &group); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resolve donor: %w", err)
		}
		err = nil
	}

	reg = &model.CampRegistration{
		ID:           uuid.New().String(),
		CampID:       p.CampID,
		PersonID:     p.PersonID,
		DonorName:    p.DonorName,
		Amount:       p.Amount,
		Mode:         p.Mode,
		Status:       model.RegistrationConfirmed,
		RegisteredOn: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO camp_registrations (id, camp_id, person_id, donor_name, amount, mode, status, registered_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.CampID, personID, reg.DonorName, reg.Amount, reg.Mode, reg.Status, toMillis(reg.RegisteredOn),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	// The donation sub-steps share this transaction, so a failure below
	// also unwinds the registration insert.
	now := time.Now().UTC()
	if err = creditStock(ctx, tx, group, p.Amount, now); err != nil {
		return nil, err
	}
	donation := &model.Donation{
		ID:           uuid.New().String(),
		DonorID:      donorID,
		BloodGroup:   group,
		Amount:       p.Amount,
		DonationDate: now,
		CampID:       p.CampID,
		CampLabel:    fmt.Sprintf("%s (%s)", campName, campLocation),
		CreatedAt:    now,
	}
	if err = insertDonation(ctx, tx, donation); err != nil {
		return nil, err
	}
	if err = addCampTotals(ctx, tx, p.CampID, 1, p.Amount); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// ─── Stock views ──────────────────────────────────────────────────────────────

// StockSnapshot returns the available units per blood group.
func (s *Store) StockSnapshot(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT blood_group, available_units FROM blood_stock`)
	if err != nil {
		return nil, fmt.Errorf("stock snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]int)
	for rows.Next() {
		var group string
		var units int
		if err := rows.Scan(&group, &units); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		snapshot[group] = units
	}
	return snapshot, rows.Err()
}

// ListStock returns all ledger rows with their expiry hints.
func (s *Store) ListStock(ctx context.Context) ([]model.StockEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT blood_group, available_units, expiry_hint FROM blood_stock ORDER BY blood_group ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var entries []model.StockEntry
	for rows.Next() {
		var e model.StockEntry
		var expiry sql.NullInt64
		if err := rows.Scan(&e.BloodGroup, &e.AvailableUnits, &expiry); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		if expiry.Valid {
			hint := fromMillis(expiry.Int64)
			e.ExpiryHint = &hint
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary returns the dashboard roll-up.
func (s *Store) Summary(ctx context.Context) (*model.Summary, error) {
	sum := &model.Summary{RequestsByStatus: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(available_units), 0) FROM blood_stock`).Scan(&sum.TotalUnits)
	if err != nil {
		return nil, fmt.Errorf("sum stock: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donors`).Scan(&sum.Donors); err != nil {
		return nil, fmt.Errorf("count donors: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipients`).Scan(&sum.Recipients); err != nil {
		return nil, fmt.Errorf("count recipients: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM camps`).Scan(&sum.Camps); err != nil {
		return nil, fmt.Errorf("count camps: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count requests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan request count: %w", err)
		}
		sum.RequestsByStatus[status] = count
	}
	return sum, rows.Err()
}
