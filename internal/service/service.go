// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the persistence layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anshikarawat07/lifelink/internal/metrics"
	"github.com/anshikarawat07/lifelink/internal/model"
	"github.com/anshikarawat07/lifelink/internal/repository"
)

// dateLayout is the wire format for dates in request payloads.
const dateLayout = "2006-01-02"

// maxDonationAmount caps a single donation credit (units).
const maxDonationAmount = 10_000

// BloodBank orchestrates donation recording, request fulfillment and camp
// registration on top of a repository.Store.
type BloodBank struct {
	store   repository.Store
	metrics *metrics.Metrics
}

// New constructs a BloodBank service with its dependencies.
func New(store repository.Store, m *metrics.Metrics) *BloodBank {
	return &BloodBank{store: store, metrics: m}
}

// normalizeGroup canonicalises a blood group label ("o+" and "O+" are the
// same ledger key).
func normalizeGroup(group string) string {
	return strings.ToUpper(strings.TrimSpace(group))
}

// ─── Donors ───────────────────────────────────────────────────────────────────

// CreateDonor validates the request and delegates to the store.
func (b *BloodBank) CreateDonor(ctx context.Context, req model.CreateDonorRequest) (*model.Donor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.BloodGroup = normalizeGroup(req.BloodGroup)
	if req.Name == "" {
		return nil, fmt.Errorf("donor name is required")
	}
	if req.BloodGroup == "" {
		return nil, fmt.Errorf("blood group is required")
	}
	return b.store.CreateDonor(ctx, req)
}

// ListDonors returns all donors.
func (b *BloodBank) ListDonors(ctx context.Context) ([]model.Donor, error) {
	return b.store.ListDonors(ctx)
}

// GetDonor returns a single donor by ID.
func (b *BloodBank) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	if id == "" {
		return nil, fmt.Errorf("donor id is required")
	}
	return b.store.GetDonor(ctx, id)
}

// DeleteDonor removes a donor and, via cascade, their donation history.
func (b *BloodBank) DeleteDonor(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("donor id is required")
	}
	return b.store.DeleteDonor(ctx, id)
}

// DonorDonations returns one donor's donation history.
func (b *BloodBank) DonorDonations(ctx context.Context, donorID string) ([]model.Donation, error) {
	if _, err := b.store.GetDonor(ctx, donorID); err != nil {
		return nil, err
	}
	return b.store.ListDonationsByDonor(ctx, donorID)
}

// ─── Recipients ───────────────────────────────────────────────────────────────

// CreateRecipient validates the request and delegates to the store.
func (b *BloodBank) CreateRecipient(ctx context.Context, req model.CreateRecipientRequest) (*model.Recipient, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.BloodGroup = normalizeGroup(req.BloodGroup)
	if req.Name == "" {
		return nil, fmt.Errorf("recipient name is required")
	}
	if req.BloodGroup == "" {
		return nil, fmt.Errorf("blood group is required")
	}
	return b.store.CreateRecipient(ctx, req)
}

// ListRecipients returns all recipients.
func (b *BloodBank) ListRecipients(ctx context.Context) ([]model.Recipient, error) {
	return b.store.ListRecipients(ctx)
}

// ─── Camps ────────────────────────────────────────────────────────────────────

// CreateCamp validates the request and delegates to the store.
func (b *BloodBank) CreateCamp(ctx context.Context, req model.CreateCampRequest) (*model.Camp, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" {
		return nil, fmt.Errorf("camp name is required")
	}
	if req.Location == "" {
		return nil, fmt.Errorf("camp location is required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("camp date must be YYYY-MM-DD")
	}
	return b.store.CreateCamp(ctx, repository.CampParams{
		Name:        req.Name,
		Location:    req.Location,
		Date:        date,
		Description: req.Description,
	})
}

// ListCamps returns all camps with their aggregates.
func (b *BloodBank) ListCamps(ctx context.Context) ([]model.Camp, error) {
	return b.store.ListCamps(ctx)
}

// GetCamp returns a single camp by ID.
func (b *BloodBank) GetCamp(ctx context.Context, id string) (*model.Camp, error) {
	if id == "" {
		return nil, fmt.Errorf("camp id is required")
	}
	return b.store.GetCamp(ctx, id)
}

// CampRegistrations returns all registrations for a camp.
func (b *BloodBank) CampRegistrations(ctx context.Context, campID string) ([]model.CampRegistration, error) {
	if _, err := b.store.GetCamp(ctx, campID); err != nil {
		return nil, err
	}
	return b.store.ListRegistrationsByCamp(ctx, campID)
}

// ─── Core operations ──────────────────────────────────────────────────────────

// RecordDonation validates a donation and records it: one transaction
// inserting the record, crediting the ledger, and bumping the camp
// aggregates when the donation is camp-attributed.
func (b *BloodBank) RecordDonation(ctx context.Context, req model.RecordDonationRequest) (*model.Donation, error) {
	if strings.TrimSpace(req.DonorID) == "" {
		return nil, fmt.Errorf("donor_id is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be a positive integer")
	}
	if req.Amount > maxDonationAmount {
		return nil, fmt.Errorf("amount cannot exceed %d", maxDonationAmount)
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD")
		}
		date = parsed
	}

	donation, err := b.store.RecordDonation(ctx, repository.DonationParams{
		DonorID:    strings.TrimSpace(req.DonorID),
		BloodGroup: normalizeGroup(req.BloodGroup),
		Amount:     req.Amount,
		Date:       date,
		CampID:     strings.TrimSpace(req.CampID),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("record donation: %w", err)
	}

	b.metrics.DonationsTotal.Inc()
	b.metrics.DonatedUnits.Add(float64(donation.Amount))
	b.RefreshStockGauge(ctx)
	return donation, nil
}

// FulfillRequest validates a blood request and allocates stock to it. The
// request is persisted with its final status; lack of stock leaves it
// Pending, never rejected.
func (b *BloodBank) FulfillRequest(ctx context.Context, req model.CreateBloodRequest) (*model.Request, error) {
	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.BloodGroup = normalizeGroup(req.BloodGroup)
	if req.RequesterName == "" {
		return nil, fmt.Errorf("requester_name is required")
	}
	if req.BloodGroup == "" {
		return nil, fmt.Errorf("blood_group is required")
	}
	if req.RequestedUnits <= 0 {
		return nil, fmt.Errorf("requested_units must be a positive integer")
	}

	request, err := b.store.FulfillRequest(ctx, req.RequesterName, req.BloodGroup, req.RequestedUnits)
	if err != nil {
		return nil, fmt.Errorf("fulfill request: %w", err)
	}

	b.metrics.RequestsTotal.WithLabelValues(request.Status).Inc()
	b.RefreshStockGauge(ctx)
	return request, nil
}

// RegisterForCamp validates a camp registration and registers the person,
// recording their donation with camp attribution in the same transaction.
func (b *BloodBank) RegisterForCamp(ctx context.Context, campID string, req model.CampRegisterRequest) (*model.CampRegistration, error) {
	req.DonorName = strings.TrimSpace(req.DonorName)
	if campID == "" {
		return nil, fmt.Errorf("camp id is required")
	}
	if req.DonorName == "" {
		return nil, fmt.Errorf("donor_name is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be a positive integer")
	}
	mode := req.Mode
	if mode == "" {
		mode = model.ModeOnline
	}
	if mode != model.ModeOnline && mode != model.ModeAdmin {
		return nil, fmt.Errorf("mode must be %q or %q", model.ModeOnline, model.ModeAdmin)
	}

	reg, err := b.store.RegisterForCamp(ctx, repository.RegistrationParams{
		CampID:    campID,
		PersonID:  strings.TrimSpace(req.PersonID),
		DonorName: req.DonorName,
		Amount:    req.Amount,
		Mode:      mode,
	})
	if err != nil {
		// Surface domain errors directly so handlers can set correct HTTP status.
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicateRegistration) {
			return nil, err
		}
		return nil, fmt.Errorf("register for camp: %w", err)
	}

	b.metrics.RegistrationsTotal.WithLabelValues(reg.Mode).Inc()
	b.RefreshStockGauge(ctx)
	return reg, nil
}

// ─── Read surface ─────────────────────────────────────────────────────────────

// StockSnapshot returns available units per blood group.
func (b *BloodBank) StockSnapshot(ctx context.Context) (map[string]int, error) {
	return b.store.StockSnapshot(ctx)
}

// ListStock returns all ledger rows with expiry hints.
func (b *BloodBank) ListStock(ctx context.Context) ([]model.StockEntry, error) {
	return b.store.ListStock(ctx)
}

// ListDonations returns all donations.
func (b *BloodBank) ListDonations(ctx context.Context) ([]model.Donation, error) {
	return b.store.ListDonations(ctx)
}

// ListRequests returns all requests.
func (b *BloodBank) ListRequests(ctx context.Context) ([]model.Request, error) {
	return b.store.ListRequests(ctx)
}

// Summary returns the dashboard roll-up.
func (b *BloodBank) Summary(ctx context.Context) (*model.Summary, error) {
	return b.store.Summary(ctx)
}

// RefreshStockGauge reconciles the stock gauge with the ledger. Called at
// startup and after every mutating operation; a read failure here only
// leaves the gauge stale, so it is not surfaced to the caller.
func (b *BloodBank) RefreshStockGauge(ctx context.Context) {
	snapshot, err := b.store.StockSnapshot(ctx)
	if err != nil {
		return
	}
	for group, units := range snapshot {
		b.metrics.StockUnits.WithLabelValues(group).Set(float64(units))
	}
}
