// Package repository defines the persistence contract for the blood bank
// and the domain errors shared by its backends.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/anshikarawat07/lifelink/internal/model"
)

// ErrNotFound is returned when a referenced donor, camp or recipient does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateRegistration is returned when a person is already registered
// for a camp.
var ErrDuplicateRegistration = errors.New("already registered for this camp")

// DonationParams are the inputs to RecordDonation. BloodGroup is optional;
// the donor's registered group is used when it is empty. CampID is optional
// and attributes the donation to a camp.
type DonationParams struct {
	DonorID    string
	BloodGroup string
	Amount     int
	Date       time.Time
	CampID     string
}

// CampParams are the inputs to CreateCamp.
type CampParams struct {
	Name        string
	Location    string
	Date        time.Time
	Description string
}

// RegistrationParams are the inputs to RegisterForCamp. PersonID is empty
// for admin-assisted walk-ins; walk-ins are resolved to a donor by name.
type RegistrationParams struct {
	CampID    string
	PersonID  string
	DonorName string
	Amount    int
	Mode      string
}

// Store is the persistence contract. The three mutating operations that
// touch more than one table (RecordDonation, FulfillRequest,
// RegisterForCamp) are each executed as a single transaction by the
// implementation: either every step commits or none does, and concurrent
// calls against the same blood group serialize on the stock row.
type Store interface {
	CreateDonor(ctx context.Context, req model.CreateDonorRequest) (*model.Donor, error)
	ListDonors(ctx context.Context) ([]model.Donor, error)
	GetDonor(ctx context.Context, id string) (*model.Donor, error)
	DeleteDonor(ctx context.Context, id string) error

	CreateRecipient(ctx context.Context, req model.CreateRecipientRequest) (*model.Recipient, error)
	ListRecipients(ctx context.Context) ([]model.Recipient, error)

	CreateCamp(ctx context.Context, p CampParams) (*model.Camp, error)
	ListCamps(ctx context.Context) ([]model.Camp, error)
	GetCamp(ctx context.Context, id string) (*model.Camp, error)
	ListRegistrationsByCamp(ctx context.Context, campID string) ([]model.CampRegistration, error)

	RecordDonation(ctx context.Context, p DonationParams) (*model.Donation, error)
	ListDonations(ctx context.Context) ([]model.Donation, error)
	ListDonationsByDonor(ctx context.Context, donorID string) ([]model.Donation, error)

	FulfillRequest(ctx context.Context, requesterName, bloodGroup string, requestedUnits int) (*model.Request, error)
	ListRequests(ctx context.Context) ([]model.Request, error)

	RegisterForCamp(ctx context.Context, p RegistrationParams) (*model.CampRegistration, error)

	StockSnapshot(ctx context.Context) (map[string]int, error)
	ListStock(ctx context.Context) ([]model.StockEntry, error)
	Summary(ctx context.Context) (*model.Summary, error)

	Close() error
}
