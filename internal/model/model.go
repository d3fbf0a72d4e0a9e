// Package model defines the core domain types for the blood bank service.
package model

import "time"

// Request statuses assigned by the fulfillment engine. A request is created
// with its final status; it is never revisited when stock replenishes.
const (
	StatusPending            = "Pending"
	StatusFulfilled          = "Fulfilled"
	StatusPartiallyFulfilled = "Partially Fulfilled"
	StatusRejected           = "Rejected"
)

// Camp registration modes.
const (
	ModeOnline = "online"
	ModeAdmin  = "admin"
)

// RegistrationConfirmed is the status written for a successful registration.
const RegistrationConfirmed = "Confirmed"

// UnknownBloodGroup is the placeholder ledger key used when a camp
// registration cannot be resolved to a donor on file.
const UnknownBloodGroup = "Unknown"

// ShelfLife is the expiry hint applied to a stock row on every credit.
const ShelfLife = 42 * 24 * time.Hour

// Donor is a registered blood donor.
type Donor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BloodGroup string    `json:"blood_group"`
	Contact    string    `json:"contact,omitempty"`
	City       string    `json:"city,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Recipient is a person who may request blood.
type Recipient struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BloodGroup string    `json:"blood_group"`
	Contact    string    `json:"contact,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Camp is a donation camp. TotalDonations and TotalUnits are running
// aggregates over the donations attributed to the camp; they are only ever
// bumped inside the same transaction that inserts the donation.
type Camp struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description,omitempty"`
	TotalDonations int       `json:"total_donations"`
	TotalUnits     int       `json:"total_units"`
	CreatedAt      time.Time `json:"created_at"`
}

// Donation is one immutable credit to the ledger. DonorID is empty when the
// donation came through a camp registration that resolved to no donor on
// file. CampID is set when the donation is attributed to a camp; CampLabel
// carries the human-readable attribution text.
type Donation struct {
	ID           string    `json:"id"`
	DonorID      string    `json:"donor_id,omitempty"`
	BloodGroup   string    `json:"blood_group"`
	Amount       int       `json:"amount"`
	DonationDate time.Time `json:"donation_date"`
	CampID       string    `json:"camp_id,omitempty"`
	CampLabel    string    `json:"camp_label,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockEntry is one ledger row: the available units for a blood group.
type StockEntry struct {
	BloodGroup     string     `json:"blood_group"`
	AvailableUnits int        `json:"available_units"`
	ExpiryHint     *time.Time `json:"expiry_hint,omitempty"`
}

// Request records one allocation attempt against the ledger.
type Request struct {
	ID             string    `json:"id"`
	RequesterName  string    `json:"requester_name"`
	BloodGroup     string    `json:"blood_group"`
	RequestedUnits int       `json:"requested_units"`
	FulfilledUnits int       `json:"fulfilled_units"`
	Status         string    `json:"status"`
	RequestDate    time.Time `json:"request_date"`
}

// Outstanding returns the units the request still lacks.
func (r *Request) Outstanding() int {
	return r.RequestedUnits - r.FulfilledUnits
}

// Allocate decides how many units a request receives from the available
// stock, and the resulting request status. Stock covering the request in
// full (inclusive of the exact-match case) fulfills it; short but non-zero
// stock partially fulfills it, draining the ledger row; empty stock leaves
// it Pending. Callers must apply the decision and persist the request under
// one lock or transaction.
func Allocate(available, requested int) (fulfilled int, status string) {
	switch {
	case available >= requested:
		return requested, StatusFulfilled
	case available > 0:
		return available, StatusPartiallyFulfilled
	default:
		return 0, StatusPending
	}
}

// CampRegistration records one person signing up to donate at a camp.
// PersonID is empty for admin-assisted walk-ins.
type CampRegistration struct {
	ID           string    `json:"id"`
	CampID       string    `json:"camp_id"`
	PersonID     string    `json:"person_id,omitempty"`
	DonorName    string    `json:"donor_name"`
	Amount       int       `json:"amount"`
	Mode         string    `json:"mode"`
	Status       string    `json:"status"`
	RegisteredOn time.Time `json:"registered_on"`
}

// CreateDonorRequest is the payload for adding a donor.
type CreateDonorRequest struct {
	Name       string `json:"name"`
	BloodGroup string `json:"blood_group"`
	Contact    string `json:"contact"`
	City       string `json:"city"`
}

// CreateRecipientRequest is the payload for adding a recipient.
type CreateRecipientRequest struct {
	Name       string `json:"name"`
	BloodGroup string `json:"blood_group"`
	Contact    string `json:"contact"`
}

// CreateCampRequest is the payload for adding a camp. Date is YYYY-MM-DD.
type CreateCampRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// RecordDonationRequest is the payload for recording a donation. BloodGroup
// is optional; the donor's registered group is used when it is empty. Date
// is YYYY-MM-DD and defaults to today. CampID attributes the donation to a
// camp.
type RecordDonationRequest struct {
	DonorID    string `json:"donor_id"`
	BloodGroup string `json:"blood_group"`
	Amount     int    `json:"amount"`
	Date       string `json:"date"`
	CampID     string `json:"camp_id"`
}

// CreateBloodRequest is the payload for requesting blood.
type CreateBloodRequest struct {
	RequesterName  string `json:"requester_name"`
	BloodGroup     string `json:"blood_group"`
	RequestedUnits int    `json:"requested_units"`
}

// CampRegisterRequest is the payload for registering for a camp. PersonID
// is empty for walk-ins registered by an administrator.
type CampRegisterRequest struct {
	PersonID  string `json:"person_id"`
	DonorName string `json:"donor_name"`
	Amount    int    `json:"amount"`
	Mode      string `json:"mode"`
}

// Summary is the dashboard roll-up.
type Summary struct {
	TotalUnits       int            `json:"total_units"`
	Donors           int            `json:"donors"`
	Recipients       int            `json:"recipients"`
	Camps            int            `json:"camps"`
	RequestsByStatus map[string]int `json:"requests_by_status"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
