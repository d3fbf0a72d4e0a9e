package service

import (
	"context"
	"errors"

	"github.com/anshikarawat07/lifelink/internal/model"
	"github.com/anshikarawat07/lifelink/internal/repository"
)

// Compile-time check that mockStore implements repository.Store.
var _ repository.Store = (*mockStore)(nil)

// mockStore is a function-field mock of repository.Store. Unset fields
// return an error so a test only exercises the calls it configured.
type mockStore struct {
	CreateDonorFunc             func(ctx context.Context, req model.CreateDonorRequest) (*model.Donor, error)
	ListDonorsFunc              func(ctx context.Context) ([]model.Donor, error)
	GetDonorFunc                func(ctx context.Context, id string) (*model.Donor, error)
	DeleteDonorFunc             func(ctx context.Context, id string) error
	CreateRecipientFunc         func(ctx context.Context, req model.CreateRecipientRequest) (*model.Recipient, error)
	ListRecipientsFunc          func(ctx context.Context) ([]model.Recipient, error)
	CreateCampFunc              func(ctx context.Context, p repository.CampParams) (*model.Camp, error)
	ListCampsFunc               func(ctx context.Context) ([]model.Camp, error)
	GetCampFunc                 func(ctx context.Context, id string) (*model.Camp, error)
	ListRegistrationsByCampFunc func(ctx context.Context, campID string) ([]model.CampRegistration, error)
	RecordDonationFunc          func(ctx context.Context, p repository.DonationParams) (*model.Donation, error)
	ListDonationsFunc           func(ctx context.Context) ([]model.Donation, error)
	ListDonationsByDonorFunc    func(ctx context.Context, donorID string) ([]model.Donation, error)
	FulfillRequestFunc          func(ctx context.Context, requesterName, bloodGroup string, requestedUnits int) (*model.Request, error)
	ListRequestsFunc            func(ctx context.Context) ([]model.Request, error)
	RegisterForCampFunc         func(ctx context.Context, p repository.RegistrationParams) (*model.CampRegistration, error)
	StockSnapshotFunc           func(ctx context.Context) (map[string]int, error)
	ListStockFunc               func(ctx context.Context) ([]model.StockEntry, error)
	SummaryFunc                 func(ctx context.Context) (*model.Summary, error)

	RecordDonationCalls  int
	FulfillRequestCalls  int
	RegisterForCampCalls int
}

var errUnexpectedCall = errors.New("unexpected store call")

func (m *mockStore) CreateDonor(ctx context.Context, req model.CreateDonorRequest) (*model.Donor, error) {
	if m.CreateDonorFunc != nil {
		return m.CreateDonorFunc(ctx, req)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListDonors(ctx context.Context) ([]model.Donor, error) {
	if m.ListDonorsFunc != nil {
		return m.ListDonorsFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	if m.GetDonorFunc != nil {
		return m.GetDonorFunc(ctx, id)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) DeleteDonor(ctx context.Context, id string) error {
	if m.DeleteDonorFunc != nil {
		return m.DeleteDonorFunc(ctx, id)
	}
	return errUnexpectedCall
}

func (m *mockStore) CreateRecipient(ctx context.Context, req model.CreateRecipientRequest) (*model.Recipient, error) {
	if m.CreateRecipientFunc != nil {
		return m.CreateRecipientFunc(ctx, req)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListRecipients(ctx context.Context) ([]model.Recipient, error) {
	if m.ListRecipientsFunc != nil {
		return m.ListRecipientsFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) CreateCamp(ctx context.Context, p repository.CampParams) (*model.Camp, error) {
	if m.CreateCampFunc != nil {
		return m.CreateCampFunc(ctx, p)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListCamps(ctx context.Context) ([]model.Camp, error) {
	if m.ListCampsFunc != nil {
		return m.ListCampsFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) GetCamp(ctx context.Context, id string) (*model.Camp, error) {
	if m.GetCampFunc != nil {
		return m.GetCampFunc(ctx, id)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListRegistrationsByCamp(ctx context.Context, campID string) ([]model.CampRegistration, error) {
	if m.ListRegistrationsByCampFunc != nil {
		return m.ListRegistrationsByCampFunc(ctx, campID)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) RecordDonation(ctx context.Context, p repository.DonationParams) (*model.Donation, error) {
	m.RecordDonationCalls++
	if m.RecordDonationFunc != nil {
		return m.RecordDonationFunc(ctx, p)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListDonations(ctx context.Context) ([]model.Donation, error) {
	if m.ListDonationsFunc != nil {
		return m.ListDonationsFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListDonationsByDonor(ctx context.Context, donorID string) ([]model.Donation, error) {
	if m.ListDonationsByDonorFunc != nil {
		return m.ListDonationsByDonorFunc(ctx, donorID)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) FulfillRequest(ctx context.Context, requesterName, bloodGroup string, requestedUnits int) (*model.Request, error) {
	m.FulfillRequestCalls++
	if m.FulfillRequestFunc != nil {
		return m.FulfillRequestFunc(ctx, requesterName, bloodGroup, requestedUnits)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) ListRequests(ctx context.Context) ([]model.Request, error) {
	if m.ListRequestsFunc != nil {
		return m.ListRequestsFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) RegisterForCamp(ctx context.Context, p repository.RegistrationParams) (*model.CampRegistration, error) {
	m.RegisterForCampCalls++
	if m.RegisterForCampFunc != nil {
		return m.RegisterForCampFunc(ctx, p)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) StockSnapshot(ctx context.Context) (map[string]int, error) {
	if m.StockSnapshotFunc != nil {
		return m.StockSnapshotFunc(ctx)
	}
	return map[string]int{}, nil
}

func (m *mockStore) ListStock(ctx context.Context) ([]model.StockEntry, error) {
	if m.ListStockFunc != nil {
		return m.ListStockFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) Summary(ctx context.Context) (*model.Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return nil, errUnexpectedCall
}

func (m *mockStore) Close() error { return nil }
