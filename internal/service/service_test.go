package service

import (
	"context"
	"testing"
	"time"

	"github.com/anshikarawat07/lifelink/internal/metrics"
	"github.com/anshikarawat07/lifelink/internal/model"
	"github.com/anshikarawat07/lifelink/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store repository.Store) (*BloodBank, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return New(store, m), m
}

// ─── RecordDonation ───────────────────────────────────────────────────────────

func TestRecordDonationValidation(t *testing.T) {
	store := &mockStore{}
	svc, _ := newService(store)
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.RecordDonationRequest
	}{
		{"missing donor", model.RecordDonationRequest{Amount: 450}},
		{"zero amount", model.RecordDonationRequest{DonorID: "d1"}},
		{"negative amount", model.RecordDonationRequest{DonorID: "d1", Amount: -5}},
		{"oversized amount", model.RecordDonationRequest{DonorID: "d1", Amount: 10_001}},
		{"bad date", model.RecordDonationRequest{DonorID: "d1", Amount: 450, Date: "31-12-2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordDonation(ctx, tc.req)
			assert.Error(t, err)
		})
	}
	// Validation rejects before any store mutation.
	assert.Equal(t, 0, store.RecordDonationCalls)
}

func TestRecordDonationNormalizesGroupAndDefaultsDate(t *testing.T) {
	var got repository.DonationParams
	store := &mockStore{
		RecordDonationFunc: func(ctx context.Context, p repository.DonationParams) (*model.Donation, error) {
			got = p
			return &model.Donation{ID: "dn1", BloodGroup: p.BloodGroup, Amount: p.Amount}, nil
		},
	}
	svc, m := newService(store)

	_, err := svc.RecordDonation(context.Background(), model.RecordDonationRequest{
		DonorID: " d1 ", BloodGroup: "o+", Amount: 450,
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", got.DonorID)
	assert.Equal(t, "O+", got.BloodGroup)
	assert.WithinDuration(t, time.Now().UTC(), got.Date, time.Minute)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DonationsTotal))
	assert.Equal(t, 450.0, testutil.ToFloat64(m.DonatedUnits))
}

func TestRecordDonationUnknownDonorPassesThrough(t *testing.T) {
	store := &mockStore{
		RecordDonationFunc: func(ctx context.Context, p repository.DonationParams) (*model.Donation, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc, m := newService(store)

	_, err := svc.RecordDonation(context.Background(), model.RecordDonationRequest{DonorID: "d1", Amount: 450})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DonationsTotal))
}

// ─── FulfillRequest ───────────────────────────────────────────────────────────

func TestFulfillRequestValidation(t *testing.T) {
	store := &mockStore{}
	svc, _ := newService(store)
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.CreateBloodRequest
	}{
		{"missing requester", model.CreateBloodRequest{BloodGroup: "A+", RequestedUnits: 10}},
		{"missing group", model.CreateBloodRequest{RequesterName: "ward", RequestedUnits: 10}},
		{"zero units", model.CreateBloodRequest{RequesterName: "ward", BloodGroup: "A+"}},
		{"negative units", model.CreateBloodRequest{RequesterName: "ward", BloodGroup: "A+", RequestedUnits: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FulfillRequest(ctx, tc.req)
			assert.Error(t, err)
		})
	}
	assert.Equal(t, 0, store.FulfillRequestCalls)
}

func TestFulfillRequestCountsByStatus(t *testing.T) {
	store := &mockStore{
		FulfillRequestFunc: func(ctx context.Context, requester, group string, units int) (*model.Request, error) {
			return &model.Request{
				RequesterName: requester, BloodGroup: group,
				RequestedUnits: units, FulfilledUnits: 0, Status: model.StatusPending,
			}, nil
		},
	}
	svc, m := newService(store)

	req, err := svc.FulfillRequest(context.Background(), model.CreateBloodRequest{
		RequesterName: "City Hospital", BloodGroup: "ab-", RequestedUnits: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "AB-", req.BloodGroup)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(model.StatusPending)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(model.StatusFulfilled)))
}

// ─── RegisterForCamp ──────────────────────────────────────────────────────────

func TestRegisterForCampValidation(t *testing.T) {
	store := &mockStore{}
	svc, _ := newService(store)
	ctx := context.Background()

	cases := []struct {
		name   string
		campID string
		req    model.CampRegisterRequest
	}{
		{"missing camp", "", model.CampRegisterRequest{DonorName: "Ravi", Amount: 450}},
		{"missing name", "c1", model.CampRegisterRequest{Amount: 450}},
		{"zero amount", "c1", model.CampRegisterRequest{DonorName: "Ravi"}},
		{"bad mode", "c1", model.CampRegisterRequest{DonorName: "Ravi", Amount: 450, Mode: "phone"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterForCamp(ctx, tc.campID, tc.req)
			assert.Error(t, err)
		})
	}
	assert.Equal(t, 0, store.RegisterForCampCalls)
}

func TestRegisterForCampDefaultsToOnlineMode(t *testing.T) {
	var got repository.RegistrationParams
	store := &mockStore{
		RegisterForCampFunc: func(ctx context.Context, p repository.RegistrationParams) (*model.CampRegistration, error) {
			got = p
			return &model.CampRegistration{ID: "r1", CampID: p.CampID, Mode: p.Mode}, nil
		},
	}
	svc, m := newService(store)

	_, err := svc.RegisterForCamp(context.Background(), "c1", model.CampRegisterRequest{
		DonorName: "Ravi", Amount: 450,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ModeOnline, got.Mode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues(model.ModeOnline)))
}

func TestRegisterForCampSurfacesDomainErrors(t *testing.T) {
	store := &mockStore{
		RegisterForCampFunc: func(ctx context.Context, p repository.RegistrationParams) (*model.CampRegistration, error) {
			return nil, repository.ErrDuplicateRegistration
		},
	}
	svc, _ := newService(store)

	_, err := svc.RegisterForCamp(context.Background(), "c1", model.CampRegisterRequest{
		DonorName: "Ravi", Amount: 450,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateRegistration)
}

// ─── Directory validation ─────────────────────────────────────────────────────

func TestCreateDonorValidation(t *testing.T) {
	svc, _ := newService(&mockStore{})
	ctx := context.Background()

	_, err := svc.CreateDonor(ctx, model.CreateDonorRequest{BloodGroup: "A+"})
	assert.Error(t, err)
	_, err = svc.CreateDonor(ctx, model.CreateDonorRequest{Name: "Asha"})
	assert.Error(t, err)
}

func TestCreateCampRejectsBadDate(t *testing.T) {
	svc, _ := newService(&mockStore{})
	_, err := svc.CreateCamp(context.Background(), model.CreateCampRequest{
		Name: "C1", Location: "Pune", Date: "next week",
	})
	assert.Error(t, err)
}

func TestCreateCampParsesDate(t *testing.T) {
	var got repository.CampParams
	store := &mockStore{
		CreateCampFunc: func(ctx context.Context, p repository.CampParams) (*model.Camp, error) {
			got = p
			return &model.Camp{ID: "c1", Name: p.Name}, nil
		},
	}
	svc, _ := newService(store)

	_, err := svc.CreateCamp(context.Background(), model.CreateCampRequest{
		Name: "C1", Location: "Pune", Date: "2026-09-15",
	})
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Date.Year())
	assert.Equal(t, time.September, got.Date.Month())
}

// ─── Stock gauge ──────────────────────────────────────────────────────────────

func TestRefreshStockGauge(t *testing.T) {
	store := &mockStore{
		StockSnapshotFunc: func(ctx context.Context) (map[string]int, error) {
			return map[string]int{"O+": 450, "A-": 30}, nil
		},
	}
	svc, m := newService(store)

	svc.RefreshStockGauge(context.Background())
	assert.Equal(t, 450.0, testutil.ToFloat64(m.StockUnits.WithLabelValues("O+")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.StockUnits.WithLabelValues("A-")))
}
