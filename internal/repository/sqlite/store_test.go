package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/anshikarawat07/lifelink/internal/model"
	"github.com/anshikarawat07/lifelink/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "lifelink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func addDonor(t *testing.T, s *Store, name, group string) *model.Donor {
	t.Helper()
	d, err := s.CreateDonor(context.Background(), model.CreateDonorRequest{Name: name, BloodGroup: group})
	require.NoError(t, err)
	return d
}

func addCamp(t *testing.T, s *Store, name, location string) *model.Camp {
	t.Helper()
	c, err := s.CreateCamp(context.Background(), repository.CampParams{
		Name: name, Location: location, Date: time.Now().UTC(),
	})
	require.NoError(t, err)
	return c
}

func donate(t *testing.T, s *Store, donorID string, amount int, campID string) *model.Donation {
	t.Helper()
	d, err := s.RecordDonation(context.Background(), repository.DonationParams{
		DonorID: donorID, Amount: amount, Date: time.Now().UTC(), CampID: campID,
	})
	require.NoError(t, err)
	return d
}

func stock(t *testing.T, s *Store, group string) int {
	t.Helper()
	snapshot, err := s.StockSnapshot(context.Background())
	require.NoError(t, err)
	return snapshot[group]
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

func TestStockNeverGoesNegative(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "B+")

	donate(t, s, donor.ID, 30, "")
	for i := 0; i < 5; i++ {
		_, err := s.FulfillRequest(ctx, "ward-3", "B+", 25)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stock(t, s, "B+"), 0)
	}
	assert.Equal(t, 0, stock(t, s, "B+"))
}

func TestCreditCreatesRowLazily(t *testing.T) {
	s := newTestStore(t)
	donor := addDonor(t, s, "Asha", "AB-")

	assert.Equal(t, 0, stock(t, s, "AB-"))
	donate(t, s, donor.ID, 450, "")
	assert.Equal(t, 450, stock(t, s, "AB-"))

	entries, err := s.ListStock(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AB-", entries[0].BloodGroup)
	require.NotNil(t, entries[0].ExpiryHint)
	assert.True(t, entries[0].ExpiryHint.After(time.Now()))
}

func TestSnapshotIdempotent(t *testing.T) {
	s := newTestStore(t)
	donor := addDonor(t, s, "Asha", "O-")
	donate(t, s, donor.ID, 120, "")

	first, err := s.StockSnapshot(context.Background())
	require.NoError(t, err)
	second, err := s.StockSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// ─── Fulfillment policy ───────────────────────────────────────────────────────

func TestFulfillExactMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "A+")
	donate(t, s, donor.ID, 200, "")

	req, err := s.FulfillRequest(ctx, "City Hospital", "A+", 200)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFulfilled, req.Status)
	assert.Equal(t, 200, req.FulfilledUnits)
	assert.Equal(t, 0, stock(t, s, "A+"))
}

func TestFulfillPartialDrainsToZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "A+")
	donate(t, s, donor.ID, 150, "")

	req, err := s.FulfillRequest(ctx, "City Hospital", "A+", 400)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyFulfilled, req.Status)
	assert.Equal(t, 150, req.FulfilledUnits)
	assert.Equal(t, 250, req.Outstanding())
	assert.Equal(t, 0, stock(t, s, "A+"))
}

func TestFulfillEmptyStockLeavesPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// The blood group has never been credited; no ledger row exists.
	req, err := s.FulfillRequest(ctx, "City Hospital", "O+", 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, 0, req.FulfilledUnits)
	assert.Equal(t, 0, stock(t, s, "O+"))
}

// The end-to-end scenario: a 450-unit camp donation, then a 500-unit
// request, then a 100-unit request.
func TestDonateThenOverdraw(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Ravi", "O+")
	camp := addCamp(t, s, "C1", "Pune")

	donate(t, s, donor.ID, 450, camp.ID)
	assert.Equal(t, 450, stock(t, s, "O+"))

	got, err := s.GetCamp(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalDonations)
	assert.Equal(t, 450, got.TotalUnits)

	first, err := s.FulfillRequest(ctx, "General Hospital", "O+", 500)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyFulfilled, first.Status)
	assert.Equal(t, 450, first.FulfilledUnits)
	assert.Equal(t, 0, stock(t, s, "O+"))

	second, err := s.FulfillRequest(ctx, "General Hospital", "O+", 100)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, second.Status)
	assert.Equal(t, 0, second.FulfilledUnits)
	assert.Equal(t, 0, stock(t, s, "O+"))
}

func TestConcurrentFulfillmentNeverOverdraws(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "O-")
	donate(t, s, donor.ID, 100, "")

	const callers = 10
	results := make([]*model.Request, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.FulfillRequest(ctx, "ICU", "O-", 15)
		}(i)
	}
	wg.Wait()

	total := 0
	for i, req := range results {
		require.NoError(t, errs[i])
		total += req.FulfilledUnits
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 0, stock(t, s, "O-"))
}

// ─── Donation recording ───────────────────────────────────────────────────────

func TestRecordDonationUnknownDonor(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RecordDonation(context.Background(), repository.DonationParams{
		DonorID: "nope", Amount: 450, Date: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordDonationUnknownCamp(t *testing.T) {
	s := newTestStore(t)
	donor := addDonor(t, s, "Asha", "B-")

	_, err := s.RecordDonation(context.Background(), repository.DonationParams{
		DonorID: donor.ID, Amount: 450, Date: time.Now().UTC(), CampID: "nope",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, stock(t, s, "B-"))
}

func TestRecordDonationRollsBackStockCredit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "B+")

	boom := errors.New("boom")
	s.hookAfterCredit = func() error { return boom }
	_, err := s.RecordDonation(ctx, repository.DonationParams{
		DonorID: donor.ID, Amount: 450, Date: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, boom)

	// Neither the credit nor the record survived the abort.
	assert.Equal(t, 0, stock(t, s, "B+"))
	donations, err := s.ListDonations(ctx)
	require.NoError(t, err)
	assert.Empty(t, donations)

	s.hookAfterCredit = nil
	donate(t, s, donor.ID, 450, "")
	assert.Equal(t, 450, stock(t, s, "B+"))
}

func TestRecordDonationOverridesBloodGroup(t *testing.T) {
	s := newTestStore(t)
	donor := addDonor(t, s, "Asha", "B+")

	d, err := s.RecordDonation(context.Background(), repository.DonationParams{
		DonorID: donor.ID, BloodGroup: "O-", Amount: 100, Date: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "O-", d.BloodGroup)
	assert.Equal(t, 100, stock(t, s, "O-"))
	assert.Equal(t, 0, stock(t, s, "B+"))
}

func TestCampTotalsTrackDonations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "A-")
	camp := addCamp(t, s, "Spring Drive", "Nashik")

	donate(t, s, donor.ID, 300, camp.ID)
	donate(t, s, donor.ID, 200, camp.ID)
	donate(t, s, donor.ID, 50, "") // unattributed, must not count

	got, err := s.GetCamp(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalDonations)
	assert.Equal(t, 500, got.TotalUnits)

	donations, err := s.ListDonations(ctx)
	require.NoError(t, err)
	sum := 0
	for _, d := range donations {
		if d.CampID == camp.ID {
			sum += d.Amount
		}
	}
	assert.Equal(t, got.TotalUnits, sum)
}

func TestDeleteDonorCascadesDonations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "A+")
	donate(t, s, donor.ID, 450, "")

	require.NoError(t, s.DeleteDonor(ctx, donor.ID))

	donations, err := s.ListDonations(ctx)
	require.NoError(t, err)
	assert.Empty(t, donations)
	// The ledger keeps the credited units; referential cleanup does not
	// claw back stock.
	assert.Equal(t, 450, stock(t, s, "A+"))
}

// ─── Camp registration ────────────────────────────────────────────────────────

func TestRegisterForCampRecordsDonation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Ravi", "O+")
	camp := addCamp(t, s, "C1", "Pune")

	reg, err := s.RegisterForCamp(ctx, repository.RegistrationParams{
		CampID: camp.ID, PersonID: donor.ID, DonorName: donor.Name, Amount: 450, Mode: model.ModeOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationConfirmed, reg.Status)

	assert.Equal(t, 450, stock(t, s, "O+"))
	got, err := s.GetCamp(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalDonations)
	assert.Equal(t, 450, got.TotalUnits)

	history, err := s.ListDonationsByDonor(ctx, donor.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, camp.ID, history[0].CampID)
}

func TestDuplicateRegistrationFailsFast(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Ravi", "O+")
	camp := addCamp(t, s, "C1", "Pune")

	params := repository.RegistrationParams{
		CampID: camp.ID, PersonID: donor.ID, DonorName: donor.Name, Amount: 450, Mode: model.ModeOnline,
	}
	_, err := s.RegisterForCamp(ctx, params)
	require.NoError(t, err)

	_, err = s.RegisterForCamp(ctx, params)
	assert.ErrorIs(t, err, repository.ErrDuplicateRegistration)

	// The duplicate produced no side effects: one registration, one
	// donation, one credit.
	regs, err := s.ListRegistrationsByCamp(ctx, camp.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 1)
	assert.Equal(t, 450, stock(t, s, "O+"))
}

func TestRegisterUnknownPersonDefaultsToUnknownGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	camp := addCamp(t, s, "C1", "Pune")

	_, err := s.RegisterForCamp(ctx, repository.RegistrationParams{
		CampID: camp.ID, DonorName: "Stranger", Amount: 350, Mode: model.ModeAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, 350, stock(t, s, model.UnknownBloodGroup))
}

func TestWalkInResolvesDonorByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Meera", "AB+")
	camp := addCamp(t, s, "C1", "Pune")

	_, err := s.RegisterForCamp(ctx, repository.RegistrationParams{
		CampID: camp.ID, DonorName: "Meera", Amount: 300, Mode: model.ModeAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, 300, stock(t, s, "AB+"))

	history, err := s.ListDonationsByDonor(ctx, donor.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTwoWalkInsAllowedForSameCamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	camp := addCamp(t, s, "C1", "Pune")

	for _, name := range []string{"A", "B"} {
		_, err := s.RegisterForCamp(ctx, repository.RegistrationParams{
			CampID: camp.ID, DonorName: name, Amount: 100, Mode: model.ModeAdmin,
		})
		require.NoError(t, err)
	}
	regs, err := s.ListRegistrationsByCamp(ctx, camp.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 2)
}

func TestRegisterForUnknownCamp(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RegisterForCamp(context.Background(), repository.RegistrationParams{
		CampID: "nope", DonorName: "Ravi", Amount: 450, Mode: model.ModeOnline,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// ─── Summary ──────────────────────────────────────────────────────────────────

func TestSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := addDonor(t, s, "Asha", "A+")
	donate(t, s, donor.ID, 300, "")
	_, err := s.CreateRecipient(ctx, model.CreateRecipientRequest{Name: "Kiran", BloodGroup: "A+"})
	require.NoError(t, err)

	_, err = s.FulfillRequest(ctx, "Kiran", "A+", 100)
	require.NoError(t, err)
	_, err = s.FulfillRequest(ctx, "Kiran", "O+", 100)
	require.NoError(t, err)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, sum.TotalUnits)
	assert.Equal(t, 1, sum.Donors)
	assert.Equal(t, 1, sum.Recipients)
	assert.Equal(t, map[string]int{
		model.StatusFulfilled: 1,
		model.StatusPending:   1,
	}, sum.RequestsByStatus)
}
