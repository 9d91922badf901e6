package businessflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/config"
	"github.com/vasooli-labs/vasooli/models"
	apptesting "github.com/vasooli-labs/vasooli/testing"
	"github.com/vasooli-labs/vasooli/utils"
)

// fakeVapiClient records call submissions and can fail specific phones
type fakeVapiClient struct {
	mu         sync.Mutex
	calls      []services.VapiCallRequest
	failPhones map[string]bool
	nextCallID int
}

func newFakeVapiClient() *fakeVapiClient {
	return &fakeVapiClient{failPhones: make(map[string]bool)}
}

func (f *fakeVapiClient) CreateCall(ctx context.Context, req services.VapiCallRequest) (*services.VapiCallResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPhones[req.Phone] {
		return nil, fmt.Errorf("provider rejected %s", req.Phone)
	}
	f.calls = append(f.calls, req)
	f.nextCallID++
	return &services.VapiCallResponse{
		ID:     fmt.Sprintf("call-%d", f.nextCallID),
		Status: "queued",
	}, nil
}

func (f *fakeVapiClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type campaignFlowFixture struct {
	flow       CampaignFlow
	customers  *fakeCustomerRepo
	campaigns  *fakeCampaignRepo
	records    *fakeCallRecordRepo
	files      *fakeSourceFileRepo
	vapiClient *fakeVapiClient
}

func newCampaignFlowFixture(t *testing.T, dialer config.DialerConfig) *campaignFlowFixture {
	t.Helper()

	f := &campaignFlowFixture{
		customers:  newFakeCustomerRepo(),
		campaigns:  newFakeCampaignRepo(),
		records:    newFakeCallRecordRepo(),
		files:      newFakeSourceFileRepo(),
		vapiClient: newFakeVapiClient(),
	}
	f.flow = NewCampaignFlow(
		f.campaigns,
		f.records,
		f.files,
		f.customers,
		f.vapiClient,
		dialer,
		config.OrgConfig{Name: "Vasooli Collections", UPIID: "vasooli@upi", DefaultCountry: "+91"},
		nil,
	)
	return f
}

func (f *campaignFlowFixture) seedStartableCampaign(t *testing.T, debtors int) (*models.Customer, *models.Campaign) {
	t.Helper()

	customer := apptesting.NewTestCustomer(1)
	require.NoError(t, f.customers.Save(context.Background(), customer))

	campaign := apptesting.NewTestCampaign(0, customer.ID)
	require.NoError(t, f.campaigns.Save(context.Background(), campaign))

	// Distinct ids keep the fixture phones distinct
	for i := 0; i < debtors; i++ {
		record := apptesting.NewTestCallRecord(uint(i+1), customer.ID, &campaign.ID)
		require.NoError(t, f.records.Save(context.Background(), record))
	}

	return customer, campaign
}

func TestCreateCampaignValidation(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1})
	metadata := NewClientMetadata("127.0.0.1", "test")

	_, err := f.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		CustomerID: 1,
		Debtors:    []dto.DebtorInput{{Name: "A", Phone: "9876543210", Amount: 100}},
	}, metadata)
	assert.True(t, IsCampaignNameRequired(err))

	_, err = f.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		CustomerID: 1,
		Name:       "Empty drive",
	}, metadata)
	assert.True(t, IsNoDebtorsProvided(err))

	tooMany := make([]dto.DebtorInput, utils.MaxContactsPerCampaign+1)
	for i := range tooMany {
		tooMany[i] = dto.DebtorInput{Name: "A", Phone: "9876543210", Amount: 100}
	}
	_, err = f.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		CustomerID: 1,
		Name:       "Oversized drive",
		Debtors:    tooMany,
	}, metadata)
	assert.True(t, IsTooManyDebtors(err))

	// Rows that are individually invalid are skipped, and a list with no
	// usable rows is rejected outright
	_, err = f.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		CustomerID: 1,
		Name:       "All invalid",
		Debtors: []dto.DebtorInput{
			{Name: "", Phone: "9876543210", Amount: 100},
			{Name: "B", Phone: "", Amount: 100},
			{Name: "C", Phone: "9876543210", Amount: 0},
		},
	}, metadata)
	assert.True(t, IsNoDebtorsProvided(err))
}

func TestCreateCampaignReportsInvalidRows(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1})

	resp, err := f.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		CustomerID: 1,
		Name:       "Quarterly drive",
		Debtors: []dto.DebtorInput{
			{Name: "Asha", Phone: "9876543210", Amount: 100},
			{Name: "Bala", Phone: "9876543211", Amount: 0},
			{Name: "Charu", Phone: "9876543212", Amount: 300},
		},
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	// The bad row is skipped, not silently dropped: it comes back keyed by
	// its 1-based position in the submitted list
	assert.Equal(t, 2, resp.DebtorCount)
	assert.Equal(t, 1, resp.InvalidCount)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 2, resp.Errors[0].Row)
	assert.Contains(t, resp.Errors[0].Error, "amount")

	count, err := f.records.Count(context.Background(), models.CallRecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCreateCampaignDialNowRemapsErrorRows(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1, Interval: time.Millisecond})

	customer := apptesting.NewTestCustomer(1)
	require.NoError(t, f.customers.Save(context.Background(), customer))
	f.vapiClient.failPhones["+919876543212"] = true

	resp, err := f.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		CustomerID: customer.ID,
		Name:       "Same-day drive",
		DialNow:    true,
		Debtors: []dto.DebtorInput{
			{Name: "Asha", Phone: "9876543210", Amount: 100},
			{Name: "Bala", Phone: "", Amount: 200},
			{Name: "Charu", Phone: "9876543212", Amount: 300},
		},
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	assert.Equal(t, models.CampaignStatusActive.String(), resp.Status)
	require.NotNil(t, resp.Submitted)
	assert.Equal(t, 1, *resp.Submitted)
	require.NotNil(t, resp.Failed)
	assert.Equal(t, 1, *resp.Failed)

	// Row 2 failed validation and row 3 was rejected by the provider; both
	// are reported against the submitted list, not the shorter dial list
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 2, resp.Errors[0].Row)
	assert.Contains(t, resp.Errors[0].Error, "phone")
	assert.Equal(t, 3, resp.Errors[1].Row)
	assert.Contains(t, resp.Errors[1].Error, "provider rejected")
}

func TestStartCampaignDialsPendingRecords(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 2, Interval: time.Millisecond})
	customer, campaign := f.seedStartableCampaign(t, 4)

	resp, err := f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Submitted)
	assert.Equal(t, 0, resp.Failed)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, models.CampaignStatusActive.String(), resp.Status)
	assert.Equal(t, 4, f.vapiClient.callCount())

	// Every record is now bound to a provider call id
	undialed, err := f.records.ListPendingUndialed(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, undialed)

	stored, err := f.campaigns.ByID(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, stored.Status)
	assert.NotNil(t, stored.StartedAt)
}

func TestStartCampaignCountsProviderRejections(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 2, Interval: time.Millisecond})
	customer, campaign := f.seedStartableCampaign(t, 3)

	records, err := f.records.ListPendingUndialed(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	f.vapiClient.failPhones[records[0].Phone] = true

	resp, err := f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Submitted)
	assert.Equal(t, 1, resp.Failed)

	// The rejection is reported against its position in the dial list
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 1, resp.Errors[0].Row)
	assert.Contains(t, resp.Errors[0].Error, "provider rejected")

	// The rejected record stays pending and undialed for a later run
	undialed, err := f.records.ListPendingUndialed(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Len(t, undialed, 1)
}

func TestStartCampaignPacesSubmissions(t *testing.T) {
	interval := 20 * time.Millisecond
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 3, Interval: interval})
	customer, campaign := f.seedStartableCampaign(t, 4)

	start := time.Now()
	resp, err := f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, NewClientMetadata("127.0.0.1", "test"))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 4, resp.Submitted)

	// The first token is immediate, the remaining three are spaced one
	// interval apart regardless of worker count
	assert.GreaterOrEqual(t, elapsed, 3*interval)
}

func TestStartCampaignErrors(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1})
	customer, campaign := f.seedStartableCampaign(t, 1)
	metadata := NewClientMetadata("127.0.0.1", "test")

	_, err := f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       "not-a-uuid",
		CustomerID: customer.ID,
	}, metadata)
	assert.True(t, IsCampaignNotFound(err))

	_, err = f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID + 99,
	}, metadata)
	assert.True(t, IsCampaignAccessDenied(err))

	// A completed campaign cannot be restarted
	require.NoError(t, f.campaigns.UpdateStatus(context.Background(), campaign.ID, models.CampaignStatusCompleted))
	_, err = f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, metadata)
	assert.True(t, IsCampaignNotStartable(err))
}

func TestStartCampaignWithNothingToDial(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1})
	customer, campaign := f.seedStartableCampaign(t, 0)

	_, err := f.flow.StartCampaign(context.Background(), &dto.StartCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, NewClientMetadata("127.0.0.1", "test"))
	assert.True(t, IsCampaignHasNoPending(err))
}

func TestPauseCampaign(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1})
	customer, campaign := f.seedStartableCampaign(t, 1)
	metadata := NewClientMetadata("127.0.0.1", "test")

	// Draft campaigns are not pausable
	_, err := f.flow.PauseCampaign(context.Background(), &dto.PauseCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, metadata)
	assert.True(t, IsCampaignNotPausable(err))

	require.NoError(t, f.campaigns.UpdateStatus(context.Background(), campaign.ID, models.CampaignStatusActive))

	resp, err := f.flow.PauseCampaign(context.Background(), &dto.PauseCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	}, metadata)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPaused.String(), resp.Status)
}

func TestGetCampaignIncludesDebtorCount(t *testing.T) {
	f := newCampaignFlowFixture(t, config.DialerConfig{Concurrency: 1})
	customer, campaign := f.seedStartableCampaign(t, 3)

	d, err := f.flow.GetCampaign(context.Background(), &dto.GetCampaignRequest{
		UUID:       campaign.UUID.String(),
		CustomerID: customer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.DebtorCount)
	assert.Equal(t, campaign.UUID.String(), d.UUID)
}
