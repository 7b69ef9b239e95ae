package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/overtime"
	"fieldstock/internal/domain/technician"
	"fieldstock/internal/domain/workorder"
	"fieldstock/internal/sync/feed"
	"fieldstock/pkg/logger"
)

// --- fakes ---

type fakeFeed struct {
	orders []feed.RawOrder
	err    error
}

func (f *fakeFeed) FetchAll(_ context.Context) ([]feed.RawOrder, error) {
	return f.orders, f.err
}

type fakeOrderRepo struct {
	nextID      int64
	byExternal  map[string]*workorder.WorkOrder
	assignments map[int64][]int64
	updates     int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byExternal:  make(map[string]*workorder.WorkOrder),
		assignments: make(map[int64][]int64),
	}
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*workorder.WorkOrder, error) {
	for _, o := range f.byExternal {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, apperror.NewNotFound("work order", id)
}

func (f *fakeOrderRepo) FindByExternalID(_ context.Context, externalID string) (*workorder.WorkOrder, error) {
	if o, ok := f.byExternal[externalID]; ok {
		return o, nil
	}
	return nil, apperror.NewNotFound("work order", externalID)
}

func (f *fakeOrderRepo) Create(_ context.Context, o *workorder.WorkOrder) error {
	f.nextID++
	o.ID = f.nextID
	f.byExternal[o.ExternalID] = o
	return nil
}

func (f *fakeOrderRepo) Update(_ context.Context, o *workorder.WorkOrder) error {
	f.byExternal[o.ExternalID] = o
	return nil
}

func (f *fakeOrderRepo) UpdateInterval(_ context.Context, id int64, start, end time.Time) error {
	for _, o := range f.byExternal {
		if o.ID == id {
			o.StartedAt = &start
			o.EndedAt = &end
			f.updates++
			return nil
		}
	}
	return apperror.NewNotFound("work order", id)
}

func (f *fakeOrderRepo) EnsureAssignments(_ context.Context, orderID int64, techIDs []int64) error {
	have := map[int64]struct{}{}
	for _, id := range f.assignments[orderID] {
		have[id] = struct{}{}
	}
	for _, id := range techIDs {
		if _, ok := have[id]; !ok {
			f.assignments[orderID] = append(f.assignments[orderID], id)
		}
	}
	return nil
}

func (f *fakeOrderRepo) ReplaceAssignments(_ context.Context, orderID int64, techIDs []int64) error {
	f.assignments[orderID] = append([]int64(nil), techIDs...)
	return nil
}

func (f *fakeOrderRepo) AssignedTechnicianIDs(_ context.Context, orderID int64) ([]int64, error) {
	return f.assignments[orderID], nil
}

type fakeRecordRepo struct {
	rows   []overtime.Record
	nextID int64
}

func (f *fakeRecordRepo) ExistsForPair(_ context.Context, orderID, techID int64) (bool, error) {
	for _, r := range f.rows {
		if r.WorkOrderID == orderID && r.TechnicianID == techID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRecordRepo) Create(_ context.Context, r *overtime.Record) error {
	f.nextID++
	r.ID = f.nextID
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeRecordRepo) DeleteByOrder(_ context.Context, orderID int64) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.WorkOrderID != orderID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeRecordRepo) ListByOrder(_ context.Context, orderID int64) ([]overtime.Record, error) {
	var out []overtime.Record
	for _, r := range f.rows {
		if r.WorkOrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByPeriod(_ context.Context, _, _ time.Time, _ *int64) ([]overtime.Record, error) {
	return f.rows, nil
}

type fakeTechRepo struct {
	rows   []*technician.Technician
	nextID int64
}

func (f *fakeTechRepo) GetByID(_ context.Context, id int64) (*technician.Technician, error) {
	for _, t := range f.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("technician", id)
}

func (f *fakeTechRepo) FindByEmail(_ context.Context, email string) (*technician.Technician, error) {
	for _, t := range f.rows {
		if t.Email != nil && *t.Email == email {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("technician", email)
}

func (f *fakeTechRepo) FindByBadge(_ context.Context, badge string) (*technician.Technician, error) {
	for _, t := range f.rows {
		if t.Badge == badge {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("technician", badge)
}

func (f *fakeTechRepo) BadgeExists(_ context.Context, badge string) (bool, error) {
	for _, t := range f.rows {
		if t.Badge == badge {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTechRepo) Create(_ context.Context, t *technician.Technician) error {
	f.nextID++
	t.ID = f.nextID
	f.rows = append(f.rows, t)
	return nil
}

func (f *fakeTechRepo) Update(_ context.Context, t *technician.Technician) error {
	for i, row := range f.rows {
		if row.ID == t.ID {
			f.rows[i] = t
			return nil
		}
	}
	return apperror.NewNotFound("technician", t.ID)
}

func (f *fakeTechRepo) List(_ context.Context, _ bool) ([]technician.Technician, error) {
	out := make([]technician.Technician, 0, len(f.rows))
	for _, t := range f.rows {
		out = append(out, *t)
	}
	return out, nil
}

type fakeHolidayRepo struct{ days []holiday.Holiday }

func (f *fakeHolidayRepo) List(_ context.Context) ([]holiday.Holiday, error) { return f.days, nil }
func (f *fakeHolidayRepo) Create(_ context.Context, _ *holiday.Holiday) error {
	return nil
}
func (f *fakeHolidayRepo) DeleteByDay(_ context.Context, _ time.Time) error { return nil }

type fakeArchive struct {
	payloads [][]byte
	counts   []int
}

func (f *fakeArchive) Save(_ context.Context, payload []byte, orderCount int) error {
	f.payloads = append(f.payloads, payload)
	f.counts = append(f.counts, orderCount)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---

type fixture struct {
	feed    *fakeFeed
	orders  *fakeOrderRepo
	records *fakeRecordRepo
	techs   *fakeTechRepo
	archive *fakeArchive
	orch    *Orchestrator
}

func newFixture(orders ...feed.RawOrder) *fixture {
	f := &fixture{
		feed:    &fakeFeed{orders: orders},
		orders:  newFakeOrderRepo(),
		records: &fakeRecordRepo{},
		techs:   &fakeTechRepo{},
		archive: &fakeArchive{},
	}
	log := logger.Default()
	f.orch = NewOrchestrator(
		f.feed,
		f.orders,
		f.records,
		technician.NewResolver(f.techs, log),
		holiday.NewService(&fakeHolidayRepo{}),
		passthroughTx{},
		f.archive,
		log,
	)
	return f
}

func intPtr(v int) *int { return &v }

func finalizedOrder(id string, techs ...feed.RawTechnician) feed.RawOrder {
	return feed.RawOrder{
		ID:          id,
		Number:      intPtr(7),
		Date:        "2025-05-05",
		StartedAt:   "2025-05-05T08:00",
		EndedAt:     "2025-05-05T17:00",
		Description: "pump overhaul",
		Status:      workorder.StatusFinalized,
		Technicians: techs,
	}
}

var (
	jane = feed.RawTechnician{Account: "jdoe@example.com", DisplayName: "Jane Doe", AccountType: intPtr(1)}
	luis = feed.RawTechnician{Account: "lperez@example.com", DisplayName: "Luis Perez"}
)

func TestRunOnce_CreatesOrderAndRecords(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane, luis))

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NewOrders)
	assert.Equal(t, 0, stats.UpdatedOrders)
	assert.Equal(t, 2, stats.NewTechnicians)
	assert.Equal(t, 2, stats.OvertimeComputed)
	assert.Equal(t, 0, stats.Errors)

	order, err := f.orders.FindByExternalID(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "pump overhaul", order.Description)
	assert.Len(t, f.orders.assignments[order.ID], 2)

	require.Len(t, f.records.rows, 2)
	rec := f.records.rows[0]
	assert.InDelta(t, 9.0, rec.NormalHours, 0.001)
	assert.Zero(t, rec.ExtraNormalHours)
	assert.True(t, rec.AutoComputed)
}

func TestRunOnce_SecondPassIsIdempotent(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane))

	_, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.NewOrders)
	assert.Zero(t, stats.UpdatedOrders)
	assert.Zero(t, stats.NewTechnicians)
	assert.Zero(t, stats.OvertimeComputed)
	assert.Len(t, f.records.rows, 1)
}

func TestRunOnce_SkipsNonFinalized(t *testing.T) {
	pending := finalizedOrder("ext-2", jane)
	pending.Status = workorder.StatusPending
	f := newFixture(pending)

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.NewOrders)
	assert.Empty(t, f.orders.byExternal)
}

func TestRunOnce_RecomputesWhenIntervalChanges(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane))
	_, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	// The order is re-finalized with a later end.
	f.feed.orders[0].EndedAt = "2025-05-05T19:00"

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UpdatedOrders)
	assert.Equal(t, 1, stats.OvertimeComputed)
	assert.Equal(t, 1, f.orders.updates)

	require.Len(t, f.records.rows, 1)
	rec := f.records.rows[0]
	assert.InDelta(t, 9.0, rec.NormalHours, 0.001)
	assert.InDelta(t, 2.0, rec.ExtraNormalHours, 0.001)
}

func TestRunOnce_AttachesLateTechnicianWithoutUpdate(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane))
	_, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	// Same interval, one more technician on the document.
	f.feed.orders[0].Technicians = append(f.feed.orders[0].Technicians, luis)

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.UpdatedOrders)
	assert.Equal(t, 1, stats.NewTechnicians)
	assert.Equal(t, 1, stats.OvertimeComputed)
	assert.Len(t, f.records.rows, 2)

	order, _ := f.orders.FindByExternalID(context.Background(), "ext-1")
	assert.Len(t, f.orders.assignments[order.ID], 2)
}

func TestRunOnce_CountsMalformedOrders(t *testing.T) {
	noEnd := finalizedOrder("ext-bad", jane)
	noEnd.EndedAt = ""
	noTechs := finalizedOrder("ext-lonely")
	badTime := finalizedOrder("ext-garbled", jane)
	badTime.StartedAt = "yesterdayish"

	f := newFixture(noEnd, noTechs, badTime, finalizedOrder("ext-ok", jane))

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Errors)
	assert.Equal(t, 1, stats.NewOrders)
	assert.Len(t, f.orders.byExternal, 1)
}

func TestRunOnce_ProcessesPartialBatchOnFetchError(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane))
	f.feed.err = errors.New("connection reset")

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.NewOrders)
}

func TestRunOnce_ArchivesBatch(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane))

	_, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, f.archive.payloads, 1)
	assert.Equal(t, []int{1}, f.archive.counts)
	assert.Contains(t, string(f.archive.payloads[0]), "ext-1")
}

func TestRunOnce_ReusesKnownTechnician(t *testing.T) {
	f := newFixture(finalizedOrder("ext-1", jane), finalizedOrder("ext-2", jane))

	stats, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NewOrders)
	assert.Equal(t, 1, stats.NewTechnicians)
	assert.Len(t, f.techs.rows, 1)
}
