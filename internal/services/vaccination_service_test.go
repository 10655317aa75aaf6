package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pigfarm-backend/internal/models"
	"pigfarm-backend/internal/timeutil"
)

type MockTemplateStore struct {
	mock.Mock
}

func (m *MockTemplateStore) List(ctx context.Context) ([]models.VaccinationTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VaccinationTemplate), args.Error(1)
}

func (m *MockTemplateStore) Get(ctx context.Context, id string) (*models.VaccinationTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaccinationTemplate), args.Error(1)
}

type MockPenStore struct {
	mock.Mock
}

func (m *MockPenStore) ListActiveWithBatch(ctx context.Context) ([]models.ActivePen, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivePen), args.Error(1)
}

func (m *MockPenStore) BatchFor(ctx context.Context, penID string) (*models.PenBatch, error) {
	args := m.Called(ctx, penID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PenBatch), args.Error(1)
}

type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) ListBetween(ctx context.Context, from, to time.Time) ([]models.VaccinationSchedule, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VaccinationSchedule), args.Error(1)
}

func (m *MockScheduleStore) ListOnDay(ctx context.Context, day time.Time) ([]models.VaccinationSchedule, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VaccinationSchedule), args.Error(1)
}

func (m *MockScheduleStore) ListCompletedForActivePens(ctx context.Context) ([]models.CompletedShot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CompletedShot), args.Error(1)
}

func (m *MockScheduleStore) FindByPenVaccineStage(ctx context.Context, penID, vaccineID string, stage int) (*models.VaccinationSchedule, error) {
	args := m.Called(ctx, penID, vaccineID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaccinationSchedule), args.Error(1)
}

func (m *MockScheduleStore) Get(ctx context.Context, id string) (*models.VaccinationSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaccinationSchedule), args.Error(1)
}

func (m *MockScheduleStore) MarkCompleted(ctx context.Context, ids []string, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScheduleStore) Create(ctx context.Context, in *models.NewSchedule) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockScheduleStore) Update(ctx context.Context, id string, upd *models.ScheduleUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockScheduleStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScheduleStore) RevertCompleted(ctx context.Context, id string) (*models.RevertResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevertResult), args.Error(1)
}

type MockVaccineStore struct {
	mock.Mock
}

func (m *MockVaccineStore) List(ctx context.Context) ([]models.Vaccine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vaccine), args.Error(1)
}

func (m *MockVaccineStore) ListReference(ctx context.Context) ([]models.Vaccine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vaccine), args.Error(1)
}

func (m *MockVaccineStore) FindByName(ctx context.Context, name string) (*models.Vaccine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vaccine), args.Error(1)
}

func (m *MockVaccineStore) Create(ctx context.Context, name string) (*models.Vaccine, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vaccine), args.Error(1)
}

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) MarkAdministered(ctx context.Context, batchID, vaccineID string) error {
	args := m.Called(ctx, batchID, vaccineID)
	return args.Error(0)
}

func testDay(value string) time.Time {
	t, err := timeutil.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService() (*VaccinationService, *MockTemplateStore, *MockPenStore, *MockScheduleStore, *MockVaccineStore, *MockLedgerStore) {
	templates := new(MockTemplateStore)
	pens := new(MockPenStore)
	schedules := new(MockScheduleStore)
	vaccines := new(MockVaccineStore)
	ledger := new(MockLedgerStore)

	svc := NewVaccinationService(templates, pens, schedules, vaccines, ledger)
	svc.Now = func() time.Time { return testDay("2025-03-10") }
	return svc, templates, pens, schedules, vaccines, ledger
}

func activePen(arrival string) models.ActivePen {
	return models.ActivePen{
		ID:   "pen-1",
		Name: "A1",
		Batch: &models.PenBatch{
			ID:          "batch-1",
			ArrivalDate: testDay(arrival),
			HasArrival:  true,
		},
	}
}

func fmdTemplate() models.VaccinationTemplate {
	return models.VaccinationTemplate{
		ID:          "tmpl-1",
		VaccineID:   "vac-fmd",
		VaccineName: "FMD",
		Stage:       1,
		DaysOld:     15,
		Dosage:      "2ml",
	}
}

func TestGetCalendar_MergesActualsAndForecasts(t *testing.T) {
	svc, templates, pens, schedules, _, _ := newTestService()
	ctx := context.Background()

	schedules.On("ListBetween", ctx, mock.Anything, mock.Anything).Return([]models.VaccinationSchedule{{
		ID:            "sched-1",
		PenID:         "pen-1",
		PenName:       "A1",
		ScheduledDate: testDay("2025-03-05"),
		Status:        models.StatusPending,
		Details:       []models.VaccinationScheduleDetail{{VaccineID: "vac-csf", VaccineName: "CSF", Stage: 1}},
	}}, nil)
	templates.On("List", ctx).Return([]models.VaccinationTemplate{fmdTemplate()}, nil)
	// Arrival 2025-03-01 + 15 days old puts the FMD forecast on 2025-03-16.
	pens.On("ListActiveWithBatch", ctx).Return([]models.ActivePen{activePen("2025-03-01")}, nil)
	schedules.On("ListCompletedForActivePens", ctx).Return([]models.CompletedShot{}, nil)

	calendar, err := svc.GetCalendar(ctx, 3, 2025)
	require.NoError(t, err)

	require.Len(t, calendar["2025-03-05"], 1)
	assert.Equal(t, models.TypeActual, calendar["2025-03-05"][0].Type)
	assert.Equal(t, models.ColorPending, calendar["2025-03-05"][0].Color)

	require.Len(t, calendar["2025-03-16"], 1)
	forecastItem := calendar["2025-03-16"][0]
	assert.Equal(t, models.TypeForecast, forecastItem.Type)
	assert.Equal(t, models.ColorForecast, forecastItem.Color)
	assert.Equal(t, "virtual-tmpl-1-2025-03-16", forecastItem.ID)
}

func TestGetCalendar_ActualSuppressesSameNameForecastOnSameDay(t *testing.T) {
	svc, templates, pens, schedules, _, _ := newTestService()
	ctx := context.Background()

	// Arrival 2025-02-23 + 15 days old lands the forecast on 2025-03-10,
	// the same day an FMD schedule already exists.
	schedules.On("ListBetween", ctx, mock.Anything, mock.Anything).Return([]models.VaccinationSchedule{{
		ID:            "sched-1",
		PenID:         "pen-1",
		PenName:       "A1",
		ScheduledDate: testDay("2025-03-10"),
		Status:        models.StatusCompleted,
		Details:       []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
	}}, nil)
	templates.On("List", ctx).Return([]models.VaccinationTemplate{fmdTemplate()}, nil)
	pens.On("ListActiveWithBatch", ctx).Return([]models.ActivePen{activePen("2025-02-23")}, nil)
	schedules.On("ListCompletedForActivePens", ctx).Return([]models.CompletedShot{}, nil)

	calendar, err := svc.GetCalendar(ctx, 3, 2025)
	require.NoError(t, err)

	require.Len(t, calendar["2025-03-10"], 1)
	assert.Equal(t, models.TypeActual, calendar["2025-03-10"][0].Type)
	assert.Equal(t, models.ColorCompleted, calendar["2025-03-10"][0].Color)
}

func TestGetCalendar_SameVaccineOnTwoPensKeepsBothMarkers(t *testing.T) {
	svc, templates, pens, schedules, _, _ := newTestService()
	ctx := context.Background()

	schedules.On("ListBetween", ctx, mock.Anything, mock.Anything).Return([]models.VaccinationSchedule{
		{
			ID: "sched-1", PenID: "pen-1", PenName: "A1",
			ScheduledDate: testDay("2025-03-05"), Status: models.StatusPending,
			Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
		},
		{
			ID: "sched-2", PenID: "pen-2", PenName: "A2",
			ScheduledDate: testDay("2025-03-05"), Status: models.StatusCompleted,
			Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
		},
	}, nil)
	templates.On("List", ctx).Return([]models.VaccinationTemplate{}, nil)
	pens.On("ListActiveWithBatch", ctx).Return([]models.ActivePen{}, nil)
	schedules.On("ListCompletedForActivePens", ctx).Return([]models.CompletedShot{}, nil)

	calendar, err := svc.GetCalendar(ctx, 3, 2025)
	require.NoError(t, err)
	assert.Len(t, calendar["2025-03-05"], 2)
}

func TestGetCalendar_RejectsBadMonth(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.GetCalendar(context.Background(), 13, 2025)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetDailyDetails_GroupsByVaccineStageAndKind(t *testing.T) {
	svc, templates, pens, schedules, _, _ := newTestService()
	ctx := context.Background()
	day := testDay("2025-03-16")

	schedules.On("ListOnDay", ctx, day).Return([]models.VaccinationSchedule{
		{
			ID: "sched-1", PenID: "pen-2", PenName: "B1",
			ScheduledDate: day, Status: models.StatusPending,
			Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
		},
		{
			ID: "sched-2", PenID: "pen-3", PenName: "B1",
			ScheduledDate: day, Status: models.StatusPending,
			Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
		},
	}, nil)
	templates.On("List", ctx).Return([]models.VaccinationTemplate{fmdTemplate()}, nil)
	pens.On("ListActiveWithBatch", ctx).Return([]models.ActivePen{activePen("2025-03-01")}, nil)
	schedules.On("ListCompletedForActivePens", ctx).Return([]models.CompletedShot{}, nil)

	groups, err := svc.GetDailyDetails(ctx, day)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Two schedules on pens sharing a name collapse to one entry.
	actual := groups[0]
	assert.Equal(t, "FMD", actual.VaccineName)
	assert.Equal(t, 1, actual.TotalPens)
	assert.True(t, actual.Pens[0].IsReal)

	// The forecast for pen A1 lands in its own group of the same vaccine.
	forecastGroup := groups[1]
	assert.Equal(t, "FMD", forecastGroup.VaccineName)
	assert.Equal(t, 1, forecastGroup.TotalPens)
	assert.False(t, forecastGroup.Pens[0].IsReal)
	assert.Equal(t, "tmpl-1", forecastGroup.Pens[0].TemplateID)
}

func TestGetDailyDetails_PendingAndCompletedSplitIntoSeparateGroups(t *testing.T) {
	svc, templates, pens, schedules, _, _ := newTestService()
	ctx := context.Background()
	day := testDay("2025-03-05")

	schedules.On("ListOnDay", ctx, day).Return([]models.VaccinationSchedule{
		{
			ID: "sched-1", PenID: "pen-1", PenName: "A1",
			ScheduledDate: day, Status: models.StatusPending,
			Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
		},
		{
			ID: "sched-2", PenID: "pen-2", PenName: "A2",
			ScheduledDate: day, Status: models.StatusCompleted,
			Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
		},
	}, nil)
	templates.On("List", ctx).Return([]models.VaccinationTemplate{}, nil)
	pens.On("ListActiveWithBatch", ctx).Return([]models.ActivePen{}, nil)
	schedules.On("ListCompletedForActivePens", ctx).Return([]models.CompletedShot{}, nil)

	groups, err := svc.GetDailyDetails(ctx, day)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, models.StatusPending, groups[0].Pens[0].Status)
	assert.Equal(t, models.StatusCompleted, groups[1].Pens[0].Status)
}

func TestGetDailyDetails_SameDayScheduleSuppressesForecast(t *testing.T) {
	svc, templates, pens, schedules, _, _ := newTestService()
	ctx := context.Background()
	day := testDay("2025-03-16")

	// Pen A1's forecast for FMD stage 1 falls on the same day as its
	// pending schedule for the same shot; only the schedule may appear.
	schedules.On("ListOnDay", ctx, day).Return([]models.VaccinationSchedule{{
		ID: "sched-1", PenID: "pen-1", PenName: "A1",
		ScheduledDate: day, Status: models.StatusPending,
		Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", VaccineName: "FMD", Stage: 1}},
	}}, nil)
	templates.On("List", ctx).Return([]models.VaccinationTemplate{fmdTemplate()}, nil)
	pens.On("ListActiveWithBatch", ctx).Return([]models.ActivePen{activePen("2025-03-01")}, nil)
	schedules.On("ListCompletedForActivePens", ctx).Return([]models.CompletedShot{}, nil)

	groups, err := svc.GetDailyDetails(ctx, day)
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].TotalPens)
	assert.True(t, groups[0].Pens[0].IsReal)
}

func TestMarkComplete_RealItemUpdatesStatusOnly(t *testing.T) {
	svc, _, pens, schedules, _, ledger := newTestService()
	ctx := context.Background()

	schedules.On("Get", ctx, "sched-1").Return(&models.VaccinationSchedule{
		ID: "sched-1", PenID: "pen-1",
		Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", Stage: 1}},
	}, nil)
	schedules.On("MarkCompleted", ctx, []string{"sched-1"}, mock.Anything).Return(int64(1), nil)

	result, err := svc.MarkComplete(ctx, []models.ActionItem{{IsReal: true, ScheduleID: "sched-1"}})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Created)

	// Completing an existing schedule never touches the batch ledger;
	// only forecast-origin completions and batch import write it.
	pens.AssertNotCalled(t, "BatchFor", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "MarkAdministered", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkComplete_ForecastReusesExistingPendingSchedule(t *testing.T) {
	svc, templates, pens, schedules, _, ledger := newTestService()
	ctx := context.Background()

	tmpl := fmdTemplate()
	templates.On("Get", ctx, "tmpl-1").Return(&tmpl, nil)
	schedules.On("FindByPenVaccineStage", ctx, "pen-1", "vac-fmd", 1).Return(&models.VaccinationSchedule{
		ID: "sched-old", PenID: "pen-1",
	}, nil)
	schedules.On("MarkCompleted", ctx, []string{"sched-old"}, mock.Anything).Return(int64(1), nil)
	pens.On("BatchFor", ctx, "pen-1").Return(&models.PenBatch{ID: "batch-1"}, nil)
	ledger.On("MarkAdministered", ctx, "batch-1", "vac-fmd").Return(nil)

	result, err := svc.MarkComplete(ctx, []models.ActionItem{{TemplateID: "tmpl-1", PenID: "pen-1"}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Created)
	schedules.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMarkComplete_ForecastMaterializesNewSchedule(t *testing.T) {
	svc, templates, pens, schedules, _, ledger := newTestService()
	ctx := context.Background()

	tmpl := fmdTemplate()
	templates.On("Get", ctx, "tmpl-1").Return(&tmpl, nil)
	schedules.On("FindByPenVaccineStage", ctx, "pen-1", "vac-fmd", 1).Return(nil, nil)
	schedules.On("Create", ctx, mock.MatchedBy(func(in *models.NewSchedule) bool {
		return in.PenID == "pen-1" &&
			in.Status == models.StatusCompleted &&
			in.VaccineID == "vac-fmd" &&
			in.Stage == 1 &&
			in.Dosage == 2
	})).Return("sched-new", nil)
	pens.On("BatchFor", ctx, "pen-1").Return(&models.PenBatch{ID: "batch-1"}, nil)
	ledger.On("MarkAdministered", ctx, "batch-1", "vac-fmd").Return(nil)

	result, err := svc.MarkComplete(ctx, []models.ActionItem{{TemplateID: "tmpl-1", PenID: "pen-1"}})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, "sched-new", result.Items[0].ScheduleID)
}

func TestMarkComplete_PenWithoutBatchSkipsLedger(t *testing.T) {
	svc, templates, pens, schedules, _, ledger := newTestService()
	ctx := context.Background()

	tmpl := fmdTemplate()
	templates.On("Get", ctx, "tmpl-1").Return(&tmpl, nil)
	schedules.On("FindByPenVaccineStage", ctx, "pen-1", "vac-fmd", 1).Return(nil, nil)
	schedules.On("Create", ctx, mock.Anything).Return("sched-new", nil)
	pens.On("BatchFor", ctx, "pen-1").Return(nil, nil)

	result, err := svc.MarkComplete(ctx, []models.ActionItem{{TemplateID: "tmpl-1", PenID: "pen-1"}})
	require.NoError(t, err)

	assert.True(t, result.Success)
	ledger.AssertNotCalled(t, "MarkAdministered", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkComplete_BadItemDoesNotBlockOthers(t *testing.T) {
	svc, _, _, schedules, _, _ := newTestService()
	ctx := context.Background()

	schedules.On("Get", ctx, "sched-missing").Return(nil, errors.New("no rows"))
	schedules.On("Get", ctx, "sched-1").Return(&models.VaccinationSchedule{
		ID: "sched-1", PenID: "pen-1",
		Details: []models.VaccinationScheduleDetail{{VaccineID: "vac-fmd", Stage: 1}},
	}, nil)
	schedules.On("MarkCompleted", ctx, []string{"sched-1"}, mock.Anything).Return(int64(1), nil)

	result, err := svc.MarkComplete(ctx, []models.ActionItem{
		{IsReal: true, ScheduleID: "sched-missing"},
		{IsReal: true, ScheduleID: "sched-1"},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Items, 2)
	assert.False(t, result.Items[0].OK)
	assert.Equal(t, "schedule not found", result.Items[0].Error)
	assert.True(t, result.Items[1].OK)
}

func TestMarkComplete_EmptyBatchRejected(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.MarkComplete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRevert_PassesThroughResult(t *testing.T) {
	svc, _, _, schedules, _, _ := newTestService()
	ctx := context.Background()

	expected := &models.RevertResult{
		ScheduleID:      "sched-1",
		BatchID:         "batch-1",
		VaccineIDs:      []string{"vac-fmd"},
		LedgerRetracted: true,
	}
	schedules.On("RevertCompleted", ctx, "sched-1").Return(expected, nil)

	result, err := svc.Revert(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestCreateManual_RejectsBadDate(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.CreateManual(context.Background(), &models.ManualScheduleRequest{
		PenIDs:        []string{"pen-1"},
		ScheduledDate: "16/03/2025",
		VaccineID:     "vac-fmd",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateManual_ResolvesVaccineByNameCreatingWhenUnknown(t *testing.T) {
	svc, _, _, schedules, vaccines, _ := newTestService()
	ctx := context.Background()

	vaccines.On("FindByName", ctx, "Circo").Return(nil, nil)
	vaccines.On("Create", ctx, "Circo").Return(&models.Vaccine{ID: "vac-new", Name: "Circo"}, nil)
	schedules.On("Create", ctx, mock.MatchedBy(func(in *models.NewSchedule) bool {
		return in.VaccineID == "vac-new" && in.Status == models.StatusPending && in.Stage == 1
	})).Return("sched-1", nil)

	result, err := svc.CreateManual(ctx, &models.ManualScheduleRequest{
		PenIDs:        []string{"pen-1"},
		ScheduledDate: "2025-03-16",
		VaccineName:   "Circo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.True(t, result.Success)
}

func TestCreateManual_PenFailureDoesNotBlockOthers(t *testing.T) {
	svc, _, _, schedules, _, _ := newTestService()
	ctx := context.Background()

	schedules.On("Create", ctx, mock.MatchedBy(func(in *models.NewSchedule) bool {
		return in.PenID == "pen-1"
	})).Return("sched-1", nil)
	schedules.On("Create", ctx, mock.MatchedBy(func(in *models.NewSchedule) bool {
		return in.PenID == "pen-2"
	})).Return("", errors.New("pen gone"))

	result, err := svc.CreateManual(ctx, &models.ManualScheduleRequest{
		PenIDs:        []string{"pen-1", "pen-2"},
		ScheduledDate: "2025-03-16",
		VaccineID:     "vac-fmd",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].OK)
	assert.False(t, result.Items[1].OK)
}

func TestUpdateSchedule_BuildsPartialUpdate(t *testing.T) {
	svc, _, _, schedules, _, _ := newTestService()
	ctx := context.Background()

	schedules.On("Update", ctx, "sched-1", mock.MatchedBy(func(upd *models.ScheduleUpdate) bool {
		return upd.ScheduledDate != nil &&
			timeutil.DateKey(*upd.ScheduledDate) == "2025-03-20" &&
			upd.VaccineID != nil && *upd.VaccineID == "vac-fmd" &&
			upd.Stage != nil && *upd.Stage == 2 &&
			upd.Color == nil
	})).Return(nil)

	err := svc.UpdateSchedule(ctx, "sched-1", &models.UpdateScheduleRequest{
		ScheduledDate: "2025-03-20",
		VaccineID:     "vac-fmd",
		Stage:         2,
	})
	require.NoError(t, err)
	schedules.AssertExpectations(t)
}
