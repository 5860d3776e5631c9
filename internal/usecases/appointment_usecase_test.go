package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"instadm/internal/entities"
	"instadm/internal/infrastructure"
)

func validAppointment(companyInstagramID string) CreateAppointmentInput {
	return CreateAppointmentInput{
		Name:               "Budi",
		Phone:              "+62 812-3456-7890",
		Email:              "budi@example.com",
		UserInstagramID:    "cust-1",
		CompanyInstagramID: companyInstagramID,
		Date:               "2025-02-10",
		StartTime:          "10:00",
		EndTime:            "11:00",
		Service:            "Cleaning",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ve *entities.ValidationError
	require.ErrorAs(t, err, &ve)
	names := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestAppointmentCreate(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, f.dispatcher)

	a, err := uc.Create(context.Background(), validAppointment(c.InstagramID))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, entities.StatusPending, a.Status)
	assert.Contains(t, f.dispatcher.subjects(), "New appointment for Acme")
}

func TestAppointmentCreate_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, f.dispatcher)

	tests := []struct {
		name   string
		mutate func(*CreateAppointmentInput)
		field  string
	}{
		{"missing name", func(in *CreateAppointmentInput) { in.Name = " " }, "name"},
		{"short phone", func(in *CreateAppointmentInput) { in.Phone = "12345" }, "phone"},
		{"letters in phone", func(in *CreateAppointmentInput) { in.Phone = "+62 abc 456 7890" }, "phone"},
		{"bad email", func(in *CreateAppointmentInput) { in.Email = "not-an-email" }, "email"},
		{"bad date", func(in *CreateAppointmentInput) { in.Date = "10/02/2025" }, "date"},
		{"impossible date", func(in *CreateAppointmentInput) { in.Date = "2025-02-30" }, "date"},
		{"bad start", func(in *CreateAppointmentInput) { in.StartTime = "25:00" }, "startTime"},
		{"missing service", func(in *CreateAppointmentInput) { in.Service = "" }, "service"},
		{"missing user", func(in *CreateAppointmentInput) { in.UserInstagramID = "" }, "user_instagram_id"},
		{"bad status", func(in *CreateAppointmentInput) { in.Status = "done" }, "status"},
		{"end before start", func(in *CreateAppointmentInput) { in.EndTime = "09:00" }, "endTime"},
		{"end equals start", func(in *CreateAppointmentInput) { in.EndTime = "10:00" }, "endTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validAppointment(c.InstagramID)
			tt.mutate(&in)
			_, err := uc.Create(context.Background(), in)
			assert.Contains(t, fieldNames(t, err), tt.field)
		})
	}
}

func TestAppointmentCreate_UnknownCompany(t *testing.T) {
	f := newFixture(t)
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, f.dispatcher)

	_, err := uc.Create(context.Background(), validAppointment("99999999999999999"))
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestAppointmentList_SortedLatestFirst(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, f.dispatcher)
	ctx := context.Background()

	for _, slot := range [][2]string{{"2025-02-10", "09:00"}, {"2025-02-11", "08:00"}, {"2025-02-10", "14:00"}} {
		in := validAppointment(c.InstagramID)
		in.Date, in.StartTime, in.EndTime = slot[0], slot[1], ""
		_, err := uc.Create(ctx, in)
		require.NoError(t, err)
	}

	list, err := uc.List(ctx, c)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-02-11 08:00", list[0].Date+" "+list[0].StartTime)
	assert.Equal(t, "2025-02-10 14:00", list[1].Date+" "+list[1].StartTime)
	assert.Equal(t, "2025-02-10 09:00", list[2].Date+" "+list[2].StartTime)
}

func TestAppointmentUpdate_StatusWithFailingNotifier(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	ctx := context.Background()

	core, logs := observer.New(zap.WarnLevel)
	dispatcher := infrastructure.NewDispatcher(failingNotifier{}, time.Second, zap.New(core))
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, dispatcher)

	created, err := uc.Create(ctx, validAppointment(c.InstagramID))
	require.NoError(t, err)

	confirmed := string(entities.StatusConfirmed)
	updated, err := uc.Update(ctx, c, UpdateAppointmentInput{ID: created.ID, Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusConfirmed, updated.Status)
	assert.Equal(t, "Budi", updated.Name)

	refetched, err := f.stores.Appointments.GetByID(ctx, c.InstagramID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusConfirmed, refetched.Status)

	require.NoError(t, dispatcher.Wait(ctx))
	// create and update were both attempted
	assert.Equal(t, 2, logs.FilterMessage("notification failed").Len())
}

func TestAppointmentUpdate_Rules(t *testing.T) {
	f := newFixture(t)
	acme := f.signup(t, "Acme", "owner@acme.test")
	other := f.signup(t, "Other", "owner@other.test")
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, f.dispatcher)
	ctx := context.Background()

	created, err := uc.Create(ctx, validAppointment(acme.InstagramID))
	require.NoError(t, err)

	_, err = uc.Update(ctx, acme, UpdateAppointmentInput{})
	assert.True(t, entities.IsValidation(err))

	confirmed := "confirmed"
	_, err = uc.Update(ctx, other, UpdateAppointmentInput{ID: created.ID, Status: &confirmed})
	assert.ErrorIs(t, err, entities.ErrNotFound)

	// merged record: 11:00 end against a new 12:00 start
	start := "12:00"
	_, err = uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, StartTime: &start})
	assert.Contains(t, fieldNames(t, err), "endTime")

	badPhone := "123"
	_, err = uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, Phone: &badPhone})
	assert.Contains(t, fieldNames(t, err), "phone")

	bogus := "archived"
	_, err = uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, Status: &bogus})
	assert.Contains(t, fieldNames(t, err), "status")

	end := "13:30"
	updated, err := uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "12:00", updated.StartTime)
	assert.Equal(t, "13:30", updated.EndTime)
}

func TestAppointmentUpdate_EmptyStringClearsOptionalFields(t *testing.T) {
	f := newFixture(t)
	acme := f.signup(t, "Acme", "owner@acme.test")
	uc := NewAppointmentUsecase(f.stores.Appointments, f.stores.Companies, f.dispatcher)
	ctx := context.Background()

	created, err := uc.Create(ctx, validAppointment(acme.InstagramID))
	require.NoError(t, err)
	require.NotEmpty(t, created.Email)
	require.NotEmpty(t, created.EndTime)

	blank, spaces := "", "  "
	updated, err := uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, Email: &blank, EndTime: &spaces})
	require.NoError(t, err)
	assert.Empty(t, updated.Email)
	assert.Empty(t, updated.EndTime)

	stored, err := f.stores.Appointments.GetByID(ctx, acme.InstagramID, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Email)
	assert.Empty(t, stored.EndTime)

	// required fields cannot be cleared
	_, err = uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, StartTime: &blank})
	assert.Contains(t, fieldNames(t, err), "startTime")

	bad := "not-an-email"
	_, err = uc.Update(ctx, acme, UpdateAppointmentInput{ID: created.ID, Email: &bad})
	assert.Contains(t, fieldNames(t, err), "email")
}
