// Package storetest holds behaviour every storage backend must share. Each
// backend's tests call Run against a fresh set of stores.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
	"instadm/internal/usecases"
)

// Run checks tenant isolation, the analytics aggregates, message id
// uniqueness, cascading deletes and listing order. Records use random
// ids, so stores may be shared with other tests.
func Run(t *testing.T, stores interfaces.Stores) {
	t.Run("analytics are scoped to the tenant", func(t *testing.T) { testAnalyticsIsolation(t, stores) })
	t.Run("counterparts count each id once", func(t *testing.T) { testCounterpartsAreASet(t, stores) })
	t.Run("duplicate message id conflicts", func(t *testing.T) { testDuplicateMessageID(t, stores) })
	t.Run("company delete cascades", func(t *testing.T) { testDeleteCascades(t, stores) })
	t.Run("product details ties keep creation order", func(t *testing.T) { testProductDetailsTies(t, stores) })
	t.Run("appointment optional fields clear", func(t *testing.T) { testAppointmentClear(t, stores) })
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newCompany(t *testing.T, stores interfaces.Stores, name string) *entities.Company {
	t.Helper()
	suffix := uuid.NewString()
	c := &entities.Company{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.test", name, suffix),
		PasswordHash: "not-a-real-hash",
		Phone:        "+62 812 0000 0000",
		InstagramID:  "ig-" + suffix,
		IsActive:     true,
	}
	require.NoError(t, stores.Companies.Create(context.Background(), c))
	return c
}

// message stores one DM. step orders messages in time, a second apart.
func message(t *testing.T, stores interfaces.Stores, c *entities.Company, sender, recipient string, step int) *entities.ChatHistory {
	t.Helper()
	m := &entities.ChatHistory{
		SenderID:           sender,
		RecipientID:        recipient,
		CompanyID:          c.ID,
		CompanyInstagramID: c.InstagramID,
		Message:            fmt.Sprintf("message %d", step),
		MessageID:          "mid-" + uuid.NewString(),
		CreatedAt:          base.Add(time.Duration(step) * time.Second),
	}
	require.NoError(t, stores.ChatHistory.Insert(context.Background(), m))
	return m
}

func testAnalyticsIsolation(t *testing.T, stores interfaces.Stores) {
	ctx := context.Background()
	a := newCompany(t, stores, "tenant-a")
	b := newCompany(t, stores, "tenant-b")

	message(t, stores, a, a.ID, "cust-1", 1)
	message(t, stores, a, a.ID, "cust-2", 2)
	last := message(t, stores, a, "cust-1", a.InstagramID, 3)
	for i := range 5 {
		message(t, stores, b, fmt.Sprintf("b-cust-%d", i), b.InstagramID, 10+i)
	}

	total, err := stores.ChatHistory.CountByCompany(ctx, a.InstagramID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	breakdown, err := stores.ChatHistory.Breakdown(ctx, a.InstagramID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MessageBreakdown{Sent: 2, Received: 1}, breakdown)
	assert.Equal(t, total, breakdown.Sent+breakdown.Received)

	snapshot, err := usecases.NewAnalyticsUsecase(stores.ChatHistory).Snapshot(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snapshot.TotalMessages)
	assert.Equal(t, entities.MessageBreakdown{Sent: 2, Received: 1}, snapshot.MessageTypeBreakdown)
	// a.ID, cust-1, cust-2 and a.InstagramID
	assert.Equal(t, int64(4), snapshot.UniqueUsers)
	assert.Equal(t, "0.8", snapshot.AvgMessagesPerUser)
	require.Len(t, snapshot.RecentActivity, 3)
	newest := snapshot.RecentActivity[0]
	assert.Equal(t, usecases.DirectionReceived, newest.Type)
	assert.Equal(t, "cust-1", newest.UserID)
	assert.Equal(t, last.Message, newest.Message)
	assert.True(t, last.CreatedAt.Equal(newest.Timestamp), "got %s", newest.Timestamp)
	assert.Equal(t, usecases.DirectionSent, snapshot.RecentActivity[1].Type)
	assert.Equal(t, "cust-2", snapshot.RecentActivity[1].UserID)

	totalB, err := stores.ChatHistory.CountByCompany(ctx, b.InstagramID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), totalB)
	breakdownB, err := stores.ChatHistory.Breakdown(ctx, b.InstagramID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MessageBreakdown{Sent: 0, Received: 5}, breakdownB)
}

func testCounterpartsAreASet(t *testing.T, stores interfaces.Stores) {
	ctx := context.Background()
	c := newCompany(t, stores, "tenant-c")

	empty, err := stores.ChatHistory.CountCounterparts(ctx, c.InstagramID)
	require.NoError(t, err)
	assert.Zero(t, empty)

	message(t, stores, c, "cust-1", c.InstagramID, 1)
	message(t, stores, c, c.ID, "cust-1", 2)
	before, err := stores.ChatHistory.CountCounterparts(ctx, c.InstagramID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), before)

	// cust-1 appears as both sender and recipient, and again here
	message(t, stores, c, "cust-1", c.InstagramID, 3)
	message(t, stores, c, c.ID, "cust-1", 4)
	after, err := stores.ChatHistory.CountCounterparts(ctx, c.InstagramID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	total, err := stores.ChatHistory.CountByCompany(ctx, c.InstagramID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func testDuplicateMessageID(t *testing.T, stores interfaces.Stores) {
	c := newCompany(t, stores, "tenant-d")
	m := message(t, stores, c, "cust-1", c.InstagramID, 1)

	dup := *m
	dup.ID = ""
	err := stores.ChatHistory.Insert(context.Background(), &dup)
	assert.ErrorIs(t, err, entities.ErrConflict)
}

func testDeleteCascades(t *testing.T, stores interfaces.Stores) {
	ctx := context.Background()
	c := newCompany(t, stores, "tenant-e")
	keep := newCompany(t, stores, "tenant-f")

	message(t, stores, c, "cust-1", c.InstagramID, 1)
	message(t, stores, keep, "cust-1", keep.InstagramID, 1)
	require.NoError(t, stores.ProductDetails.Create(ctx, &entities.ProductDetails{CompanyInstagramID: c.InstagramID, Details: "gone"}))
	require.NoError(t, stores.Appointments.Create(ctx, &entities.Appointment{
		Name: "Budi", Phone: "+62 812 0000 0000", UserInstagramID: "cust-1", CompanyInstagramID: c.InstagramID,
		Date: "2025-03-01", StartTime: "10:00", Service: "Cleaning", Status: entities.StatusPending,
	}))

	require.NoError(t, stores.Companies.Delete(ctx, c))

	_, err := stores.Companies.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	n, err := stores.ChatHistory.CountByCompany(ctx, c.InstagramID)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, total, err := stores.ProductDetails.List(ctx, c.InstagramID, entities.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	appts, err := stores.Appointments.ListByCompany(ctx, c.InstagramID)
	require.NoError(t, err)
	assert.Empty(t, appts)

	n, err = stores.ChatHistory.CountByCompany(ctx, keep.InstagramID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, stores.Companies.Delete(ctx, c), entities.ErrNotFound)
}

func testProductDetailsTies(t *testing.T, stores interfaces.Stores) {
	ctx := context.Background()
	c := newCompany(t, stores, "tenant-g")

	batch := make([]entities.ProductDetails, 20)
	for i := range batch {
		batch[i] = entities.ProductDetails{CompanyInstagramID: c.InstagramID, Details: fmt.Sprintf("row %02d", i), CreatedAt: base}
	}
	require.NoError(t, stores.ProductDetails.CreateMany(ctx, batch))

	asc, _, err := stores.ProductDetails.List(ctx, c.InstagramID, entities.Page{Page: 1, Limit: 5, Ascending: true})
	require.NoError(t, err)
	desc, total, err := stores.ProductDetails.List(ctx, c.InstagramID, entities.Page{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)
	for i := range 5 {
		assert.Equal(t, fmt.Sprintf("row %02d", i), asc[i].Details)
		assert.Equal(t, fmt.Sprintf("row %02d", 19-i), desc[i].Details)
	}
}

func testAppointmentClear(t *testing.T, stores interfaces.Stores) {
	ctx := context.Background()
	c := newCompany(t, stores, "tenant-h")
	a := &entities.Appointment{
		Name: "Budi", Phone: "+62 812 0000 0000", Email: "budi@example.test", UserInstagramID: "cust-1",
		CompanyInstagramID: c.InstagramID, Date: "2025-03-01", StartTime: "10:00", EndTime: "11:00",
		Service: "Cleaning", Status: entities.StatusPending,
	}
	require.NoError(t, stores.Appointments.Create(ctx, a))

	a.Email, a.EndTime = "", ""
	require.NoError(t, stores.Appointments.Update(ctx, a))

	got, err := stores.Appointments.GetByID(ctx, c.InstagramID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Email)
	assert.Empty(t, got.EndTime)
}
