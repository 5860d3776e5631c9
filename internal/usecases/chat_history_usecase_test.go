package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/internal/entities"
)

func TestChatHistoryRecord(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewChatHistoryUsecase(f.stores.ChatHistory)
	ctx := context.Background()

	m, err := uc.Record(ctx, c, RecordMessageInput{SenderID: "cust", RecipientID: c.InstagramID, Message: "hi", MessageID: "mid-1"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, m.CompanyID)
	assert.Equal(t, c.InstagramID, m.CompanyInstagramID)
	assert.False(t, m.CreatedAt.IsZero())

	_, err = uc.Record(ctx, c, RecordMessageInput{SenderID: "cust", RecipientID: c.InstagramID, MessageID: "mid-1"})
	assert.ErrorIs(t, err, entities.ErrConflict)

	_, err = uc.Record(ctx, c, RecordMessageInput{SenderID: "cust"})
	assert.ElementsMatch(t, []string{"recipient_id", "message_id"}, fieldNames(t, err))
}

func TestChatHistoryList(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewChatHistoryUsecase(f.stores.ChatHistory)
	ctx := context.Background()

	for i := range 12 {
		_, err := uc.Record(ctx, c, RecordMessageInput{SenderID: "cust", RecipientID: c.InstagramID, MessageID: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	items, p, err := uc.List(ctx, c, ListParams{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3}, p)
}
