package usecases

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
)

const recentActivityLimit = 10

const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

type ActivityItem struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type Analytics struct {
	TotalMessages        int64                     `json:"totalMessages"`
	UniqueUsers          int64                     `json:"uniqueUsers"`
	RecentActivity       []ActivityItem            `json:"recentActivity"`
	AvgMessagesPerUser   string                    `json:"avgMessagesPerUser"`
	MessageTypeBreakdown entities.MessageBreakdown `json:"messageTypeBreakdown"`
}

// AnalyticsUsecase computes read-only activity snapshots from the message
// log. Every query is scoped by the company's instagram id.
type AnalyticsUsecase struct {
	messages interfaces.ChatHistoryStore
}

func NewAnalyticsUsecase(messages interfaces.ChatHistoryStore) *AnalyticsUsecase {
	return &AnalyticsUsecase{messages: messages}
}

// Snapshot runs the aggregate queries concurrently. Any failure fails the
// whole snapshot.
func (uc *AnalyticsUsecase) Snapshot(ctx context.Context, company *entities.Company) (*Analytics, error) {
	scope := company.InstagramID
	var (
		total     int64
		unique    int64
		recent    []entities.ChatHistory
		breakdown entities.MessageBreakdown
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = uc.messages.CountByCompany(ctx, scope)
		return err
	})
	g.Go(func() (err error) {
		unique, err = uc.messages.CountCounterparts(ctx, scope)
		return err
	})
	g.Go(func() (err error) {
		recent, err = uc.messages.Recent(ctx, scope, recentActivityLimit)
		return err
	})
	g.Go(func() (err error) {
		breakdown, err = uc.messages.Breakdown(ctx, scope, company.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute analytics: %w", err)
	}

	return &Analytics{
		TotalMessages:        total,
		UniqueUsers:          unique,
		RecentActivity:       recentActivity(recent, company.ID),
		AvgMessagesPerUser:   averagePerUser(total, unique),
		MessageTypeBreakdown: breakdown,
	}, nil
}

func recentActivity(messages []entities.ChatHistory, ownerID string) []ActivityItem {
	items := make([]ActivityItem, 0, len(messages))
	for _, m := range messages {
		item := ActivityItem{Timestamp: m.CreatedAt, Message: m.Message}
		if m.SenderID == ownerID {
			item.Type, item.UserID = DirectionSent, m.RecipientID
		} else {
			item.Type, item.UserID = DirectionReceived, m.SenderID
		}
		items = append(items, item)
	}
	return items
}

func averagePerUser(total, unique int64) string {
	if unique == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(total)/float64(unique))
}
