package usecases

import (
	"context"
	"errors"
	"strings"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
)

type RecordMessageInput struct {
	SenderID    string `json:"sender_id" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"required"`
	Message     string `json:"message"`
	MessageID   string `json:"message_id" validate:"required"`
}

// ChatHistoryUsecase appends to and pages through a company's message log.
type ChatHistoryUsecase struct {
	messages interfaces.ChatHistoryStore
}

func NewChatHistoryUsecase(messages interfaces.ChatHistoryStore) *ChatHistoryUsecase {
	return &ChatHistoryUsecase{messages: messages}
}

// Record stores a message for company. Tenant fields always come from the
// company, never from the input.
func (uc *ChatHistoryUsecase) Record(ctx context.Context, company *entities.Company, in RecordMessageInput) (*entities.ChatHistory, error) {
	in.SenderID = strings.TrimSpace(in.SenderID)
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	in.MessageID = strings.TrimSpace(in.MessageID)
	if err := validateStruct(in, "Validation failed"); err != nil {
		return nil, err
	}

	m := &entities.ChatHistory{
		SenderID:           in.SenderID,
		RecipientID:        in.RecipientID,
		CompanyID:          company.ID,
		CompanyInstagramID: company.InstagramID,
		Message:            in.Message,
		MessageID:          in.MessageID,
	}
	if err := uc.messages.Insert(ctx, m); err != nil {
		if errors.Is(err, entities.ErrConflict) {
			return nil, entities.Conflict("Message already recorded")
		}
		return nil, err
	}
	return m, nil
}

func (uc *ChatHistoryUsecase) List(ctx context.Context, company *entities.Company, p ListParams) ([]entities.ChatHistory, Pagination, error) {
	p.SortBy, p.SortOrder = "", ""
	page, err := NormalizePage(p)
	if err != nil {
		return nil, Pagination{}, err
	}

	items, total, err := uc.messages.List(ctx, company.InstagramID, page)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, NewPagination(page, total), nil
}
