package entities

import "time"

// ChatHistory is one inbound or outbound Instagram DM. Records are immutable.
type ChatHistory struct {
	ID                 string    `json:"_id" bson:"_id"`
	SenderID           string    `json:"sender_id" bson:"sender_id"`
	RecipientID        string    `json:"recipient_id" bson:"recipient_id"`
	CompanyID          string    `json:"company_id" bson:"company_id"`
	CompanyInstagramID string    `json:"company_instagram_id" bson:"company_instagram_id"`
	Message            string    `json:"message" bson:"message"`
	MessageID          string    `json:"message_id" bson:"message_id"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
}

// MessageBreakdown splits a tenant's messages by direction.
type MessageBreakdown struct {
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
}
