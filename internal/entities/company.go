package entities

import "time"

// FAQ is a question/answer pair the bot can answer verbatim.
type FAQ struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Company is a tenant: one registered business running the DM bot.
type Company struct {
	ID               string    `json:"_id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     string    `json:"-" bson:"password"`
	Phone            string    `json:"phone" bson:"phone"`
	Profile          string    `json:"profile" bson:"profile"`
	InstagramID      string    `json:"instagram_id" bson:"instagram_id"`
	CompanyID        string    `json:"company_id" bson:"company_id"` // human readable slug
	BotIdentity      string    `json:"bot_identity" bson:"bot_identity"`
	BotRole          string    `json:"bot_role" bson:"bot_role"`
	ConversationFlow string    `json:"conversation_flow" bson:"conversation_flow"`
	FAQs             []FAQ     `json:"faqs" bson:"faqs"`
	Keywords         []string  `json:"keywords" bson:"keywords"`
	IsActive         bool      `json:"is_active" bson:"is_active"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// Sanitized returns a copy without the password hash.
func (c Company) Sanitized() Company {
	c.PasswordHash = ""
	return c
}

// BotProfile is the public view of a company consumed by the bot.
type BotProfile struct {
	Name             string   `json:"name"`
	InstagramID      string   `json:"instagram_id"`
	CompanyID        string   `json:"company_id"`
	Profile          string   `json:"profile"`
	BotIdentity      string   `json:"bot_identity"`
	BotRole          string   `json:"bot_role"`
	ConversationFlow string   `json:"conversation_flow"`
	FAQs             []FAQ    `json:"faqs"`
	Keywords         []string `json:"keywords"`
	IsActive         bool     `json:"is_active"`
}

func (c Company) BotProfile() BotProfile {
	return BotProfile{
		Name:             c.Name,
		InstagramID:      c.InstagramID,
		CompanyID:        c.CompanyID,
		Profile:          c.Profile,
		BotIdentity:      c.BotIdentity,
		BotRole:          c.BotRole,
		ConversationFlow: c.ConversationFlow,
		FAQs:             c.FAQs,
		Keywords:         c.Keywords,
		IsActive:         c.IsActive,
	}
}

// CompanyUpdate carries the allow-listed profile fields. Nil means unchanged.
type CompanyUpdate struct {
	Name             *string
	Phone            *string
	Profile          *string
	BotIdentity      *string
	BotRole          *string
	ConversationFlow *string
	FAQs             *[]FAQ
	Keywords         *[]string
	IsActive         *bool
}

// Empty reports whether no field is set.
func (u CompanyUpdate) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Profile == nil &&
		u.BotIdentity == nil && u.BotRole == nil && u.ConversationFlow == nil &&
		u.FAQs == nil && u.Keywords == nil && u.IsActive == nil
}

// Apply copies the set fields onto c.
func (u CompanyUpdate) Apply(c *Company) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Profile != nil {
		c.Profile = *u.Profile
	}
	if u.BotIdentity != nil {
		c.BotIdentity = *u.BotIdentity
	}
	if u.BotRole != nil {
		c.BotRole = *u.BotRole
	}
	if u.ConversationFlow != nil {
		c.ConversationFlow = *u.ConversationFlow
	}
	if u.FAQs != nil {
		c.FAQs = *u.FAQs
	}
	if u.Keywords != nil {
		c.Keywords = *u.Keywords
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}
