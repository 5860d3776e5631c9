package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"instadm/internal/entities"
	"instadm/internal/infrastructure"
	"instadm/internal/interfaces"
)

// Boilerplate persona applied to new companies until they customise it.
const (
	DefaultBotIdentity      = "I am a friendly virtual assistant representing this business on Instagram."
	DefaultBotRole          = "Answer customer questions about products and services, and help customers book appointments."
	DefaultConversationFlow = "Greet the customer, understand what they need, answer using the company's FAQs and product details, then offer to book an appointment."
)

type RegisterCompanyInput struct {
	Name             string         `json:"name" validate:"required"`
	Phone            string         `json:"phone" validate:"required"`
	Email            string         `json:"email" validate:"required,email"`
	Password         string         `json:"password" validate:"required,password"`
	Profile          string         `json:"profile"`
	InstagramID      string         `json:"instagram_id" validate:"omitempty,numeric"`
	CompanyID        string         `json:"company_id"`
	BotIdentity      string         `json:"bot_identity"`
	BotRole          string         `json:"bot_role"`
	ConversationFlow string         `json:"conversation_flow"`
	FAQs             []entities.FAQ `json:"faqs"`
	Keywords         []string       `json:"keywords"`
	IsActive         *bool          `json:"is_active"`
}

type CompanyUsecase struct {
	companies  interfaces.CompanyStore
	dispatcher interfaces.NotificationDispatcher
}

func NewCompanyUsecase(companies interfaces.CompanyStore, dispatcher interfaces.NotificationDispatcher) *CompanyUsecase {
	return &CompanyUsecase{companies: companies, dispatcher: dispatcher}
}

// BotProfile returns the public persona of the company with instagramID.
func (uc *CompanyUsecase) BotProfile(ctx context.Context, instagramID string) (entities.BotProfile, error) {
	instagramID = strings.TrimSpace(instagramID)
	if instagramID == "" {
		return entities.BotProfile{}, entities.NewValidationError("instagram_id is required")
	}

	company, err := uc.companies.GetByInstagramID(ctx, instagramID)
	if errors.Is(err, entities.ErrNotFound) {
		return entities.BotProfile{}, entities.NotFound("Company not found")
	}
	if err != nil {
		return entities.BotProfile{}, err
	}
	return company.BotProfile(), nil
}

func (uc *CompanyUsecase) Register(ctx context.Context, in RegisterCompanyInput) (*entities.Company, error) {
	company, err := registerCompany(ctx, uc.companies, in)
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(signupNotification(company))
	return company, nil
}

// Update applies the allow-listed fields to the company.
func (uc *CompanyUsecase) Update(ctx context.Context, companyID string, u entities.CompanyUpdate) (*entities.Company, error) {
	if u.Empty() {
		return nil, entities.NewValidationError("No valid fields to update")
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
				{Field: "name", Message: "must not be empty"},
			}}
		}
		u.Name = &name
	}
	if u.FAQs != nil {
		for i, faq := range *u.FAQs {
			if strings.TrimSpace(faq.Question) == "" || strings.TrimSpace(faq.Answer) == "" {
				return nil, &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
					{Field: fmt.Sprintf("faqs[%d]", i), Message: "question and answer are required"},
				}}
			}
		}
	}

	company, err := uc.companies.Update(ctx, companyID, u)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.NotFound("Company not found")
	}
	if err != nil {
		return nil, err
	}
	sanitized := company.Sanitized()
	return &sanitized, nil
}

// Delete removes the company and everything scoped to it.
func (uc *CompanyUsecase) Delete(ctx context.Context, company *entities.Company) error {
	err := uc.companies.Delete(ctx, company)
	if errors.Is(err, entities.ErrNotFound) {
		return entities.NotFound("Company not found")
	}
	return err
}

// QRCode renders a PNG linking to the company's Instagram DM thread. Size 0
// selects the default.
func (uc *CompanyUsecase) QRCode(company *entities.Company, size int) ([]byte, error) {
	if size == 0 {
		size = infrastructure.DefaultQRSize
	}
	if size < infrastructure.MinQRSize || size > infrastructure.MaxQRSize {
		return nil, entities.NewValidationError(fmt.Sprintf("size must be between %d and %d",
			infrastructure.MinQRSize, infrastructure.MaxQRSize))
	}
	return infrastructure.GenerateQRCodePNG(infrastructure.InstagramDMLink(company.InstagramID), size)
}

func registerCompany(ctx context.Context, companies interfaces.CompanyStore, in RegisterCompanyInput) (*entities.Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normalizeEmail(in.Email)
	in.InstagramID = strings.TrimSpace(in.InstagramID)
	if err := validateStruct(in, "Missing or invalid required fields"); err != nil {
		return nil, err
	}

	if _, err := companies.GetByEmail(ctx, in.Email); err == nil {
		return nil, entities.Conflict("Email already registered")
	} else if !errors.Is(err, entities.ErrNotFound) {
		return nil, err
	}
	if in.InstagramID != "" {
		if _, err := companies.GetByInstagramID(ctx, in.InstagramID); err == nil {
			return nil, entities.Conflict("Instagram ID already registered")
		} else if !errors.Is(err, entities.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	company := &entities.Company{
		Name:             in.Name,
		Email:            in.Email,
		PasswordHash:     hash,
		Phone:            in.Phone,
		Profile:          in.Profile,
		InstagramID:      orDefault(in.InstagramID, generateInstagramID),
		CompanyID:        orDefault(in.CompanyID, func() string { return generateCompanySlug(in.Name) }),
		BotIdentity:      orDefault(in.BotIdentity, func() string { return DefaultBotIdentity }),
		BotRole:          orDefault(in.BotRole, func() string { return DefaultBotRole }),
		ConversationFlow: orDefault(in.ConversationFlow, func() string { return DefaultConversationFlow }),
		FAQs:             in.FAQs,
		Keywords:         in.Keywords,
		IsActive:         in.IsActive == nil || *in.IsActive,
	}

	if err := companies.Create(ctx, company); err != nil {
		if errors.Is(err, entities.ErrConflict) {
			return nil, entities.Conflict("Company already exists")
		}
		return nil, err
	}

	sanitized := company.Sanitized()
	return &sanitized, nil
}

func orDefault(v string, fallback func() string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback()
}

// generateInstagramID returns a 17 digit placeholder id until the company
// links its real account.
func generateInstagramID() string {
	var b strings.Builder
	b.WriteByte(byte('1' + rand.IntN(9)))
	for range 16 {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// generateCompanySlug turns "Acme Dental Co." into "acme-dental-co-4821".
func generateCompanySlug(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "company"
	}
	return fmt.Sprintf("%s-%04d", slug, rand.IntN(10000))
}
