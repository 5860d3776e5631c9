package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
)

// TokenClaims is the bearer token payload. ID is the company's internal id.
type TokenClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type AuthUsecase struct {
	companies  interfaces.CompanyStore
	dispatcher interfaces.NotificationDispatcher
	jwtSecret  []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthUsecase(companies interfaces.CompanyStore, dispatcher interfaces.NotificationDispatcher, secret string, ttl time.Duration) *AuthUsecase {
	return &AuthUsecase{
		companies:  companies,
		dispatcher: dispatcher,
		jwtSecret:  []byte(secret),
		tokenTTL:   ttl,
		now:        time.Now,
	}
}

// Login verifies an email/password pair. Unknown email and wrong password
// return the same ErrInvalidCredentials.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", entities.NewValidationError("Email and password are required")
	}

	company, err := uc.companies.GetByEmail(ctx, email)
	if errors.Is(err, entities.ErrNotFound) {
		return "", entities.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(password)); err != nil {
		return "", entities.ErrInvalidCredentials
	}
	return uc.IssueToken(company.ID)
}

type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// Signup registers a company with default bot settings and returns a token
// for it.
func (uc *AuthUsecase) Signup(ctx context.Context, in SignupInput) (string, *entities.Company, error) {
	company, err := registerCompany(ctx, uc.companies, RegisterCompanyInput{
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := uc.IssueToken(company.ID)
	if err != nil {
		return "", nil, err
	}

	uc.dispatcher.Dispatch(signupNotification(company))
	return token, company, nil
}

// IssueToken signs an HS256 token for the company id.
func (uc *AuthUsecase) IssueToken(companyID string) (string, error) {
	now := uc.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		ID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
		},
	})

	signed, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature, algorithm and expiry and returns the
// embedded company id.
func (uc *AuthUsecase) ParseToken(tokenString string) (string, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return uc.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(uc.now),
	)
	if err != nil {
		return "", entities.Unauthorized("Invalid token")
	}
	if claims.ID == "" {
		return "", entities.Unauthorized("Invalid token")
	}
	return claims.ID, nil
}

// Authenticate resolves an Authorization header to the company it was
// issued for. The returned company has no password hash.
func (uc *AuthUsecase) Authenticate(ctx context.Context, header string) (*entities.Company, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, entities.Unauthorized("No token provided")
	}

	id, err := uc.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	company, err := uc.companies.GetByID(ctx, id)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.NotFound("Company not found")
	}
	if err != nil {
		return nil, err
	}

	sanitized := company.Sanitized()
	return &sanitized, nil
}

// ChangePassword replaces the password after checking the current one.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, companyID, current, next string) error {
	if current == "" {
		return &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
			{Field: "current_password", Message: "is required"},
		}}
	}
	if !validPasswordLength(next) {
		return &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
			{Field: "new_password", Message: passwordLengthMessage},
		}}
	}

	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(current)); err != nil {
		return entities.ErrInvalidCredentials
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	return uc.companies.UpdatePassword(ctx, companyID, hash)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func signupNotification(c *entities.Company) interfaces.Notification {
	return interfaces.Notification{
		Subject: "New company signup: " + c.Name,
		Body: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nInstagram ID: %s\nCompany ID: %s",
			c.Name, c.Email, c.Phone, c.InstagramID, c.CompanyID),
	}
}
