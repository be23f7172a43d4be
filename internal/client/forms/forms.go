package forms

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AdForm is the create/edit advertisement form. ID is zero when creating.
// Nil Images on edit keeps the stored pictures.
type AdForm struct {
	ID          int64                `json:"-"`
	Title       string               `json:"title" validate:"required,max=100"`
	Description string               `json:"description" validate:"required,max=4000"`
	Price       *float64             `json:"price" validate:"required,gte=0"`
	Condition   domain.Condition     `json:"condition" validate:"required,oneof=NEW USED_PERFECT USED_LIKE_NEW USED_GOOD USED_FAIR"`
	Status      domain.AdStatus      `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SOLD"`
	CategoryID  int64                `json:"categoryId" validate:"required,gt=0"`
	CityID      int64                `json:"cityId" validate:"required,gt=0"`
	Images      []domain.ImageUpload `json:"images" validate:"max=10"`
}

// AdFormFrom prefills an edit form from a stored advertisement.
func AdFormFrom(ad domain.Advertisement) AdForm {
	price := ad.Price
	return AdForm{
		ID:          ad.ID,
		Title:       ad.Title,
		Description: ad.Description,
		Price:       &price,
		Condition:   ad.Condition,
		Status:      ad.Status,
		CategoryID:  ad.CategoryID,
		CityID:      ad.CityID,
	}
}

func (f AdForm) payload() domain.AdvertisementPayload {
	p := domain.AdvertisementPayload{
		Title:       f.Title,
		Description: f.Description,
		Condition:   f.Condition,
		Status:      f.Status,
		CityID:      f.CityID,
		CategoryID:  f.CategoryID,
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	return p
}

// RegistrationForm is the sign-up form.
type RegistrationForm struct {
	Email           string              `json:"email" validate:"required,email"`
	Password        string              `json:"password" validate:"required,min=8"`
	PasswordConfirm string              `json:"passwordConfirm" validate:"required,eqfield=Password"`
	FirstName       string              `json:"firstName" validate:"required,max=50"`
	LastName        string              `json:"lastName" validate:"max=50"`
	Phone           string              `json:"phone" validate:"omitempty,max=20"`
	CityID          int64               `json:"cityId" validate:"required,gt=0"`
	Avatar          *domain.ImageUpload `json:"-"`
}

// ProfileForm edits the signed-in user's profile.
type ProfileForm struct {
	FirstName string              `json:"firstName" validate:"required,max=50"`
	LastName  string              `json:"lastName" validate:"max=50"`
	Phone     string              `json:"phone" validate:"omitempty,max=20"`
	CityID    int64               `json:"cityId" validate:"required,gt=0"`
	Avatar    *domain.ImageUpload `json:"-"`
}

// Session is the part of the session store the forms rely on.
type Session interface {
	Token() string
	RefreshProfile(ctx context.Context) error
}

// Service validates forms and submits them to the backend.
type Service struct {
	backend  domain.Backend
	session  Session
	validate *validator.Validate
	log      *logger.Logger
}

func NewService(backend domain.Backend, session Session, log *logger.Logger) *Service {
	return &Service{
		backend:  backend,
		session:  session,
		validate: newValidator(),
		log:      log.Named("forms"),
	}
}

// ValidateAd returns nil or the field errors of form.
func (s *Service) ValidateAd(form AdForm) error {
	errs := check(s.validate, form)
	previews := 0
	for _, img := range form.Images {
		if img.Preview {
			previews++
		}
	}
	if previews > 1 {
		if errs == nil {
			errs = ValidationErrors{}
		}
		errs["images"] = "at most one image can be the preview"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SubmitAd validates the form and creates or updates the advertisement.
// Nothing is sent when validation fails.
func (s *Service) SubmitAd(ctx context.Context, form AdForm) (*domain.AdvertisementDetail, error) {
	if err := s.ValidateAd(form); err != nil {
		return nil, err
	}
	token := s.session.Token()
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	var (
		detail *domain.AdvertisementDetail
		err    error
	)
	if form.ID == 0 {
		detail, err = s.backend.CreateAdvertisement(ctx, form.payload(), form.Images, token)
	} else {
		detail, err = s.backend.UpdateAdvertisement(ctx, form.ID, form.payload(), form.Images, token)
	}
	if err != nil {
		s.log.Warn("Advertisement submission failed", zap.Int64("ad_id", form.ID), zap.Error(err))
		return nil, fmt.Errorf("submit advertisement: %w", err)
	}
	s.log.Info("Advertisement submitted", zap.Int64("ad_id", detail.ID))
	return detail, nil
}

// Register validates the form and creates the account.
func (s *Service) Register(ctx context.Context, form RegistrationForm) (*domain.UserSummary, error) {
	if errs := check(s.validate, form); errs != nil {
		return nil, errs
	}
	summary, err := s.backend.RegisterUser(ctx, domain.RegistrationPayload{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
		CityID:    form.CityID,
	}, form.Avatar)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return summary, nil
}

// UpdateProfile validates the form, saves it and refreshes the session profile.
func (s *Service) UpdateProfile(ctx context.Context, form ProfileForm) (*domain.UserProfile, error) {
	if errs := check(s.validate, form); errs != nil {
		return nil, errs
	}
	token := s.session.Token()
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	profile, err := s.backend.UpdateUserProfile(ctx, domain.ProfilePayload{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
		CityID:    form.CityID,
	}, form.Avatar, token)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.session.RefreshProfile(ctx); err != nil {
		s.log.Warn("Profile saved but session refresh failed", zap.Error(err))
	}
	return profile, nil
}
