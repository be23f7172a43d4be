package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"go.uber.org/zap"
)

func (b *Backend) countLogin(outcome string) {
	if b.metrics != nil {
		b.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (b *Backend) Authenticate(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.Authenticate")
	defer span.End()

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	b.mu.RLock()
	u := b.userByEmail(email)
	var profile domain.UserProfile
	var hash string
	if u != nil {
		profile, hash = u.profile, u.passwordHash
	}
	b.mu.RUnlock()

	if u == nil || !auth.CheckPassword(hash, password) {
		b.countLogin("failure")
		b.log.Info("Login rejected", zap.String("email", email))
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	token, err := b.tokens.Issue(profile.ID, profile.Email, profile.Roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	b.countLogin("success")
	b.log.Info("User logged in", zap.Int64("user_id", profile.ID))
	return &domain.AuthResult{
		Token:  token,
		UserID: profile.ID,
		Email:  profile.Email,
		Roles:  append([]string(nil), profile.Roles...),
	}, nil
}

func validateRegistration(p domain.RegistrationPayload) error {
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if len(p.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}
	return nil
}

func (b *Backend) uploadAvatar(ctx context.Context, avatar *domain.ImageUpload) (string, error) {
	if avatar == nil {
		return "", nil
	}
	url, err := b.images.Upload(ctx, avatar.FileName, avatar.Data)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return url, nil
}

func (b *Backend) RegisterUser(ctx context.Context, payload domain.RegistrationPayload, avatar *domain.ImageUpload) (*domain.UserSummary, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.RegisterUser")
	defer span.End()

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if err := validateRegistration(payload); err != nil {
		return nil, err
	}
	if _, ok := b.resolveCity(payload.CityID); !ok {
		return nil, fmt.Errorf("%w: unknown city %d", domain.ErrInvalidInput, payload.CityID)
	}
	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	taken := b.userByEmail(payload.Email) != nil
	b.mu.RUnlock()
	if taken {
		return nil, fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, payload.Email)
	}
	avatarURL, err := b.uploadAvatar(ctx, avatar)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.userByEmail(payload.Email) != nil {
		b.mu.Unlock()
		if avatarURL != "" {
			b.removeImages(ctx, []domain.Image{{URL: avatarURL}})
		}
		return nil, fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, payload.Email)
	}
	b.nextUserID++
	profile := domain.UserProfile{
		ID:           b.nextUserID,
		Email:        payload.Email,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Phone:        payload.Phone,
		CityID:       payload.CityID,
		AvatarURL:    avatarURL,
		Roles:        []string{domain.RoleUser},
		RegisteredAt: b.now().UTC(),
	}
	b.users[profile.ID] = &user{profile: profile, passwordHash: hash}
	b.mu.Unlock()

	b.log.Info("User registered", zap.Int64("user_id", profile.ID))
	return &domain.UserSummary{ID: profile.ID, Email: profile.Email}, nil
}

// GetUserProfile returns the full profile to its owner and to admins, and a
// public view without email and roles to everyone else.
func (b *Backend) GetUserProfile(ctx context.Context, id int64, token string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.GetUserProfile")
	defer span.End()

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	full := false
	if token != "" {
		claims, err := b.authorize(token, "")
		if err != nil {
			return nil, err
		}
		full = claims.UserID == id || claims.HasRole(domain.RoleAdmin)
	}
	return b.profile(ctx, id, full)
}

func (b *Backend) profile(ctx context.Context, id int64, full bool) (*domain.UserProfile, error) {
	b.mu.RLock()
	u, ok := b.users[id]
	var profile domain.UserProfile
	if ok {
		profile = u.profile
		profile.Roles = append([]string(nil), u.profile.Roles...)
	}
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	active, err := b.repo.CountBySeller(ctx, id, domain.AdStatusActive)
	if err != nil {
		return nil, fmt.Errorf("count advertisements: %w", err)
	}
	profile.ActiveAdsCount = active
	if !full {
		profile.Email = ""
		profile.Roles = nil
	}
	return &profile, nil
}

func (b *Backend) UpdateUserProfile(ctx context.Context, payload domain.ProfilePayload, avatar *domain.ImageUpload, token string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "MockBackend.UpdateUserProfile")
	defer span.End()

	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	claims, err := b.authorize(token, "")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}
	if _, ok := b.resolveCity(payload.CityID); !ok {
		return nil, fmt.Errorf("%w: unknown city %d", domain.ErrInvalidInput, payload.CityID)
	}
	avatarURL, err := b.uploadAvatar(ctx, avatar)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	u, ok := b.users[claims.UserID]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("user %d: %w", claims.UserID, domain.ErrNotFound)
	}
	old := u.profile.AvatarURL
	u.profile.FirstName = payload.FirstName
	u.profile.LastName = payload.LastName
	u.profile.Phone = payload.Phone
	u.profile.CityID = payload.CityID
	if avatarURL != "" {
		u.profile.AvatarURL = avatarURL
	}
	b.mu.Unlock()

	if avatarURL != "" && old != "" {
		b.removeImages(ctx, []domain.Image{{URL: old}})
	}
	b.log.Info("Profile updated", zap.Int64("user_id", claims.UserID))
	return b.profile(ctx, claims.UserID, true)
}
