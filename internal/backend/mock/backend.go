// Package mock is an in-memory stand-in for the classifieds API. It
// implements domain.Backend with artificial latency and emulates the status
// codes of the real service.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("classifieds/mock-backend")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Options configures a Backend. Zero values select in-memory collaborators.
type Options struct {
	Latency   time.Duration
	JWTSecret string
	TokenTTL  time.Duration
	Repo      domain.AdRepository
	Images    domain.ImageStore
	Events    domain.EventPublisher
	Mailer    domain.Mailer
	Metrics   *metrics.Manager
	Now       func() time.Time
	// SkipSeedAds leaves the advertisement repository untouched.
	SkipSeedAds bool
}

type user struct {
	profile      domain.UserProfile
	passwordHash string
}

// Backend implements domain.Backend in memory.
type Backend struct {
	latency time.Duration
	tokens  *auth.TokenManager
	repo    domain.AdRepository
	images  domain.ImageStore
	events  domain.EventPublisher
	mailer  domain.Mailer
	metrics *metrics.Manager
	now     func() time.Time
	log     *logger.Logger

	regions   []domain.Region
	districts []domain.District
	cities    []domain.City

	mu             sync.RWMutex
	categories     []domain.CategoryNode
	nextCategoryID int64
	users          map[int64]*user
	nextUserID     int64
	hits           map[string]int64
	requests       []RequestLogEntry
	tasks          map[string]*logTask

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool // guarded by mu; no task starts once set
}

// New creates a seeded backend.
func New(ctx context.Context, opts Options, log *logger.Logger) (*Backend, error) {
	if opts.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", domain.ErrInvalidInput)
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Repo == nil {
		opts.Repo = NewMemoryAdRepository()
	}
	if opts.Images == nil {
		opts.Images = NewMemoryImageStore()
	}
	if opts.Events == nil {
		opts.Events = noopPublisher{}
	}
	if opts.Mailer == nil {
		opts.Mailer = noopMailer{}
	}

	bctx, cancel := context.WithCancel(context.Background())
	b := &Backend{
		latency:   opts.Latency,
		tokens:    auth.NewTokenManager(opts.JWTSecret, opts.TokenTTL).WithClock(opts.Now),
		repo:      opts.Repo,
		images:    opts.Images,
		events:    opts.Events,
		mailer:    opts.Mailer,
		metrics:   opts.Metrics,
		now:       opts.Now,
		log:       log.Named("MockBackend"),
		regions:   seedRegions(),
		districts: seedDistricts(),
		cities:    seedCities(),
		users:     make(map[int64]*user),
		hits:      make(map[string]int64),
		tasks:     make(map[string]*logTask),
		ctx:       bctx,
		cancel:    cancel,
	}
	b.categories = seedCategories()
	b.nextCategoryID = maxCategoryID(b.categories)

	if err := b.seedUsers(); err != nil {
		cancel()
		return nil, err
	}
	if !opts.SkipSeedAds {
		if err := b.seedAds(ctx); err != nil {
			cancel()
			return nil, err
		}
	}
	b.log.Info("Mock backend ready",
		zap.Duration("latency", b.latency),
		zap.Int("users", len(b.users)),
		zap.Int("regions", len(b.regions)))
	return b, nil
}

func (b *Backend) seedUsers() error {
	hash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return err
	}
	registered := b.now().UTC().Add(-30 * 24 * time.Hour)
	for _, p := range []domain.UserProfile{
		{Email: SeedUserEmail, FirstName: "Anna", LastName: "Kovalenko", Phone: "+375291112233", CityID: 100, Roles: []string{domain.RoleUser}},
		{Email: SeedAdminEmail, FirstName: "Admin", Phone: "+375290000000", CityID: 200, Roles: []string{domain.RoleUser, domain.RoleAdmin}},
	} {
		b.nextUserID++
		p.ID = b.nextUserID
		p.RegisteredAt = registered
		b.users[p.ID] = &user{profile: p, passwordHash: hash}
	}
	return nil
}

func (b *Backend) seedAds(ctx context.Context) error {
	now := b.now().UTC()
	for _, s := range seedAds() {
		seller := b.userByEmail(s.sellerEmail)
		ad := &domain.Advertisement{
			Title:       s.title,
			Description: s.description,
			Price:       s.price,
			Condition:   s.condition,
			Status:      s.status,
			SellerID:    seller.profile.ID,
			CityID:      s.cityID,
			CategoryID:  s.categoryID,
			Images:      []domain.Image{},
			CreatedAt:   now.Add(-s.age),
		}
		if err := b.repo.Create(ctx, ad); err != nil {
			return fmt.Errorf("seed advertisement %q: %w", s.title, err)
		}
	}
	return nil
}

// Close stops background log report tasks and waits for them. Later
// GenerateLogReport calls fail with ErrUnavailable.
func (b *Backend) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()
	b.wg.Wait()
}

// delay emulates network latency and honors cancellation.
func (b *Backend) delay(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// authorize validates the token and, when role is set, requires it.
func (b *Backend) authorize(token, role string) (*auth.Claims, error) {
	claims, err := b.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	_, exists := b.users[claims.UserID]
	b.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthorized)
	}
	if role != "" && !claims.HasRole(role) {
		return nil, fmt.Errorf("%w: role %s required", domain.ErrForbidden, role)
	}
	return claims, nil
}

func (b *Backend) userByEmail(email string) *user {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range b.users {
		if strings.ToLower(u.profile.Email) == email {
			return u
		}
	}
	return nil
}

func (b *Backend) publish(ctx context.Context, subject string, ad *domain.Advertisement) {
	if err := b.events.Publish(ctx, subject, ad); err != nil {
		b.log.Warn("Failed to publish advertisement event",
			zap.String("subject", subject), zap.Int64("ad_id", ad.ID), zap.Error(err))
	}
}
