package forms

import (
	"context"
	"strings"
	"testing"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListAdvertisements(ctx context.Context, c domain.SearchCriteria, page, size int) (*domain.Page, error) {
	args := m.Called(ctx, c, page, size)
	p, _ := args.Get(0).(*domain.Page)
	return p, args.Error(1)
}

func (m *MockBackend) GetAdvertisement(ctx context.Context, id int64) (*domain.AdvertisementDetail, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*domain.AdvertisementDetail)
	return d, args.Error(1)
}

func (m *MockBackend) CreateAdvertisement(ctx context.Context, p domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	args := m.Called(ctx, p, images, token)
	d, _ := args.Get(0).(*domain.AdvertisementDetail)
	return d, args.Error(1)
}

func (m *MockBackend) UpdateAdvertisement(ctx context.Context, id int64, p domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	args := m.Called(ctx, id, p, images, token)
	d, _ := args.Get(0).(*domain.AdvertisementDetail)
	return d, args.Error(1)
}

func (m *MockBackend) DeleteAdvertisement(ctx context.Context, id int64, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *MockBackend) Authenticate(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*domain.AuthResult)
	return r, args.Error(1)
}

func (m *MockBackend) RegisterUser(ctx context.Context, p domain.RegistrationPayload, avatar *domain.ImageUpload) (*domain.UserSummary, error) {
	args := m.Called(ctx, p, avatar)
	s, _ := args.Get(0).(*domain.UserSummary)
	return s, args.Error(1)
}

func (m *MockBackend) GetUserProfile(ctx context.Context, id int64, token string) (*domain.UserProfile, error) {
	args := m.Called(ctx, id, token)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}

func (m *MockBackend) UpdateUserProfile(ctx context.Context, p domain.ProfilePayload, avatar *domain.ImageUpload, token string) (*domain.UserProfile, error) {
	args := m.Called(ctx, p, avatar, token)
	up, _ := args.Get(0).(*domain.UserProfile)
	return up, args.Error(1)
}

func (m *MockBackend) ListRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]domain.Region)
	return r, args.Error(1)
}

func (m *MockBackend) ListDistricts(ctx context.Context, regionID int64) ([]domain.District, error) {
	args := m.Called(ctx, regionID)
	d, _ := args.Get(0).([]domain.District)
	return d, args.Error(1)
}

func (m *MockBackend) ListCities(ctx context.Context, districtID int64) ([]domain.City, error) {
	args := m.Called(ctx, districtID)
	c, _ := args.Get(0).([]domain.City)
	return c, args.Error(1)
}

func (m *MockBackend) ResolveCity(ctx context.Context, cityID int64) (*domain.CityLocation, error) {
	args := m.Called(ctx, cityID)
	l, _ := args.Get(0).(*domain.CityLocation)
	return l, args.Error(1)
}

func (m *MockBackend) ListCategoriesAsTree(ctx context.Context) ([]domain.CategoryNode, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).([]domain.CategoryNode)
	return n, args.Error(1)
}

func (m *MockBackend) CreateCategories(ctx context.Context, p []domain.NewCategory, token string) ([]domain.CategoryNode, error) {
	args := m.Called(ctx, p, token)
	n, _ := args.Get(0).([]domain.CategoryNode)
	return n, args.Error(1)
}

func (m *MockBackend) GetHitStatistics(ctx context.Context, token string) (map[string]int64, error) {
	args := m.Called(ctx, token)
	h, _ := args.Get(0).(map[string]int64)
	return h, args.Error(1)
}

func (m *MockBackend) GenerateLogReport(ctx context.Context, token, date string) (*domain.LogTask, error) {
	args := m.Called(ctx, token, date)
	t, _ := args.Get(0).(*domain.LogTask)
	return t, args.Error(1)
}

func (m *MockBackend) GetLogTaskStatus(ctx context.Context, token, taskID string) (*domain.LogTaskState, error) {
	args := m.Called(ctx, token, taskID)
	s, _ := args.Get(0).(*domain.LogTaskState)
	return s, args.Error(1)
}

func (m *MockBackend) DownloadGeneratedLog(ctx context.Context, token, taskID string) ([]byte, error) {
	args := m.Called(ctx, token, taskID)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockBackend) DownloadArchivedLog(ctx context.Context, token, date string) ([]byte, error) {
	args := m.Called(ctx, token, date)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Token() string {
	return m.Called().String(0)
}

func (m *MockSession) RefreshProfile(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Helpers ---

func price(v float64) *float64 { return &v }

func validAdForm() AdForm {
	return AdForm{
		Title:       "Mountain bike",
		Description: "Barely used, 21 speeds.",
		Price:       price(350),
		Condition:   domain.ConditionUsedLikeNew,
		CategoryID:  3,
		CityID:      100,
	}
}

func newService() (*Service, *MockBackend, *MockSession) {
	backend := new(MockBackend)
	session := new(MockSession)
	return NewService(backend, session, logger.NewNop()), backend, session
}

// --- Tests ---

func TestSubmitAd_NegativePriceRejectedWithoutBackendCall(t *testing.T) {
	svc, backend, session := newService()
	form := validAdForm()
	form.Price = price(-5)

	_, err := svc.SubmitAd(context.Background(), form)

	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must not be negative", verrs["price"])
	assert.Len(t, verrs, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	backend.AssertNotCalled(t, "CreateAdvertisement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	session.AssertNotCalled(t, "Token")
}

func TestValidateAd_FieldMessages(t *testing.T) {
	svc, _, _ := newService()

	form := AdForm{
		Title:       strings.Repeat("x", 101),
		Description: "",
		Condition:   "BROKEN",
		Status:      "DRAFT",
		Images: []domain.ImageUpload{
			{FileName: "a.jpg", Preview: true},
			{FileName: "b.jpg", Preview: true},
		},
	}
	err := svc.ValidateAd(form)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	assert.Equal(t, "must be at most 100 characters", verrs["title"])
	assert.Equal(t, "is required", verrs["description"])
	assert.Equal(t, "is required", verrs["price"])
	assert.Contains(t, verrs["condition"], "must be one of")
	assert.Contains(t, verrs["status"], "ACTIVE")
	assert.Equal(t, "is required", verrs["categoryId"])
	assert.Equal(t, "is required", verrs["cityId"])
	assert.Equal(t, "at most one image can be the preview", verrs["images"])
}

func TestValidateAd_TooManyImages(t *testing.T) {
	svc, _, _ := newService()
	form := validAdForm()
	form.Images = make([]domain.ImageUpload, 11)

	var verrs ValidationErrors
	require.ErrorAs(t, svc.ValidateAd(form), &verrs)
	assert.Equal(t, "must contain at most 10 items", verrs["images"])
}

func TestSubmitAd_Create(t *testing.T) {
	ctx := context.Background()
	svc, backend, session := newService()
	form := validAdForm()
	form.Images = []domain.ImageUpload{{FileName: "bike.jpg", Data: []byte{1}, Preview: true}}

	session.On("Token").Return("t1")
	want := &domain.AdvertisementDetail{Advertisement: domain.Advertisement{ID: 7, Title: form.Title}}
	backend.On("CreateAdvertisement", ctx, form.payload(), form.Images, "t1").Return(want, nil).Once()

	got, err := svc.SubmitAd(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	backend.AssertExpectations(t)
}

func TestSubmitAd_Update(t *testing.T) {
	ctx := context.Background()
	svc, backend, session := newService()
	form := AdFormFrom(domain.Advertisement{
		ID: 7, Title: "Bike", Description: "Old", Price: 10,
		Condition: domain.ConditionUsedFair, Status: domain.AdStatusSold, CategoryID: 3, CityID: 100,
	})

	session.On("Token").Return("t1")
	want := &domain.AdvertisementDetail{Advertisement: domain.Advertisement{ID: 7}}
	backend.On("UpdateAdvertisement", ctx, int64(7), form.payload(), []domain.ImageUpload(nil), "t1").Return(want, nil).Once()

	_, err := svc.SubmitAd(ctx, form)
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestSubmitAd_Unauthenticated(t *testing.T) {
	svc, backend, session := newService()
	session.On("Token").Return("")

	_, err := svc.SubmitAd(context.Background(), validAdForm())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	backend.AssertNotCalled(t, "CreateAdvertisement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAd_BackendErrorWrapped(t *testing.T) {
	svc, backend, session := newService()
	session.On("Token").Return("t1")
	backend.On("CreateAdvertisement", mock.Anything, mock.Anything, mock.Anything, "t1").Return(nil, domain.ErrForbidden).Once()

	_, err := svc.SubmitAd(context.Background(), validAdForm())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, backend, _ := newService()

	form := RegistrationForm{
		Email:           "new@user.by",
		Password:        "secret123",
		PasswordConfirm: "secret124",
		FirstName:       "Ivan",
		CityID:          100,
	}
	var verrs ValidationErrors
	_, err := svc.Register(ctx, form)
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "does not match", verrs["passwordConfirm"])
	backend.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything, mock.Anything)

	form.PasswordConfirm = form.Password
	backend.On("RegisterUser", ctx, mock.MatchedBy(func(p domain.RegistrationPayload) bool {
		return p.Email == "new@user.by" && p.Password == "secret123" && p.CityID == 100
	}), (*domain.ImageUpload)(nil)).Return(&domain.UserSummary{ID: 42, Email: "new@user.by"}, nil).Once()

	summary, err := svc.Register(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.ID)
}

func TestRegister_ShortPasswordAndBadEmail(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Register(context.Background(), RegistrationForm{
		Email: "not-an-email", Password: "short", PasswordConfirm: "short", FirstName: "A", CityID: 1,
	})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must be a valid email address", verrs["email"])
	assert.Equal(t, "must be at least 8 characters", verrs["password"])
}

func TestUpdateProfile_RefreshesSession(t *testing.T) {
	ctx := context.Background()
	svc, backend, session := newService()
	session.On("Token").Return("t1")
	session.On("RefreshProfile", ctx).Return(nil).Once()

	form := ProfileForm{FirstName: "Anna", Phone: "+375291234567", CityID: 100}
	backend.On("UpdateUserProfile", ctx, domain.ProfilePayload{FirstName: "Anna", Phone: "+375291234567", CityID: 100},
		(*domain.ImageUpload)(nil), "t1").Return(&domain.UserProfile{ID: 12, FirstName: "Anna"}, nil).Once()

	profile, err := svc.UpdateProfile(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Anna", profile.FirstName)
	session.AssertExpectations(t)
}

func TestValidationErrors_Error(t *testing.T) {
	err := ValidationErrors{"title": "is required", "price": "must not be negative"}
	assert.Equal(t, "price: must not be negative; title: is required", err.Error())
}
