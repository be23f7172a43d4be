package restclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/http/router"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/restclient"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/auth"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/backend/mock"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "restclient-test-secret"

func newServer(t *testing.T) (*restclient.Client, *mock.Backend) {
	t.Helper()
	log := logger.NewNop()
	backend, err := mock.New(context.Background(), mock.Options{JWTSecret: secret}, log)
	require.NoError(t, err)
	t.Cleanup(backend.Close)

	srv := httptest.NewServer(router.New(router.Deps{
		Backend:  backend,
		Tokens:   auth.NewTokenManager(secret, time.Hour),
		Recorder: backend,
		Logger:   log,
	}))
	t.Cleanup(srv.Close)
	return restclient.New(srv.URL, log, restclient.WithHTTPClient(srv.Client())), backend
}

func TestClient_BrowseAndResolve(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	regions, err := c.ListRegions(ctx)
	require.NoError(t, err)
	assert.Len(t, regions, 3)

	districts, err := c.ListDistricts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, districts, 2)

	cities, err := c.ListCities(ctx, districts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Minsk", cities[0].Name)

	loc, err := c.ResolveCity(ctx, 110)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loc.Region.ID)

	_, err = c.ResolveCity(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tree, err := c.ListCategoriesAsTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Transport", tree[0].Name)

	page, err := c.ListAdvertisements(ctx, domain.SearchCriteria{RegionID: 1, CategoryID: 2}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)

	detail, err := c.GetAdvertisement(ctx, page.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, page.Items[0].Title, detail.Title)
	assert.NotEmpty(t, detail.CategoryName)
}

func TestClient_AdLifecycle(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	anna, err := c.Authenticate(ctx, mock.SeedUserEmail, mock.SeedPassword)
	require.NoError(t, err)
	admin, err := c.Authenticate(ctx, mock.SeedAdminEmail, mock.SeedPassword)
	require.NoError(t, err)

	payload := domain.AdvertisementPayload{
		Title: "Sofa", Price: 150, Condition: domain.ConditionUsedGood, CityID: 100, CategoryID: 9,
	}
	_, err = c.CreateAdvertisement(ctx, payload, nil, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	created, err := c.CreateAdvertisement(ctx, payload, []domain.ImageUpload{
		{FileName: "a.jpg", Data: []byte("a")},
		{FileName: "b.jpg", Data: []byte("b"), Preview: true},
	}, anna.Token)
	require.NoError(t, err)
	require.Len(t, created.Images, 2)
	assert.True(t, created.Images[1].Preview)

	payload.Price = 140
	updated, err := c.UpdateAdvertisement(ctx, created.ID, payload, nil, anna.Token)
	require.NoError(t, err)
	assert.Equal(t, 140.0, updated.Price)
	assert.Len(t, updated.Images, 2, "nil images keep the stored ones")

	cleared, err := c.UpdateAdvertisement(ctx, created.ID, payload, []domain.ImageUpload{}, anna.Token)
	require.NoError(t, err)
	assert.Empty(t, cleared.Images)

	_, err = c.UpdateAdvertisement(ctx, created.ID, payload, nil, admin.Token)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	payload.Price = -1
	_, err = c.UpdateAdvertisement(ctx, created.ID, payload, nil, anna.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, c.DeleteAdvertisement(ctx, created.ID, anna.Token))
	_, err = c.GetAdvertisement(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Accounts(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, mock.SeedUserEmail, "nope-nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	summary, err := c.RegisterUser(ctx, domain.RegistrationPayload{
		Email: "olga@classifieds.by", Password: "longenough", FirstName: "Olga", CityID: 200,
	}, &domain.ImageUpload{FileName: "me.png", Data: []byte{1, 2}})
	require.NoError(t, err)

	_, err = c.RegisterUser(ctx, domain.RegistrationPayload{
		Email: "olga@classifieds.by", Password: "longenough", FirstName: "Olga", CityID: 200,
	}, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)

	res, err := c.Authenticate(ctx, "olga@classifieds.by", "longenough")
	require.NoError(t, err)
	assert.Equal(t, summary.ID, res.UserID)

	own, err := c.GetUserProfile(ctx, res.UserID, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "olga@classifieds.by", own.Email)
	assert.NotEmpty(t, own.AvatarURL)

	public, err := c.GetUserProfile(ctx, res.UserID, "")
	require.NoError(t, err)
	assert.Empty(t, public.Email)

	_, err = c.GetUserProfile(ctx, res.UserID, "broken-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	updated, err := c.UpdateUserProfile(ctx, domain.ProfilePayload{FirstName: "Olga", LastName: "P", CityID: 210}, nil, res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(210), updated.CityID)
}

func TestClient_Admin(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	admin, err := c.Authenticate(ctx, mock.SeedAdminEmail, mock.SeedPassword)
	require.NoError(t, err)
	anna, err := c.Authenticate(ctx, mock.SeedUserEmail, mock.SeedPassword)
	require.NoError(t, err)

	_, err = c.ListRegions(ctx)
	require.NoError(t, err)

	hits, err := c.GetHitStatistics(ctx, admin.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits["/api/locations/regions"])
	assert.Equal(t, int64(2), hits["/api/auth/login"])

	_, err = c.GetHitStatistics(ctx, anna.Token)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	created, err := c.CreateCategories(ctx, []domain.NewCategory{{Name: "Pets"}}, admin.Token)
	require.NoError(t, err)
	assert.Equal(t, "Pets", created[0].Name)

	task, err := c.GenerateLogReport(ctx, admin.Token, "")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st, err := c.GetLogTaskStatus(ctx, admin.Token, task.TaskID)
		return err == nil && st.Status == domain.LogTaskDone
	}, 2*time.Second, 10*time.Millisecond)

	content, err := c.DownloadGeneratedLog(ctx, admin.Token, task.TaskID)
	require.NoError(t, err)
	assert.Contains(t, string(content), "GET /api/locations/regions 200")

	_, err = c.GetLogTaskStatus(ctx, admin.Token, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.DownloadArchivedLog(ctx, admin.Token, "2000-01-01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.GenerateLogReport(ctx, admin.Token, "yesterday")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := restclient.New(srv.URL, logger.NewNop())
	_, err := c.ListRegions(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
