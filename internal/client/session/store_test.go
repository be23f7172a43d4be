package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetUserProfile(ctx context.Context, id int64, token string) (*domain.UserProfile, error) {
	args := m.Called(ctx, id, token)
	p, _ := args.Get(0).(*domain.UserProfile)
	return p, args.Error(1)
}

type countingNavigator struct {
	calls atomic.Int32
}

func (n *countingNavigator) ToLogin() { n.calls.Add(1) }

var testAuth = domain.AuthResult{Token: "t1", UserID: 12, Email: "a@b.com", Roles: []string{domain.RoleUser}}

func testProfile() *domain.UserProfile {
	return &domain.UserProfile{ID: 12, Email: "a@b.com", FirstName: "Anna", Roles: []string{domain.RoleUser}}
}

func newStore(t *testing.T) (*Store, *MockFetcher, *MemoryStorage, *countingNavigator) {
	t.Helper()
	fetcher := new(MockFetcher)
	storage := NewMemoryStorage()
	nav := &countingNavigator{}
	return NewStore(storage, fetcher, nav, logger.NewNop()), fetcher, storage, nav
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	s, fetcher, storage, _ := newStore(t)
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(testProfile(), nil).Once()

	require.NoError(t, s.Login(ctx, testAuth))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "t1", s.Token())
	assert.Equal(t, domain.Identity{UserID: 12, Email: "a@b.com"}, s.Identity())
	assert.Equal(t, "Anna", s.Profile().FirstName)

	p, err := storage.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, Persisted{Token: "t1", Identity: domain.Identity{UserID: 12, Email: "a@b.com"}}, *p)
	fetcher.AssertExpectations(t)
}

func TestLogin_LogoutBeforeProfileArrives(t *testing.T) {
	ctx := context.Background()
	s, fetcher, storage, nav := newStore(t)

	started := make(chan struct{})
	release := make(chan struct{})
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(testProfile(), nil).Once()

	loginErr := make(chan error, 1)
	go func() { loginErr <- s.Login(ctx, testAuth) }()

	<-started
	assert.False(t, s.IsAuthenticated(), "not authenticated before the profile arrives")
	require.NoError(t, s.Logout(ctx))
	close(release)

	select {
	case err := <-loginErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("login did not return")
	}

	p, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, p, "nothing persisted after logout")
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Profile())
	assert.Equal(t, int32(1), nav.calls.Load())
}

func TestLogin_ProfileFailureLogsOut(t *testing.T) {
	ctx := context.Background()
	s, fetcher, storage, nav := newStore(t)
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(nil, domain.ErrUnavailable).Once()

	err := s.Login(ctx, testAuth)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	p, _ := storage.Load(ctx)
	assert.Nil(t, p)
	assert.Equal(t, int32(1), nav.calls.Load())
}

func TestInit_RestoresSession(t *testing.T) {
	ctx := context.Background()
	s, fetcher, storage, _ := newStore(t)
	require.NoError(t, storage.Save(ctx, Persisted{Token: "t1", Identity: domain.Identity{UserID: 12, Email: "a@b.com"}}))
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(testProfile(), nil).Once()

	assert.False(t, s.Initialized())
	require.NoError(t, s.Init(ctx))

	assert.True(t, s.Initialized())
	assert.True(t, s.IsAuthenticated())
}

func TestInit_RestoreFailureBehavesAsLogout(t *testing.T) {
	ctx := context.Background()
	s, fetcher, storage, nav := newStore(t)
	require.NoError(t, storage.Save(ctx, Persisted{Token: "expired", Identity: domain.Identity{UserID: 12}}))
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "expired").Return(nil, domain.ErrUnauthorized).Once()

	err := s.Init(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.True(t, s.Initialized())
	assert.False(t, s.IsAuthenticated())
	p, _ := storage.Load(ctx)
	assert.Nil(t, p)
	assert.Equal(t, int32(1), nav.calls.Load())
}

func TestInit_NothingStored(t *testing.T) {
	s, fetcher, _, nav := newStore(t)

	require.NoError(t, s.Init(context.Background()))

	assert.True(t, s.Initialized())
	assert.False(t, s.IsAuthenticated())
	fetcher.AssertNotCalled(t, "GetUserProfile", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, nav.calls.Load())
}

type brokenStorage struct{ MemoryStorage }

func (b *brokenStorage) Load(context.Context) (*Persisted, error) {
	return nil, errors.New("corrupted")
}

func TestInit_StorageFailure(t *testing.T) {
	fetcher := new(MockFetcher)
	s := NewStore(&brokenStorage{}, fetcher, nil, logger.NewNop())

	assert.Error(t, s.Init(context.Background()))
	assert.True(t, s.Initialized())
	assert.False(t, s.IsAuthenticated())
}

func TestRefreshProfile(t *testing.T) {
	ctx := context.Background()
	s, fetcher, _, _ := newStore(t)

	assert.ErrorIs(t, s.RefreshProfile(ctx), domain.ErrUnauthorized)

	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(testProfile(), nil).Once()
	require.NoError(t, s.Login(ctx, testAuth))

	updated := testProfile()
	updated.FirstName = "Hanna"
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(updated, nil).Once()
	require.NoError(t, s.RefreshProfile(ctx))
	assert.Equal(t, "Hanna", s.Profile().FirstName)

	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(nil, domain.ErrUnauthorized).Once()
	assert.ErrorIs(t, s.RefreshProfile(ctx), domain.ErrUnauthorized)
	assert.False(t, s.IsAuthenticated())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, fetcher, _, _ := newStore(t)
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(testProfile(), nil).Once()

	var states []State
	unsubscribe := s.Subscribe(func(st State) { states = append(states, st) })

	require.NoError(t, s.Login(ctx, testAuth))
	require.NotEmpty(t, states)
	assert.True(t, states[len(states)-1].Authenticated)

	unsubscribe()
	n := len(states)
	require.NoError(t, s.Logout(ctx))
	assert.Len(t, states, n)
}

// slowStorage blocks Save until release is closed.
type slowStorage struct {
	MemoryStorage
	saving  chan struct{}
	release chan struct{}
}

func newSlowStorage() *slowStorage {
	return &slowStorage{saving: make(chan struct{}), release: make(chan struct{})}
}

func (s *slowStorage) Save(ctx context.Context, p Persisted) error {
	close(s.saving)
	<-s.release
	return s.MemoryStorage.Save(ctx, p)
}

func TestLogin_ReadsDoNotWaitForStorage(t *testing.T) {
	ctx := context.Background()
	storage := newSlowStorage()
	fetcher := new(MockFetcher)
	fetcher.On("GetUserProfile", mock.Anything, int64(12), "t1").Return(testProfile(), nil).Once()
	s := NewStore(storage, fetcher, nil, logger.NewNop())

	loginErr := make(chan error, 1)
	go func() { loginErr <- s.Login(ctx, testAuth) }()
	<-storage.saving

	token := make(chan string, 1)
	go func() { token <- s.Token() }()
	select {
	case got := <-token:
		assert.Equal(t, "t1", got)
	case <-time.After(time.Second):
		t.Fatal("Token blocked behind a storage write")
	}
	assert.False(t, s.IsAuthenticated())

	close(storage.release)
	require.NoError(t, <-loginErr)
	assert.True(t, s.IsAuthenticated())
}

func TestLogout_DuringSlowSaveClearsStorage(t *testing.T) {
	ctx := context.Background()
	storage := newSlowStorage()
	fetcher := new(MockFetcher)
	fetcher.On("GetUserProfile", mock.Anything, mock.Anything, mock.Anything).Return(testProfile(), nil).Maybe()
	nav := &countingNavigator{}
	s := NewStore(storage, fetcher, nav, logger.NewNop())

	loginErr := make(chan error, 1)
	go func() { loginErr <- s.Login(ctx, testAuth) }()
	<-storage.saving

	logoutErr := make(chan error, 1)
	go func() { logoutErr <- s.Logout(ctx) }()
	require.Eventually(t, func() bool { return s.Token() == "" }, time.Second, 5*time.Millisecond)

	close(storage.release)
	assert.ErrorIs(t, <-loginErr, ErrSuperseded)
	require.NoError(t, <-logoutErr)

	p, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, int32(1), nav.calls.Load())
}
