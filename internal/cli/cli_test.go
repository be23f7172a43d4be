package cli_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/backend/mock"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/cli"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/session"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	app     *cli.App
	out     *bytes.Buffer
	backend *mock.Backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend, err := mock.New(context.Background(), mock.Options{JWTSecret: "cli-secret"}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(backend.Close)

	out := &bytes.Buffer{}
	app := cli.NewApp(backend, session.NewMemoryStorage(), out, logger.NewNop())
	return &harness{t: t, app: app, out: out, backend: backend}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	h.out.Reset()
	cmd := cli.NewRootCmd(h.app)
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return h.out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "classifieds %v", args)
	return out
}

func (h *harness) login(email string) {
	h.t.Helper()
	h.mustRun("login", "--email", email, "--password", mock.SeedPassword)
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Not signed in\n", h.mustRun("whoami"))

	out := h.mustRun("login", "--email", mock.SeedUserEmail, "--password", mock.SeedPassword)
	assert.Contains(t, out, "Signed in as "+mock.SeedUserEmail)

	out = h.mustRun("whoami")
	assert.Contains(t, out, "Anna Kovalenko")
	assert.Contains(t, out, "Active ads: 2")

	h.mustRun("logout")
	assert.Equal(t, "Not signed in\n", h.mustRun("whoami"))
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("login", "--email", mock.SeedUserEmail, "--password", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password.", cli.Message(err))
}

func TestLogin_PasswordFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv("CLASSIFIEDS_PASSWORD", mock.SeedPassword)
	out := h.mustRun("login", "--email", mock.SeedAdminEmail)
	assert.Contains(t, out, "Signed in as "+mock.SeedAdminEmail)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("register", "--email", "new@classifieds.by", "--password", "longenough",
		"--first-name", "Nina", "--city", "110")
	assert.Contains(t, out, "Account new@classifieds.by created")

	out = h.mustRun("login", "--email", "new@classifieds.by", "--password", "longenough")
	assert.Contains(t, out, "Signed in")

	_, err := h.run("register", "--email", "bad", "--password", "short")
	require.Error(t, err)
	msg := cli.Message(err)
	assert.Contains(t, msg, "email:")
	assert.Contains(t, msg, "password:")
	assert.Contains(t, msg, "firstName: is required")
}

func TestProfile(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("profile", "1")
	assert.Contains(t, out, "Anna Kovalenko")
	assert.NotContains(t, out, "Email:")

	_, err := h.run("profile")
	require.Error(t, err)
	assert.Equal(t, "Please log in or pass a user id.", cli.Message(err))

	h.login(mock.SeedUserEmail)
	out = h.mustRun("profile")
	assert.Contains(t, out, "Email:      "+mock.SeedUserEmail)

	out = h.mustRun("profile", "update", "--phone", "+375440000000")
	assert.Contains(t, out, "Profile saved")
	assert.Contains(t, out, "+375440000000")
	assert.Contains(t, out, "Anna Kovalenko")
	assert.Contains(t, h.mustRun("whoami"), "+375440000000")
}

func TestSearch(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{name: "keyword", args: []string{"search", "bike"}, want: []string{"Mountain bike Stels", "Road bike Merida"}, notWant: []string{"iPhone"}},
		{name: "category subtree", args: []string{"search", "--category", "2"}, want: []string{"Mountain bike Stels", "Road bike Merida", "Mountain bikes"}},
		{name: "district", args: []string{"search", "--region", "1", "--district", "11"}, want: []string{"Road bike Merida"}, notWant: []string{"Mountain bike Stels"}},
		{name: "city only", args: []string{"search", "--city", "300"}, want: []string{"Garden hose 20m", "Page 1 of 1, 1 advertisements"}},
		{name: "price range", args: []string{"search", "--min-price", "400", "--max-price", "1000"}, want: []string{"Road bike Merida", "iPhone 12"}, notWant: []string{"ThinkPad"}},
		{name: "nothing", args: []string{"search", "submarine"}, want: []string{"No advertisements found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.mustRun(tt.args...)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestSearch_Rejections(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"search", "--min-price", "abc"},
		{"search", "--max-price", "-1"},
		{"search", "--district", "10"},
		{"search", "--region", "1", "--district", "20"},
		{"search", "--region", "1", "--district", "10", "--city", "110"},
	} {
		_, err := h.run(args...)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%v", args)
	}
}

func TestLocations(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("locations")
	assert.Contains(t, out, "Minsk region")
	assert.Contains(t, out, "Grodno region")

	out = h.mustRun("locations", "--region", "2")
	assert.Contains(t, out, "Pinsk district")
	assert.NotContains(t, out, "Borisov")

	out = h.mustRun("locations", "--district", "11")
	assert.Contains(t, out, "Zhodino")

	out = h.mustRun("locations", "resolve", "111")
	assert.Equal(t, "Zhodino, Borisov district, Minsk region\n", out)

	_, err := h.run("locations", "resolve", "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategories(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("categories")
	assert.Contains(t, out, "Transport (1)\n  Bicycles (2)\n    Mountain bikes (3)\n")

	assert.Equal(t, "Transport / Bicycles / Road bikes\n", h.mustRun("categories", "--path", "4"))

	_, err := h.run("categories", "--path", "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdLifecycle(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("ad", "create", "--title", "Tent")
	require.Error(t, err)
	assert.Equal(t, "Please log in first.", cli.Message(err))

	h.login(mock.SeedUserEmail)

	_, err = h.run("ad", "create", "--title", "Tent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, cli.Message(err), "price: is required")

	dir := t.TempDir()
	first := filepath.Join(dir, "front.jpg")
	second := filepath.Join(dir, "side.jpg")
	require.NoError(t, os.WriteFile(first, []byte("front"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("side"), 0o600))

	out := h.mustRun("ad", "create",
		"--title", "Tent", "--description", "Four person tent", "--price", "80",
		"--condition", "used_good", "--category", "9", "--city", "101",
		"--image", first, "--image", second, "--preview", "1")
	assert.Equal(t, "Advertisement 6 published\n", out)

	out = h.mustRun("ad", "show", "6")
	assert.Contains(t, out, "#6 Tent")
	assert.Contains(t, out, "Location:  Zaslavl, Minsk district, Minsk region")
	assert.Contains(t, out, "Category:  Home and garden")
	assert.Contains(t, out, "Preview:   ")
	assert.Contains(t, out, "Images:    2")

	out = h.mustRun("ad", "edit", "6", "--price", "75.5", "--clear-images")
	assert.Equal(t, "Advertisement 6 saved\n", out)
	out = h.mustRun("ad", "show", "6")
	assert.Contains(t, out, "Price:     75.50")
	assert.NotContains(t, out, "Preview:")

	h.login(mock.SeedAdminEmail)
	_, err = h.run("ad", "edit", "6", "--price", "1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.run("ad", "delete", "6")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	h.login(mock.SeedUserEmail)
	assert.Equal(t, "Advertisement 6 deleted\n", h.mustRun("ad", "delete", "6"))
	_, err = h.run("ad", "show", "6")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdCreate_PreviewOutOfRange(t *testing.T) {
	h := newHarness(t)
	h.login(mock.SeedUserEmail)

	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	_, err := h.run("ad", "create", "--image", path, "--preview", "3")
	require.Error(t, err)
	assert.Contains(t, cli.Message(err), "images: preview index 3 is out of range")
}

func TestAdmin(t *testing.T) {
	h := newHarness(t)

	h.login(mock.SeedUserEmail)
	_, err := h.run("admin", "hits")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "You are not allowed to perform this action.", cli.Message(err))

	h.login(mock.SeedAdminEmail)
	h.backend.RecordRequest("GET", "/api/ads", 200)

	out := h.mustRun("admin", "hits")
	assert.Contains(t, out, "/api/ads")

	out = h.mustRun("admin", "add-category", "--name", "Scooters", "--parent", "1")
	assert.Contains(t, out, "Created 1 categories")
	assert.Contains(t, out, "Scooters (10)")

	out = h.mustRun("admin", "logs", "generate", "--wait", "--poll", "10ms")
	assert.Contains(t, out, "GET /api/ads 200")

	report := filepath.Join(t.TempDir(), "report.log")
	h.mustRun("admin", "logs", "generate", "--wait", "--poll", "10ms", "-o", report)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "GET /api/ads 200")

	_, err = h.run("admin", "logs", "generate", "--date", "2999-01-01", "--wait", "--poll", "10ms")
	require.Error(t, err)
	assert.Contains(t, cli.Message(err), "failed")

	_, err = h.run("admin", "logs", "status", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "The requested item was not found.", cli.Message(domain.ErrNotFound))
	assert.Equal(t, "Something went wrong. Please try again later.", cli.Message(io.ErrUnexpectedEOF))
}
