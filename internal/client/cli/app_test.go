package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/state"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	token   string
	store   *state.Store
	saved   []models.Movie
	syncs   int
	saveErr error
	syncErr error
}

func (f *fakeEngine) Token() string { return f.token }
func (f *fakeEngine) SetToken(_ context.Context, token string) error {
	f.token = token
	if token == "" {
		f.store.Dispatch(state.FetchSucceeded{})
	}
	return nil
}
func (f *fakeEngine) Sync(context.Context) error {
	f.syncs++
	if f.token == "" {
		return common.ErrUnauthorized
	}
	return f.syncErr
}
func (f *fakeEngine) Save(_ context.Context, m models.Movie) (models.Movie, error) {
	if f.saveErr != nil {
		return models.Movie{}, f.saveErr
	}
	if m.ID == "" {
		m.ID = "new-1"
	}
	f.saved = append(f.saved, m)
	f.store.Dispatch(state.SaveSucceeded{Item: m})
	return m, nil
}
func (f *fakeEngine) Store() *state.Store { return f.store }

type fakeAuth struct {
	user, password string
	err            error
}

func (f *fakeAuth) SignUp(_ context.Context, u, p string) (string, error) {
	f.user, f.password = u, p
	return "signup-" + u, f.err
}

func (f *fakeAuth) Login(_ context.Context, u, p string) (string, error) {
	f.user, f.password = u, p
	if f.err != nil {
		return "", f.err
	}
	return "tok-" + u, nil
}

type fakePhotos struct {
	token    string
	uploaded []byte
}

func (f *fakePhotos) PhotoUploadURL(_ context.Context, token string) (string, string, error) {
	f.token = token
	return "users/u1/2024/01/02/abc", "http://s3/put", nil
}

func (f *fakePhotos) UploadPhoto(_ context.Context, _ string, data []byte) error {
	f.uploaded = data
	return nil
}

type testApp struct {
	*App
	engine *fakeEngine
	auth   *fakeAuth
	photos *fakePhotos
	out    *bytes.Buffer
	online bool
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()

	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }
	t.Cleanup(func() { readPassword = old })

	ta := &testApp{
		engine: &fakeEngine{store: state.NewStore()},
		auth:   &fakeAuth{},
		photos: &fakePhotos{},
		out:    &bytes.Buffer{},
		online: true,
	}
	ta.App = &App{
		auth:   ta.auth,
		photos: ta.photos,
		engine: ta.engine,
		online: func() bool { return ta.online },
		logger: logging.Nop{},
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    ta.out,
	}
	return ta
}

func (ta *testApp) loggedIn(items ...models.Movie) *testApp {
	ta.engine.token = "tok"
	ta.engine.store.Dispatch(state.FetchSucceeded{Items: items})
	return ta
}

func TestApp_Login(t *testing.T) {
	ta := newTestApp(t, "bob\n")

	require.NoError(t, ta.Login(context.Background(), ""))

	assert.Equal(t, "bob", ta.auth.user)
	assert.Equal(t, "pw", ta.auth.password)
	assert.Equal(t, "tok-bob", ta.engine.token)
	assert.Contains(t, ta.out.String(), "Logged in as bob")
	assert.True(t, ta.isLoggedIn())
}

func TestApp_LoginServerDown(t *testing.T) {
	ta := newTestApp(t, "")
	ta.auth.err = common.ErrTransport

	err := ta.Login(context.Background(), "bob")
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.Contains(t, err.Error(), "login needs a connection")
	assert.Empty(t, ta.engine.token)
}

func TestApp_SignUpAndLogout(t *testing.T) {
	ta := newTestApp(t, "")

	require.NoError(t, ta.SignUp(context.Background(), "alice"))
	assert.Equal(t, "signup-alice", ta.engine.token)

	require.NoError(t, ta.Logout(context.Background()))
	assert.False(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Logged out")
}

func TestApp_RequiresLogin(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	assert.ErrorIs(t, ta.List(ctx, ""), errNotLoggedIn)
	assert.ErrorIs(t, ta.Show(ctx, "1"), errNotLoggedIn)
	assert.ErrorIs(t, ta.Search(ctx, "x"), errNotLoggedIn)
	assert.ErrorIs(t, ta.Edit(ctx, ""), errNotLoggedIn)
	assert.ErrorIs(t, ta.Save(ctx, models.Movie{Title: "x"}, ""), errNotLoggedIn)
	assert.ErrorIs(t, ta.Sync(ctx), errNotLoggedIn)
}

func TestApp_ListShowSearch(t *testing.T) {
	release := time.Date(1972, 3, 24, 0, 0, 0, 0, time.UTC)
	ta := newTestApp(t, "").loggedIn(
		models.Movie{ID: "1", Title: "The Godfather", ReleaseDate: release, Rented: true, RentalCount: 3},
		models.Movie{Title: "Draft"},
	)
	ctx := context.Background()

	require.NoError(t, ta.List(ctx, ""))
	out := ta.out.String()
	assert.Contains(t, out, "1  The Godfather (1972-03-24)  rented  rentals: 3")
	assert.Contains(t, out, "(pending)  Draft  rentals: 0")

	ta.out.Reset()
	require.NoError(t, ta.Show(ctx, "1"))
	assert.Contains(t, ta.out.String(), "Title:        The Godfather")
	assert.Contains(t, ta.out.String(), "Release date: 1972-03-24")

	assert.ErrorIs(t, ta.Show(ctx, "2"), common.ErrNotFound)

	ta.out.Reset()
	require.NoError(t, ta.Search(ctx, "gdfthr"))
	assert.Contains(t, ta.out.String(), "The Godfather")
	assert.NotContains(t, ta.out.String(), "Draft")

	ta.out.Reset()
	require.NoError(t, ta.Search(ctx, "zzz"))
	assert.Equal(t, "No items\n", ta.out.String())
}

func TestApp_ListByRentals(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(
		models.Movie{ID: "1", Title: "Alien", RentalCount: 10},
		models.Movie{ID: "2", Title: "Heat", RentalCount: 11},
	)
	ctx := context.Background()

	require.NoError(t, ta.List(ctx, "<=10"))
	assert.Contains(t, ta.out.String(), "Showing <=10 rentals")
	assert.Contains(t, ta.out.String(), "Alien")
	assert.NotContains(t, ta.out.String(), "Heat")

	ta.out.Reset()
	require.NoError(t, ta.List(ctx, ">10"))
	assert.Contains(t, ta.out.String(), "Heat")
	assert.NotContains(t, ta.out.String(), "Alien")

	ta.out.Reset()
	require.NoError(t, ta.List(ctx, "any"))
	assert.NotContains(t, ta.out.String(), "Showing")
	assert.Contains(t, ta.out.String(), "Alien")
	assert.Contains(t, ta.out.String(), "Heat")

	ta.out.Reset()
	assert.ErrorIs(t, ta.List(ctx, "lots"), common.ErrValidation)
	assert.Empty(t, ta.out.String())
}

func TestApp_ListWarnsAboutFailedFetch(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(models.Movie{ID: "1", Title: "A"})
	ta.engine.store.Dispatch(state.FetchFailed{Err: common.ErrTransport})

	require.NoError(t, ta.List(context.Background(), "any"))
	assert.Contains(t, ta.out.String(), "last fetch failed")
	assert.Contains(t, ta.out.String(), "1  A")
}

func TestApp_SaveWithPhoto(t *testing.T) {
	ta := newTestApp(t, "").loggedIn()
	path := filepath.Join(t.TempDir(), "poster.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o600))

	require.NoError(t, ta.Save(context.Background(), models.Movie{Title: "Alien"}, path))

	require.Len(t, ta.engine.saved, 1)
	assert.Equal(t, "users/u1/2024/01/02/abc", ta.engine.saved[0].PhotoPath)
	assert.Equal(t, []byte("jpeg"), ta.photos.uploaded)
	assert.Equal(t, "tok", ta.photos.token)
	assert.Contains(t, ta.out.String(), "Saved new-1")
}

func TestApp_SavePhotoOffline(t *testing.T) {
	ta := newTestApp(t, "").loggedIn()
	ta.online = false

	err := ta.Save(context.Background(), models.Movie{Title: "Alien"}, "poster.jpg")
	assert.Error(t, err)
	assert.Empty(t, ta.engine.saved)
}

func TestApp_Edit(t *testing.T) {
	ta := newTestApp(t, "\n2001-02-03\ntrue\n5\n").loggedIn(models.Movie{ID: "42", Title: "A", Lat: 1.5})

	require.NoError(t, ta.Edit(context.Background(), "42"))

	require.Len(t, ta.engine.saved, 1)
	got := ta.engine.saved[0]
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC), got.ReleaseDate)
	assert.True(t, got.Rented)
	assert.Equal(t, 5, got.RentalCount)
	assert.Equal(t, 1.5, got.Lat)
}

func TestApp_EditErrors(t *testing.T) {
	ctx := context.Background()

	ta := newTestApp(t, "").loggedIn()
	assert.ErrorIs(t, ta.Edit(ctx, "missing"), common.ErrNotFound)

	ta = newTestApp(t, "Title\n\nfalse\nmany\n").loggedIn()
	assert.ErrorIs(t, ta.Edit(ctx, ""), common.ErrValidation)

	ta = newTestApp(t, "Title\nyesterday\n").loggedIn()
	assert.ErrorIs(t, ta.Edit(ctx, ""), common.ErrValidation)
	assert.Empty(t, ta.engine.saved)
}

func TestApp_Sync(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, "").loggedIn(models.Movie{ID: "1", Title: "A"})

	require.NoError(t, ta.Sync(ctx))
	assert.Contains(t, ta.out.String(), "Synced, 1 items")

	ta.online = false
	ta.out.Reset()
	require.NoError(t, ta.Sync(ctx))
	assert.Contains(t, ta.out.String(), "Offline, 1 locally changed items")

	ta.engine.syncErr = common.ErrTransport
	assert.ErrorIs(t, ta.Sync(ctx), common.ErrTransport)
}

func TestApp_Status(t *testing.T) {
	ta := newTestApp(t, "")
	assert.Equal(t, "(online, logged out)", ta.getStatus())

	ta.loggedIn()
	ta.online = false
	assert.Equal(t, "(offline)", ta.getStatus())
}

func TestPrintNotifier(t *testing.T) {
	var out bytes.Buffer
	printNotifier{w: &out}.Deferred(context.Background(), models.Movie{Title: "Alien"})
	assert.Contains(t, out.String(), `"Alien" saved locally`)
}
