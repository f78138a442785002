package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/state"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

const dateLayout = "2006-01-02"

var errNotLoggedIn = errors.New("not logged in, use signup or login first")

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials(username string) (string, string, error) {
	if username == "" {
		u, err := getSimpleText(a.reader, "Enter username", a.out)
		if err != nil {
			return "", "", err
		}
		username = u
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// SignUp creates an account and starts a session for it.
func (a *App) SignUp(ctx context.Context, username string) error {
	username, password, err := a.credentials(username)
	if err != nil {
		return err
	}
	token, err := a.auth.SignUp(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.engine.SetToken(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s\n", username)
	return nil
}

// Login authenticates against the server and starts a session. The
// session's fetch replays anything queued earlier.
func (a *App) Login(ctx context.Context, username string) error {
	username, password, err := a.credentials(username)
	if err != nil {
		return err
	}
	token, err := a.auth.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrTransport) {
			return fmt.Errorf("server unavailable, login needs a connection: %w", err)
		}
		return err
	}
	if err := a.engine.SetToken(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", username)
	return nil
}

// Logout ends the session and forgets the stored token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.engine.SetToken(ctx, ""); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// List prints the Collection State narrowed by rentals ("<=10", ">10",
// "any" or "").
func (a *App) List(ctx context.Context, rentals string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	f, err := state.ParseRentalFilter(rentals)
	if err != nil {
		return err
	}

	store := a.engine.Store()
	if err := store.Snapshot().FetchingError; err != nil {
		fmt.Fprintf(a.out, "Warning: last fetch failed: %v\n", err)
	}
	if f.Op != state.AnyRentals {
		fmt.Fprintf(a.out, "Showing %s\n", f)
	}
	a.printItems(store.Filter(f))
	return nil
}

// Search prints items whose title fuzzily matches query.
func (a *App) Search(ctx context.Context, query string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	a.printItems(a.engine.Store().Search(query))
	return nil
}

// Show prints one item in full.
func (a *App) Show(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	m, ok := a.engine.Store().Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}

	fmt.Fprintf(a.out, "ID:           %s\n", m.ID)
	fmt.Fprintf(a.out, "Title:        %s\n", m.Title)
	fmt.Fprintf(a.out, "Release date: %s\n", formatDate(m.ReleaseDate))
	fmt.Fprintf(a.out, "Rented:       %t\n", m.Rented)
	fmt.Fprintf(a.out, "Rentals:      %d\n", m.RentalCount)
	fmt.Fprintf(a.out, "Position:     %.6f, %.6f\n", m.Lat, m.Lng)
	if m.PhotoPath != "" {
		fmt.Fprintf(a.out, "Photo:        %s\n", m.PhotoPath)
	}
	return nil
}

// Sync re-runs the fetch protocol.
func (a *App) Sync(ctx context.Context) error {
	if err := a.engine.Sync(ctx); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return errNotLoggedIn
		}
		return err
	}
	n := len(a.engine.Store().Snapshot().Items)
	if a.online() {
		fmt.Fprintf(a.out, "Synced, %d items\n", n)
	} else {
		fmt.Fprintf(a.out, "Offline, %d locally changed items\n", n)
	}
	return nil
}

// Save stores m. A non-empty photo is uploaded first and its storage key
// recorded on m.
func (a *App) Save(ctx context.Context, m models.Movie, photo string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if photo != "" {
		key, err := a.uploadPhoto(ctx, photo)
		if err != nil {
			return err
		}
		m.PhotoPath = key
	}

	saved, err := a.engine.Save(ctx, m)
	if err != nil {
		return err
	}
	if saved.Persisted() {
		fmt.Fprintf(a.out, "Saved %s\n", saved.ID)
	}
	return nil
}

func (a *App) uploadPhoto(ctx context.Context, path string) (string, error) {
	if !a.online() {
		return "", errors.New("photo upload needs a connection")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	key, putURL, err := a.photos.PhotoUploadURL(ctx, a.engine.Token())
	if err != nil {
		return "", err
	}
	if err := a.photos.UploadPhoto(ctx, putURL, data); err != nil {
		return "", err
	}
	return key, nil
}

// Edit prompts for every editable field, starting from the stored record
// when id is set, and saves the result.
func (a *App) Edit(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var m models.Movie
	if id != "" {
		cur, ok := a.engine.Store().Find(id)
		if !ok {
			return fmt.Errorf("%w: %s", common.ErrNotFound, id)
		}
		m = cur
	}

	title, err := GetWithDefault(a.reader, "Title", m.Title, a.out)
	if err != nil {
		return err
	}
	m.Title = title

	date, err := GetWithDefault(a.reader, "Release date (YYYY-MM-DD)", formatDate(m.ReleaseDate), a.out)
	if err != nil {
		return err
	}
	if m.ReleaseDate, err = parseDate(date); err != nil {
		return err
	}

	rented, err := GetWithDefault(a.reader, "Rented (true/false)", strconv.FormatBool(m.Rented), a.out)
	if err != nil {
		return err
	}
	if m.Rented, err = strconv.ParseBool(rented); err != nil {
		return fmt.Errorf("%w: rented: %v", common.ErrValidation, err)
	}

	rentals, err := GetWithDefault(a.reader, "Number of rentals", strconv.Itoa(m.RentalCount), a.out)
	if err != nil {
		return err
	}
	if m.RentalCount, err = strconv.Atoi(rentals); err != nil {
		return fmt.Errorf("%w: rentals: %v", common.ErrValidation, err)
	}

	return a.Save(ctx, m, "")
}

func (a *App) printItems(items []models.Movie) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items")
		return
	}
	for _, m := range items {
		fmt.Fprintln(a.out, formatMovie(m))
	}
}

func formatMovie(m models.Movie) string {
	id := m.ID
	if id == "" {
		id = "(pending)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", id, m.Title)
	if !m.ReleaseDate.IsZero() {
		fmt.Fprintf(&b, " (%s)", formatDate(m.ReleaseDate))
	}
	if m.Rented {
		b.WriteString("  rented")
	}
	fmt.Fprintf(&b, "  rentals: %d", m.RentalCount)
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: release date: %v", common.ErrValidation, err)
	}
	return t, nil
}
