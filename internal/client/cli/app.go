package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/lifedesk/internal/client/client"
	"github.com/dmitrijs2005/lifedesk/internal/client/config"
)

type App struct {
	config   *config.Config
	api      *client.Client
	session  *client.Session
	reader   *bufio.Reader
	out      io.Writer
	revealed *client.RevealedSecret
}

func NewApp(c *config.Config) (*App, error) {
	var store client.TokenStore = client.NewMemoryTokenStore()
	if c.TokenFile != "" {
		store = client.NewFileTokenStore(c.TokenFile)
	}

	api := client.New(c.ServerURL,
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithRevealTimeout(c.RevealTimeout),
	)

	return newApp(c, api, store, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, api *client.Client, store client.TokenStore, r *bufio.Reader, w io.Writer) *App {
	return &App{
		config:  c,
		api:     api,
		session: client.NewSession(store),
		reader:  r,
		out:     w,
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) getStatus() string {
	if u := a.session.User(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	if a.isLoggedIn() {
		return "(logged in)"
	}
	return ""
}

// Run resumes a saved session if there is one and then serves the REPL
// until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.forgetRevealed()

	ctx = client.WithSession(ctx, a.session)
	fmt.Fprintln(a.out, "Welcome to lifedesk CLI (type 'help' for commands)")

	if a.isLoggedIn() {
		if _, err := a.api.Me(ctx); err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				fmt.Fprintln(a.out, "Saved session has expired, please log in again")
			} else {
				fmt.Fprintln(a.out, "Could not resume session:", describe(err))
			}
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) forgetRevealed() {
	if a.revealed != nil {
		a.revealed.Mask()
		a.revealed = nil
	}
}

// describe turns client errors into short user-facing text.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrNoSession):
		return "not logged in"
	case errors.As(err, &apiErr):
		return apiErr.Message
	}
	return err.Error()
}
