package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lifedesk/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for name, email and password, creates the account and
// starts a session for it.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Choose password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.forgetRevealed()
	u, err := a.api.Signup(ctx, name, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Name)
	return nil
}

// Login prompts for credentials. Logging in ends the user's session on any
// other device.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.forgetRevealed()
	u, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
	return nil
}

// Logout always clears the local session; a server-side failure is only
// reported as a warning.
func (a *App) Logout(ctx context.Context) error {
	a.forgetRevealed()
	if err := a.api.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Warning: server logout failed:", describe(err))
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>, member since %s\n", u.Name, u.Email, u.CreatedAt.Format("2006-01-02"))
	return nil
}

// DeleteAccount asks for confirmation and the account password.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "This deletes the account and every vault entry. Type 'delete' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "delete" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	password, err := getPassword("Account password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.forgetRevealed()
	if err := a.api.DeleteAccount(ctx, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}
