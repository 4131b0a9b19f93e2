package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/client/models"
	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/filex"
	"github.com/dmitrijs2005/lifedesk/internal/netx"
)

const vaultKind = "vault"

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.api.Categories(ctx, "")
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Fprintf(a.out, "%s  %-12s %s\n", c.ID, c.Kind, c.Name)
	}
	return nil
}

func (a *App) List(ctx context.Context) error {
	entries, err := a.api.ListVault(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Vault is empty")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  %s  %s  %s\n", e.ID, e.Website, e.Username, e.Password)
	}
	return nil
}

// chooseCategory lists the vault categories and reads a choice by number.
// An empty answer keeps current, or picks the first category when current
// is empty.
func (a *App) chooseCategory(ctx context.Context, current string) (string, error) {
	cats, err := a.api.Categories(ctx, vaultKind)
	if err != nil {
		return "", err
	}
	if len(cats) == 0 {
		return "", fmt.Errorf("no vault categories available")
	}

	for i, c := range cats {
		marker := ""
		if c.ID == current {
			marker = " (current)"
		}
		fmt.Fprintf(a.out, "  %d) %s%s\n", i+1, c.Name, marker)
	}
	answer, err := getSimpleText(a.reader, "Category number", a.out)
	if err != nil {
		return "", err
	}
	if answer == "" {
		if current != "" {
			return current, nil
		}
		return cats[0].ID, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(cats) {
		return "", fmt.Errorf("invalid category choice %q", answer)
	}
	return cats[n-1].ID, nil
}

// Add prompts for a new vault entry. The entry password is read without
// echo and only travels to the server.
func (a *App) Add(ctx context.Context) error {
	website, err := getSimpleText(a.reader, "Website", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	secret, err := getPassword("Entry password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	categoryID, err := a.chooseCategory(ctx, "")
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}

	pw := string(secret)
	e, err := a.api.CreateVaultEntry(ctx, models.VaultEntryInput{
		Website:    website,
		Username:   username,
		Password:   &pw,
		CategoryID: categoryID,
		Notes:      notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved entry", e.ID)
	return nil
}

func orKeep(answer, current string) string {
	if answer == "" {
		return current
	}
	return answer
}

// Edit updates an entry field by field; empty answers keep current values.
func (a *App) Edit(ctx context.Context, id string) error {
	e, err := a.api.GetVaultEntry(ctx, id)
	if err != nil {
		return err
	}

	website, err := getSimpleText(a.reader, fmt.Sprintf("Website [%s]", e.Website), a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, fmt.Sprintf("Username [%s]", e.Username), a.out)
	if err != nil {
		return err
	}
	secret, err := getPassword("New entry password (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	categoryID, err := a.chooseCategory(ctx, e.CategoryID)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Notes (empty keeps current)", a.out)
	if err != nil {
		return err
	}

	in := models.VaultEntryInput{
		Website:    orKeep(website, e.Website),
		Username:   orKeep(username, e.Username),
		CategoryID: categoryID,
		Notes:      orKeep(notes, e.Notes),
	}
	if len(secret) > 0 {
		pw := string(secret)
		in.Password = &pw
	}

	if _, err := a.api.UpdateVaultEntry(ctx, id, in); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated entry", id)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteVaultEntry(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted entry", id)
	return nil
}

// Reveal asks for the account password and prints the entry's secret. The
// previously revealed secret, if any, is wiped first.
func (a *App) Reveal(ctx context.Context, id string) error {
	a.forgetRevealed()

	password, err := getPassword("Account password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	secret, err := a.api.Reveal(ctx, id, string(password))
	if err != nil {
		return err
	}
	a.revealed = secret

	v, ok := secret.Value()
	if !ok {
		return nil
	}
	fmt.Fprintf(a.out, "Password: %s\n(cleared from memory after %s)\n", v, a.config.RevealTimeout)
	return nil
}

// Export asks the server for a vault snapshot and downloads it through the
// presigned link into the current directory.
func (a *App) Export(ctx context.Context) error {
	link, err := a.api.ExportVault(ctx)
	if err != nil {
		return err
	}

	data, err := netx.DownloadPresignedURL(ctx, a.api.HTTPClient(), link.URL)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("lifedesk-export-%s.json", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(a.exportDir(), name)
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Exported %d entries to %s\n", link.Entries, path)
	return nil
}

func (a *App) exportDir() string {
	if a.config.ExportDir != "" {
		return a.config.ExportDir
	}
	return "."
}
