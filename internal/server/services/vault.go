package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/cryptox"
	"github.com/dmitrijs2005/lifedesk/internal/logging"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ExportLinkValidity is how long a vault export download link works.
const ExportLinkValidity = 15 * time.Minute

// ExportStore receives vault export snapshots.
type ExportStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// VaultEntryInput carries the fields of a new entry. Password is plaintext
// and only lives as long as the request.
type VaultEntryInput struct {
	Website    string
	Username   string
	Password   string
	CategoryID string
	Notes      string
}

// VaultEntryUpdate replaces an entry's fields. A nil Password keeps the
// stored secret.
type VaultEntryUpdate struct {
	Website    string
	Username   string
	Password   *string
	CategoryID string
	Notes      string
}

type ExportResult struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Entries   int
}

// VaultService stores credentials encrypted and reveals them only after the
// account password is confirmed.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.VaultCipher
	hasher      *cryptox.PasswordHasher
	store       ExportStore
	log         logging.Logger
	now         func() time.Time
}

// NewVaultService wires the service. store may be nil, which disables
// exports.
func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.VaultCipher,
	hasher *cryptox.PasswordHasher, store ExportStore, log logging.Logger) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		hasher:      hasher,
		store:       store,
		log:         log,
		now:         utcNow,
	}
}

func (s *VaultService) Create(ctx context.Context, userID string, in VaultEntryInput) (*models.VaultEntry, error) {
	if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}

	secret, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return nil, fmt.Errorf("encrypt secret: %w", err)
	}

	now := s.now()
	e := &models.VaultEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		Website:         in.Website,
		Username:        in.Username,
		EncryptedSecret: secret,
		CategoryID:      in.CategoryID,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repomanager.Vault(s.db).Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *VaultService) List(ctx context.Context, userID string) ([]models.VaultEntry, error) {
	return s.repomanager.Vault(s.db).ListByUser(ctx, userID)
}

func (s *VaultService) Get(ctx context.Context, userID, id string) (*models.VaultEntry, error) {
	return s.repomanager.Vault(s.db).GetByID(ctx, userID, id)
}

func (s *VaultService) Update(ctx context.Context, userID, id string, in VaultEntryUpdate) (*models.VaultEntry, error) {
	repo := s.repomanager.Vault(s.db)

	e, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != e.CategoryID {
		if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
			return nil, err
		}
	}

	if in.Password != nil {
		secret, err := s.cipher.Encrypt(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("encrypt secret: %w", err)
		}
		e.EncryptedSecret = secret
	}
	e.Website = in.Website
	e.Username = in.Username
	e.CategoryID = in.CategoryID
	e.Notes = in.Notes
	e.UpdatedAt = s.now()

	if err := repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *VaultService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Vault(s.db).SoftDelete(ctx, userID, id)
}

// Reveal returns the plaintext secret of one entry. The account password is
// checked before the entry is loaded, so a wrong password never touches
// ciphertext, whoever owns the entry.
func (s *VaultService) Reveal(ctx context.Context, userID, entryID, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		s.log.Warn(ctx, "vault reveal denied", "user_id", userID, "entry_id", entryID)
		return "", common.ErrorUnauthorized
	}

	e, err := s.repomanager.Vault(s.db).GetByID(ctx, userID, entryID)
	if err != nil {
		return "", err
	}

	plaintext, err := s.cipher.Decrypt(e.EncryptedSecret)
	if err != nil {
		s.log.Error(ctx, "vault entry cannot be decrypted", "entry_id", e.ID, "error", err)
		return "", err
	}
	return plaintext, nil
}

type exportedEntry struct {
	ID              string    `json:"id"`
	Website         string    `json:"website"`
	Username        string    `json:"username"`
	CategoryID      string    `json:"categoryId"`
	Notes           string    `json:"notes"`
	EncryptedSecret string    `json:"encryptedSecret"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type exportSnapshot struct {
	UserID     string          `json:"userId"`
	ExportedAt time.Time       `json:"exportedAt"`
	Entries    []exportedEntry `json:"entries"`
}

// Export uploads a ciphertext-only snapshot of the user's vault and returns
// a short-lived download link. It fails with common.ErrorUnavailable when no
// store is configured.
func (s *VaultService) Export(ctx context.Context, userID string) (*ExportResult, error) {
	if s.store == nil {
		return nil, common.ErrorUnavailable
	}

	entries, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snap := exportSnapshot{UserID: userID, ExportedAt: now, Entries: make([]exportedEntry, 0, len(entries))}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, exportedEntry{
			ID:              e.ID,
			Website:         e.Website,
			Username:        e.Username,
			CategoryID:      e.CategoryID,
			Notes:           e.Notes,
			EncryptedSecret: e.EncryptedSecret,
			CreatedAt:       e.CreatedAt,
			UpdatedAt:       e.UpdatedAt,
		})
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	key := exportKey(userID, now)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, ExportLinkValidity)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.log.Info(ctx, "vault exported", "user_id", userID, "entries", len(entries), "key", key)
	return &ExportResult{Key: key, URL: url, ExpiresAt: now.Add(ExportLinkValidity), Entries: len(entries)}, nil
}

func exportKey(userID string, d time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%02d/%02d/%v.json", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// checkCategory requires categoryID to be one of the user's vault categories.
func (s *VaultService) checkCategory(ctx context.Context, userID, categoryID string) error {
	c, err := s.repomanager.Categories(s.db).GetByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: unknown category", common.ErrorValidation)
		}
		return err
	}
	if c.Kind != models.CategoryKindVault {
		return fmt.Errorf("%w: category is not a vault category", common.ErrorValidation)
	}
	return nil
}
