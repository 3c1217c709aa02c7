// Package session persists the authenticated user context between CLI
// invocations: API token, user profile, client settings, the SKU condition
// catalog, and the catalog version recorded at last sync.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fieldaudit/internal/faults"
)

// Client settings supplied by the server as "true"/"false" strings.
// Unknown or missing settings read as false.
const (
	SettingPrintVoids        = "print_voids"
	SettingPrintConditions   = "print_conditions"
	SettingAllowStoreNotes   = "allow_store_notes"
	SettingPrintStoreNotes   = "print_store_notes"
	SettingNoNotesWarning    = "no_notes_warning"
	SettingScanForcesInStock = "scan_forces_in_stock"
	SettingAutosyncWifi      = "autosync_wifi"
)

// User is the authenticated auditor profile.
type User struct {
	ID         int    `json:"user_id"`
	FirstName  string `json:"user_first_name"`
	LastName   string `json:"user_last_name"`
	Email      string `json:"user_email"`
	RoleID     int    `json:"role_id"`
	RoleName   string `json:"role_name"`
	RoleRank   int    `json:"role_rank"`
	ClientID   int    `json:"client_id"`
	ClientName string `json:"client_name"`
}

// DisplayName renders the user for status output.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// SKUCondition is a server-defined condition auditors can attach to a
// product (damaged, mispriced, ...).
type SKUCondition struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Session is the persisted login state.
type Session struct {
	Token                    string            `json:"token"`
	User                     User              `json:"user"`
	Settings                 map[string]string `json:"settings"`
	SKUConditions            []SKUCondition    `json:"sku_conditions"`
	LastSyncedCatalogVersion int               `json:"last_synced_catalog_version"`
}

// Authenticated reports whether a login token is present.
func (s *Session) Authenticated() bool {
	return s != nil && strings.TrimSpace(s.Token) != ""
}

// SettingBool reads a client setting, defaulting to false.
func (s *Session) SettingBool(name string) bool {
	if s == nil || s.Settings == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(s.Settings[name]), "true")
}

// ConditionName resolves a SKU condition id, returning ok=false for ids the
// server never defined.
func (s *Session) ConditionName(id int) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, condition := range s.SKUConditions {
		if condition.ID == id {
			return condition.Name, true
		}
	}
	return "", false
}

// SyncNeeded reports whether the catalog content predates the engine's
// current catalog version, advising the user to sync.
func (s *Session) SyncNeeded(catalogVersion int) bool {
	return s == nil || s.LastSyncedCatalogVersion < catalogVersion
}

// Load reads a session file. A missing file yields an empty,
// unauthenticated session rather than an error.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, faults.Storage("read session", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, faults.Serialization("decode session", err)
	}
	return &sess, nil
}

// Save writes the session atomically via a temp file rename.
func Save(path string, sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return faults.Serialization("encode session", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return faults.Storage("create session directory", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return faults.Storage("write session", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return faults.Storage("replace session", err)
	}
	return nil
}

// Clear removes the session file; a missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return faults.Storage("remove session", err)
	}
	return nil
}
