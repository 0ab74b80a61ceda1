// Package session holds the operator's credential state between runs: the
// bearer token, the server-assigned role, and a cached display name. All
// three are cleared together on logout or any 401.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Roles the backend may assign. Any other value is treated as not permitted.
const (
	RoleAdmin    = "admin"
	RoleExpert   = "expert"
	RolePromoter = "promoter"
)

// AllowedRoles lists every role that may use the client at all.
var AllowedRoles = []string{RoleAdmin, RoleExpert, RolePromoter}

// RoleAllowed reports whether role is in the permitted set.
func RoleAllowed(role string) bool {
	for _, r := range AllowedRoles {
		if role == r {
			return true
		}
	}
	return false
}

// Session is the persisted credential state.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// Empty reports whether no credential is stored.
func (s Session) Empty() bool { return strings.TrimSpace(s.Token) == "" }

// Store reads and writes the session file under a state directory.
type Store struct {
	Dir string
}

func (st Store) path() string { return filepath.Join(st.Dir, "session.json") }

// Load returns the stored session, or a zero session when none exists.
// A corrupt session file is treated as no session.
func (st Store) Load() (Session, error) {
	b, err := os.ReadFile(st.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, nil
	}
	return s, nil
}

// Save persists the session with owner-only permissions.
func (st Store) Save(s Session) error {
	if err := os.MkdirAll(st.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := st.path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, st.path())
}

// Clear removes the stored session. Missing file is not an error.
func (st Store) Clear() error {
	err := os.Remove(st.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Allowed is the view guard: it decides, locally and without panicking on
// malformed tokens, whether the session may enter a view restricted to the
// given roles. A false result means "clear the session and go to login".
//
// The decoded token is only used to reject expired credentials early; the
// authorization decision itself uses the server-assigned role.
func Allowed(s Session, roles ...string) bool {
	if s.Empty() {
		return false
	}
	if c := DecodeClaims(s.Token); c != nil && c.ExpiresAt != nil {
		if c.ExpiresAt.Before(time.Now()) {
			return false
		}
	}
	if len(roles) == 0 {
		return RoleAllowed(s.Role)
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
