package plugin

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyID is returned by ValidateUID for an Info without an ID.
var ErrEmptyID = errors.New("plugin: empty plugin ID")

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "town.versary.vstmommy")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	URL      string // Vendor homepage
	Email    string // Support contact
	Category string // Plugin category (e.g., "Fx|Analyzer")
}

// UID derives the class ID from the string ID. The result is a name-based
// (SHA-1) UUID, so the same ID always yields the same UID.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(i.ID))
}

// ValidateUID checks that a class ID can be derived from the plugin ID.
func (i Info) ValidateUID() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyID
	}
	return nil
}
