package entities

import (
	"strings"
	"time"
)

// Lead is one captured marketing-site submission. Records are append-only:
// the pipeline creates them fully populated and never touches them again.
type Lead struct {
	LeadID           string
	FullName         string
	Email            string
	Phone            string
	ContactMethod    string
	Address          string
	City             string
	State            string
	ZipCode          string
	AgeConfirmed     bool
	ClientIP         string
	UserAgent        string
	Metadata         string
	FingerprintToken string
	CreatedAt        time.Time
}

// NormalizeEmail is the canonical form used for storage and duplicate lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ReferenceCode is the short human-readable token echoed into outbound
// notifications, derived from the lead id.
func (l Lead) ReferenceCode() string {
	id := strings.ReplaceAll(l.LeadID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func (l Lead) ValidateCreate() bool {
	return strings.TrimSpace(l.FullName) != "" &&
		strings.TrimSpace(l.Email) != "" &&
		strings.TrimSpace(l.Phone) != "" &&
		strings.TrimSpace(l.ContactMethod) != "" &&
		strings.TrimSpace(l.Address) != "" &&
		strings.TrimSpace(l.City) != "" &&
		strings.TrimSpace(l.State) != "" &&
		strings.TrimSpace(l.ZipCode) != ""
}
