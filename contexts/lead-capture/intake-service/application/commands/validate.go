package commands

import (
	_ "embed"
	"regexp"
	"strings"

	"leadgate/contexts/lead-capture/intake-service/domain/entities"
	domainerrors "leadgate/contexts/lead-capture/intake-service/domain/errors"

	"gopkg.in/yaml.v3"
)

//go:embed blacklist.yaml
var blacklistDocument []byte

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// DenyList holds the disposable-mail domains rejected at intake.
type DenyList struct {
	domains map[string]struct{}
}

type blacklistFile struct {
	Domains []string `yaml:"domains"`
}

// NewDenyList parses the embedded blacklist and merges any extra domains
// supplied by configuration.
func NewDenyList(extra []string) (*DenyList, error) {
	var doc blacklistFile
	if err := yaml.Unmarshal(blacklistDocument, &doc); err != nil {
		return nil, err
	}
	domains := make(map[string]struct{}, len(doc.Domains)+len(extra))
	for _, d := range append(doc.Domains, extra...) {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains[d] = struct{}{}
		}
	}
	return &DenyList{domains: domains}, nil
}

func (d *DenyList) Contains(domain string) bool {
	if d == nil {
		return false
	}
	_, hit := d.domains[strings.ToLower(strings.TrimSpace(domain))]
	return hit
}

// validateLead runs the ordered intake checks and reports the first failure.
// The honeypot is checked by the pipeline before this runs; everything here
// produces an ordinary user-facing rejection.
func validateLead(lead entities.Lead, denyList *DenyList) error {
	if !lead.ValidateCreate() {
		return domainerrors.ErrMissingField
	}
	if !emailPattern.MatchString(lead.Email) {
		return domainerrors.ErrInvalidEmail
	}
	if at := strings.LastIndex(lead.Email, "@"); at >= 0 {
		if denyList.Contains(lead.Email[at+1:]) {
			return domainerrors.ErrDisposableDomain
		}
	}
	return nil
}
