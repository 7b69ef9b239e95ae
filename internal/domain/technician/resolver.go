package technician

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fieldstock/internal/core/apperror"
	"fieldstock/pkg/logger"
)

// Sighting is the technician data carried by one raw work-order payload.
type Sighting struct {
	// Account is the feed account identifier, normally an email address.
	Account string

	// DisplayName is the full display name ("Jane Doe").
	DisplayName string

	// AccountType is the feed's account-type code.
	AccountType int
}

// Resolver maps feed sightings onto durable Technician rows,
// creating them on first sighting and refreshing names afterwards.
// It never produces two rows for the same email, within or across
// synchronization passes.
type Resolver struct {
	repo Repository
	log  *logger.Logger

	// now is swappable for deterministic badge synthesis in tests.
	now func() time.Time
}

// NewResolver creates a technician resolver.
func NewResolver(repo Repository, log *logger.Logger) *Resolver {
	return &Resolver{
		repo: repo,
		log:  log.WithComponent("technician-resolver"),
		now:  time.Now,
	}
}

// Resolve returns the local Technician for a sighting, creating it if
// needed. The second return value reports whether a new row was created.
//
// Lookup order: exact email match first, then the email local part
// against the badge field. Matches get their mutable fields refreshed.
func (r *Resolver) Resolve(ctx context.Context, s Sighting) (*Technician, bool, error) {
	email := strings.TrimSpace(s.Account)
	firstName, lastName := splitName(s.DisplayName)

	if email != "" {
		existing, err := r.repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return existing, false, r.refresh(ctx, existing, firstName, lastName, s.AccountType)
		case !apperror.IsNotFound(err):
			return nil, false, err
		}
	}

	localKey := badgeBase(email, firstName, lastName, r.now())
	existing, err := r.repo.FindByBadge(ctx, localKey)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, false, err
	}
	if err == nil {
		// Reuse the badge match only when it cannot belong to someone
		// else: a row with a different email is a distinct technician
		// whose badge merely shares the local key.
		if existing.Email == nil || email == "" || *existing.Email == email {
			if existing.Email == nil && email != "" {
				existing.Email = &email
				if err := r.repo.Update(ctx, existing); err != nil {
					return nil, false, err
				}
			}
			return existing, false, r.refresh(ctx, existing, firstName, lastName, s.AccountType)
		}
	}

	badge, err := r.allocateBadge(ctx, localKey)
	if err != nil {
		return nil, false, err
	}

	created := &Technician{
		FirstName: firstName,
		LastName:  lastName,
		Badge:     badge,
		Active:    true,
	}
	if email != "" {
		created.Email = &email
	}
	if s.AccountType != 0 {
		at := s.AccountType
		created.AccountType = &at
	}

	if err := r.repo.Create(ctx, created); err != nil {
		return nil, false, err
	}

	r.log.WithContext(ctx).Infow("technician created",
		"badge", created.Badge,
		"name", created.FullName(),
	)
	return created, true, nil
}

// refresh updates the mutable fields of a known technician in place when
// the sighting carries fresher data.
func (r *Resolver) refresh(ctx context.Context, t *Technician, firstName, lastName string, accountType int) error {
	changed := false
	if firstName != "" && t.FirstName != firstName {
		t.FirstName = firstName
		changed = true
	}
	if lastName != "" && t.LastName != lastName {
		t.LastName = lastName
		changed = true
	}
	if accountType != 0 && (t.AccountType == nil || *t.AccountType != accountType) {
		at := accountType
		t.AccountType = &at
		changed = true
	}
	if !changed {
		return nil
	}
	return r.repo.Update(ctx, t)
}

// allocateBadge returns base if it is free, otherwise base with the first
// free numeric suffix.
func (r *Resolver) allocateBadge(ctx context.Context, base string) (string, error) {
	badge := base
	for suffix := 1; ; suffix++ {
		taken, err := r.repo.BadgeExists(ctx, badge)
		if err != nil {
			return "", err
		}
		if !taken {
			return badge, nil
		}
		badge = fmt.Sprintf("%s_%d", base, suffix)
	}
}

// badgeBase derives the badge key: the email local part when available,
// the compacted display name otherwise, a timestamped fallback last.
func badgeBase(email, firstName, lastName string, now time.Time) string {
	if email != "" {
		if at := strings.Index(email, "@"); at > 0 {
			return email[:at]
		}
		return email
	}
	name := strings.ToLower(strings.ReplaceAll(firstName+lastName, " ", ""))
	if name != "" {
		return name
	}
	return fmt.Sprintf("tech%d", now.Unix())
}

// splitName splits a display name into first name and the remainder.
func splitName(displayName string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(displayName), " ", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "Technician", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
