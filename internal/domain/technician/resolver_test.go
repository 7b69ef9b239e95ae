package technician

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldstock/internal/core/apperror"
	"fieldstock/pkg/logger"
)

// memRepo is an in-memory Repository for resolver tests.
type memRepo struct {
	rows   []*Technician
	nextID int64
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Technician, error) {
	for _, t := range m.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("technician", id)
}

func (m *memRepo) FindByEmail(_ context.Context, email string) (*Technician, error) {
	for _, t := range m.rows {
		if t.Email != nil && *t.Email == email {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("technician", email)
}

func (m *memRepo) FindByBadge(_ context.Context, badge string) (*Technician, error) {
	for _, t := range m.rows {
		if t.Badge == badge {
			return t, nil
		}
	}
	return nil, apperror.NewNotFound("technician", badge)
}

func (m *memRepo) BadgeExists(_ context.Context, badge string) (bool, error) {
	for _, t := range m.rows {
		if t.Badge == badge {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Create(_ context.Context, t *Technician) error {
	m.nextID++
	t.ID = m.nextID
	m.rows = append(m.rows, t)
	return nil
}

func (m *memRepo) Update(_ context.Context, t *Technician) error {
	for i, row := range m.rows {
		if row.ID == t.ID {
			m.rows[i] = t
			return nil
		}
	}
	return apperror.NewNotFound("technician", t.ID)
}

func (m *memRepo) List(_ context.Context, activeOnly bool) ([]Technician, error) {
	out := make([]Technician, 0, len(m.rows))
	for _, t := range m.rows {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func newTestResolver(t *testing.T) (*Resolver, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	return NewResolver(repo, logger.Default()), repo
}

func TestResolve_CreatesOnFirstSighting(t *testing.T) {
	r, repo := newTestResolver(t)
	ctx := context.Background()

	got, created, err := r.Resolve(ctx, Sighting{
		Account:     "jdoe@example.com",
		DisplayName: "Jane Doe",
		AccountType: 1,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, "jdoe", got.Badge)
	require.NotNil(t, got.Email)
	assert.Equal(t, "jdoe@example.com", *got.Email)
	assert.True(t, got.Active)
	assert.Len(t, repo.rows, 1)
}

func TestResolve_NeverDuplicatesSameEmail(t *testing.T) {
	r, repo := newTestResolver(t)
	ctx := context.Background()

	first, created, err := r.Resolve(ctx, Sighting{Account: "jdoe@example.com", DisplayName: "Jane Doe"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := r.Resolve(ctx, Sighting{Account: "jdoe@example.com", DisplayName: "Jane Doe"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rows, 1)
}

func TestResolve_RefreshesNameOnResighting(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	_, _, err := r.Resolve(ctx, Sighting{Account: "jdoe@example.com", DisplayName: "Jane Doe"})
	require.NoError(t, err)

	got, created, err := r.Resolve(ctx, Sighting{Account: "jdoe@example.com", DisplayName: "Jane Doe-Martinez", AccountType: 2})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Doe-Martinez", got.LastName)
	require.NotNil(t, got.AccountType)
	assert.Equal(t, 2, *got.AccountType)
}

func TestResolve_MatchesBadgeWhenEmailUnknown(t *testing.T) {
	r, repo := newTestResolver(t)
	ctx := context.Background()

	// Pre-existing row keyed only by badge, as imported from legacy data.
	repo.rows = append(repo.rows, &Technician{ID: 7, FirstName: "Pedro", Badge: "pgomez", Active: true})
	repo.nextID = 7

	got, created, err := r.Resolve(ctx, Sighting{Account: "pgomez@example.com", DisplayName: "Pedro Gomez"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Gomez", got.LastName)
	assert.Len(t, repo.rows, 1)
}

func TestResolve_DisambiguatesBadgeCollision(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	first, _, err := r.Resolve(ctx, Sighting{Account: "asmith@alpha.example", DisplayName: "Ana Smith"})
	require.NoError(t, err)
	assert.Equal(t, "asmith", first.Badge)

	// Same local part, different account: must get a suffixed badge, not
	// collide and not reuse the first row.
	second, created, err := r.Resolve(ctx, Sighting{Account: "asmith@beta.example", DisplayName: "Andre Smith"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "asmith_1", second.Badge)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestResolve_SynthesizesBadgeWithoutEmail(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	got, created, err := r.Resolve(ctx, Sighting{DisplayName: "Luis Perez"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "luisperez", got.Badge)
	assert.Nil(t, got.Email)
}
