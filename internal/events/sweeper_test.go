package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

type fakeConfinements struct {
	items   []models.Confinement
	deleted []string
}

func (f *fakeConfinements) ExpiredConfinements(ctx context.Context, now time.Time, limit int) ([]models.Confinement, error) {
	var out []models.Confinement
	for _, c := range f.items {
		if c.Expired(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConfinements) DeleteConfinement(ctx context.Context, guildID, userID string) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeReleaser struct {
	released []string
	fail     map[string]bool
}

func (f *fakeReleaser) Release(ctx context.Context, c models.Confinement) error {
	if f.fail[c.UserID] {
		return errors.New("missing permissions")
	}
	f.released = append(f.released, c.UserID)
	return nil
}

func TestSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeConfinements{items: []models.Confinement{
		{GuildID: "g1", UserID: "role-expired", RoleID: "jail", ExpiresAt: now.Add(-time.Minute)},
		{GuildID: "g1", UserID: "timeout-expired", ExpiresAt: now.Add(-time.Minute)},
		{GuildID: "g1", UserID: "still-jailed", RoleID: "jail", ExpiresAt: now.Add(time.Hour)},
		{GuildID: "g1", UserID: "stuck", RoleID: "jail", ExpiresAt: now.Add(-time.Minute)},
	}}
	releaser := &fakeReleaser{fail: map[string]bool{"stuck": true}}

	s := NewSweeper(store, releaser, time.Minute)
	s.now = func() time.Time { return now }

	n, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Sweep() = %v, want %v", n, 2)
	}
	if len(releaser.released) != 1 || releaser.released[0] != "role-expired" {
		t.Errorf("released = %v, want [role-expired]", releaser.released)
	}
	for _, id := range store.deleted {
		if id == "stuck" || id == "still-jailed" {
			t.Errorf("%s deleted too early", id)
		}
	}
}

func TestSweeperStartStop(t *testing.T) {
	s := NewSweeper(&fakeConfinements{}, &fakeReleaser{}, time.Hour)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}
