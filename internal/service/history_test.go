package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/elieceruiz/cleanup/internal/domain"
	"github.com/elieceruiz/cleanup/internal/imaging"
)

func validBlob(t *testing.T) string {
	t.Helper()
	blob, err := imaging.EncodeBlob(imaging.Placeholder(60, 40), 45)
	if err != nil {
		t.Fatalf("EncodeBlob: %v", err)
	}
	return blob
}

// completedSession seeds a finished session directly into the fake repo.
func completedSession(t *testing.T, repo *fakeSessionRepo, id string, start time.Time, blob string) {
	t.Helper()
	end := start.Add(5 * time.Minute)
	after := blob
	afterScore := 3
	improved := true
	duration := 300
	repo.sessions[id] = &domain.Session{
		ID:              id,
		Active:          false,
		StartTime:       start,
		EndTime:         &end,
		BeforeImage:     blob,
		BeforeScore:     9,
		AfterImage:      &after,
		AfterScore:      &afterScore,
		Improved:        &improved,
		DurationSeconds: &duration,
	}
}

func newTestHistoryService(repo *fakeSessionRepo, loc *time.Location) *HistoryService {
	return NewHistoryService(repo, loc, 300, 45)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	repo := newFakeSessionRepo()
	blob := validBlob(t)
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	completedSession(t, repo, "oldest", base, blob)
	completedSession(t, repo, "middle", base.Add(time.Hour), blob)
	completedSession(t, repo, "newest", base.Add(2*time.Hour), blob)

	svc := newTestHistoryService(repo, time.UTC)

	entries, total, err := svc.Recent(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "newest" || entries[1].ID != "middle" || entries[2].ID != "oldest" {
		t.Fatalf("wrong order: %s, %s, %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestRecentPaginates(t *testing.T) {
	repo := newFakeSessionRepo()
	blob := validBlob(t)
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		completedSession(t, repo, id, base.Add(time.Duration(i)*time.Hour), blob)
	}

	svc := newTestHistoryService(repo, time.UTC)

	entries, total, err := svc.Recent(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first is d, c, b, a; offset 1 limit 2 -> c, b.
	if entries[0].ID != "c" || entries[1].ID != "b" {
		t.Fatalf("wrong page: %s, %s", entries[0].ID, entries[1].ID)
	}
}

func TestRecentRejectsNegativeOffset(t *testing.T) {
	svc := newTestHistoryService(newFakeSessionRepo(), time.UTC)
	if _, _, err := svc.Recent(context.Background(), 10, -1); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestRecentSubstitutesPlaceholderForCorruptBlob(t *testing.T) {
	repo := newFakeSessionRepo()
	blob := validBlob(t)
	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	completedSession(t, repo, "good", base, blob)
	completedSession(t, repo, "bad", base.Add(time.Hour), "%%% corrupt %%%")

	svc := newTestHistoryService(repo, time.UTC)

	entries, _, err := svc.Recent(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("Recent must not fail on a corrupt record: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both records, got %d", len(entries))
	}

	bad, good := entries[0], entries[1]
	if bad.ID != "bad" || good.ID != "good" {
		t.Fatalf("unexpected order: %s, %s", bad.ID, good.ID)
	}

	if len(bad.Warnings) == 0 {
		t.Fatal("expected a warning for the corrupt record")
	}
	if !strings.Contains(bad.Warnings[0], "bad") {
		t.Fatalf("warning should name the session: %q", bad.Warnings[0])
	}
	if bad.BeforeImage == "" || bad.BeforeImage == "%%% corrupt %%%" {
		t.Fatal("expected placeholder blob for the corrupt image")
	}
	if _, err := imaging.DecodeBlob(bad.BeforeImage); err != nil {
		t.Fatalf("placeholder blob must decode: %v", err)
	}

	if len(good.Warnings) != 0 {
		t.Fatalf("intact record must not carry warnings: %v", good.Warnings)
	}
	if good.BeforeImage != blob {
		t.Fatal("intact record must keep its original blob")
	}
}

func TestRecentRendersInDisplayTimezone(t *testing.T) {
	repo := newFakeSessionRepo()
	blob := validBlob(t)
	start := time.Date(2026, 8, 10, 14, 0, 0, 0, time.UTC)
	completedSession(t, repo, "s1", start, blob)

	bogota, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	svc := newTestHistoryService(repo, bogota)

	entries, _, err := svc.Recent(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	got := entries[0].StartTime
	if got.Location().String() != "America/Bogota" {
		t.Fatalf("expected America/Bogota, got %s", got.Location())
	}
	if !got.Equal(start) {
		t.Fatal("timezone conversion must not change the instant")
	}
	if got.Hour() != 9 { // Bogota is UTC-5
		t.Fatalf("expected 09:00 local, got %02d:00", got.Hour())
	}
}

func TestWeeklyCountTrailingWindow(t *testing.T) {
	repo := newFakeSessionRepo()
	blob := validBlob(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	completedSession(t, repo, "inside", now.Add(-3*24*time.Hour), blob)
	completedSession(t, repo, "edge", now.Add(-7*24*time.Hour), blob)
	completedSession(t, repo, "outside", now.Add(-8*24*time.Hour), blob)
	// An open session inside the window must not count.
	repo.sessions["open"] = &domain.Session{
		ID:          "open",
		Active:      true,
		StartTime:   now.Add(-time.Hour),
		BeforeImage: blob,
		BeforeScore: 5,
	}

	svc := newTestHistoryService(repo, time.UTC)
	svc.now = func() time.Time { return now }

	count, err := svc.WeeklyCount(context.Background())
	if err != nil {
		t.Fatalf("WeeklyCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 sessions in the trailing week, got %d", count)
	}
}
