package etl_test

import (
	"testing"

	"etl-go/internal/etl"
)

func countsByUser(t *testing.T, counts []etl.ProjectCount) map[int64]etl.ProjectCount {
	t.Helper()
	m := make(map[int64]etl.ProjectCount, len(counts))
	for _, c := range counts {
		if _, dup := m[c.UserID]; dup {
			t.Fatalf("duplicate output row for user %d", c.UserID)
		}
		m[c.UserID] = c
	}
	return m
}

func TestCountProjects(t *testing.T) {
	t.Run("counts rows per user", func(t *testing.T) {
		joined := []etl.JoinedRecord{
			{UserID: 1, MaskedEmail: "a@***.com", ProjectID: 10},
			{UserID: 1, MaskedEmail: "a@***.com", ProjectID: 11},
			{UserID: 2, MaskedEmail: "b@***.com", ProjectID: 12},
		}

		counts := etl.CountProjects(joined)
		if len(counts) != 2 {
			t.Fatalf("len(counts) = %d, want 2", len(counts))
		}

		byUser := countsByUser(t, counts)
		if got := byUser[1]; got.TotalProjects != 2 || got.MaskedEmail != "a@***.com" {
			t.Errorf("user 1 = %+v, want TotalProjects=2 MaskedEmail=a@***.com", got)
		}
		if got := byUser[2]; got.TotalProjects != 1 {
			t.Errorf("user 2 TotalProjects = %d, want 1", got.TotalProjects)
		}
	})

	t.Run("duplicates count toward the total", func(t *testing.T) {
		joined := []etl.JoinedRecord{
			{UserID: 1, MaskedEmail: "a@***.com", ProjectID: 10},
			{UserID: 1, MaskedEmail: "a@***.com", ProjectID: 10},
		}

		counts := etl.CountProjects(joined)
		byUser := countsByUser(t, counts)
		if got := byUser[1].TotalProjects; got != 2 {
			t.Errorf("TotalProjects = %d, want 2 (count, not distinct count)", got)
		}
	})

	t.Run("empty input yields no rows", func(t *testing.T) {
		counts := etl.CountProjects(nil)
		if len(counts) != 0 {
			t.Errorf("len(counts) = %d, want 0", len(counts))
		}
	})
}
