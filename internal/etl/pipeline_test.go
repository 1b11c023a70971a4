package etl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"etl-go/internal/etl"
	"etl-go/internal/testutil"
)

func newPipeline(source *testutil.MemorySource, sink *testutil.MemorySink, policy etl.MaskPolicy) *etl.Pipeline {
	clock := testutil.FixedClock{T: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	return etl.NewPipeline(source, sink, etl.NewNopLogger(), clock, policy)
}

func sinkRowSet(t *testing.T, sink *testutil.MemorySink) map[etl.ProjectCount]bool {
	t.Helper()
	set := make(map[etl.ProjectCount]bool, len(sink.Rows))
	for _, r := range sink.Rows {
		set[r] = true
	}
	return set
}

func TestPipeline_Run(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		source := &testutil.MemorySource{
			Users: []etl.UserRecord{
				{ID: 1, Email: "a@x.com"},
				{ID: 2, Email: "b@y.com"},
			},
			Projects: []etl.ProjectRecord{
				{ProjectID: 10, OwnerID: testutil.OwnerID(1)},
				{ProjectID: 11, OwnerID: testutil.OwnerID(1)},
				{ProjectID: 12, OwnerID: testutil.OwnerID(2)},
			},
		}
		sink := &testutil.MemorySink{}

		report, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		want := map[etl.ProjectCount]bool{
			{UserID: 1, MaskedEmail: "a@***.com", TotalProjects: 2}: true,
			{UserID: 2, MaskedEmail: "b@***.com", TotalProjects: 1}: true,
		}
		got := sinkRowSet(t, sink)
		if len(got) != len(want) {
			t.Fatalf("sink rows = %v, want %v", sink.Rows, want)
		}
		for row := range want {
			if !got[row] {
				t.Errorf("missing destination row %+v", row)
			}
		}

		if report.UsersRead != 2 || report.ProjectsRead != 3 {
			t.Errorf("report reads = (%d, %d), want (2, 3)", report.UsersRead, report.ProjectsRead)
		}
		if report.JoinedRows != 3 || report.OutputRows != 2 {
			t.Errorf("report rows = (%d, %d), want (3, 2)", report.JoinedRows, report.OutputRows)
		}
	})

	t.Run("user with no projects produces no row", func(t *testing.T) {
		source := &testutil.MemorySource{
			Users: []etl.UserRecord{
				{ID: 1, Email: "a@x.com"},
				{ID: 2, Email: "b@y.com"},
			},
			Projects: []etl.ProjectRecord{
				{ProjectID: 10, OwnerID: testutil.OwnerID(1)},
			},
		}
		sink := &testutil.MemorySink{}

		if _, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		for _, row := range sink.Rows {
			if row.UserID == 2 {
				t.Errorf("user 2 has no projects but got row %+v (want absent, not zero-count)", row)
			}
		}
	})

	t.Run("orphan projects are excluded entirely", func(t *testing.T) {
		source := &testutil.MemorySource{
			Users: []etl.UserRecord{{ID: 1, Email: "a@x.com"}},
			Projects: []etl.ProjectRecord{
				{ProjectID: 10, OwnerID: testutil.OwnerID(1)},
				{ProjectID: 99, OwnerID: testutil.OwnerID(404)},
			},
		}
		sink := &testutil.MemorySink{}

		if _, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		byUser := map[int64]int32{}
		for _, row := range sink.Rows {
			byUser[row.UserID] = row.TotalProjects
		}
		if byUser[1] != 1 {
			t.Errorf("user 1 total = %d, want 1 (orphan project must not count)", byUser[1])
		}
		if _, ok := byUser[404]; ok {
			t.Error("orphan owner 404 appears in output")
		}
	})

	t.Run("overwrite replaces prior destination contents", func(t *testing.T) {
		source := &testutil.MemorySource{
			Users:    []etl.UserRecord{{ID: 5, Email: "e@q.com"}},
			Projects: []etl.ProjectRecord{{ProjectID: 50, OwnerID: testutil.OwnerID(5)}},
		}
		sink := &testutil.MemorySink{
			Rows: []etl.ProjectCount{
				{UserID: 1, MaskedEmail: "stale@***.com", TotalProjects: 9},
			},
		}

		if _, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		want := etl.ProjectCount{UserID: 5, MaskedEmail: "e@***.com", TotalProjects: 1}
		if len(sink.Rows) != 1 || sink.Rows[0] != want {
			t.Errorf("sink rows = %+v, want exactly [%+v]", sink.Rows, want)
		}
	})

	t.Run("source failure aborts before the sink", func(t *testing.T) {
		cause := errors.New("connection refused")
		source := &testutil.MemorySource{UsersErr: cause}
		sink := &testutil.MemorySink{}

		_, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background())
		if err == nil {
			t.Fatal("Run() expected error")
		}

		var stageErr *etl.StageError
		if !errors.As(err, &stageErr) {
			t.Fatalf("error = %v, want *StageError", err)
		}
		if stageErr.Stage != etl.StageReadUsers {
			t.Errorf("failed stage = %s, want %s", stageErr.Stage, etl.StageReadUsers)
		}
		if !errors.Is(err, cause) {
			t.Errorf("error chain does not contain the cause: %v", err)
		}
		if sink.Writes != 0 {
			t.Errorf("sink.Writes = %d, want 0 after source failure", sink.Writes)
		}
	})

	t.Run("malformed email aborts before the sink under reject", func(t *testing.T) {
		source := &testutil.MemorySource{
			Users:    []etl.UserRecord{{ID: 1, Email: "no-delimiter"}},
			Projects: []etl.ProjectRecord{{ProjectID: 10, OwnerID: testutil.OwnerID(1)}},
		}
		sink := &testutil.MemorySink{}

		_, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background())
		if !errors.Is(err, etl.ErrMalformedEmail) {
			t.Fatalf("error = %v, want ErrMalformedEmail", err)
		}

		var stageErr *etl.StageError
		if !errors.As(err, &stageErr) || stageErr.Stage != etl.StageMask {
			t.Errorf("error = %v, want StageError at %s", err, etl.StageMask)
		}
		if sink.Writes != 0 {
			t.Errorf("sink.Writes = %d, want 0 after mask failure", sink.Writes)
		}
	})

	t.Run("sink failure is reported as the write stage", func(t *testing.T) {
		cause := errors.New("permission denied")
		source := &testutil.MemorySource{
			Users:    []etl.UserRecord{{ID: 1, Email: "a@x.com"}},
			Projects: []etl.ProjectRecord{{ProjectID: 10, OwnerID: testutil.OwnerID(1)}},
		}
		sink := &testutil.MemorySink{WriteErr: cause}

		_, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background())
		var stageErr *etl.StageError
		if !errors.As(err, &stageErr) {
			t.Fatalf("error = %v, want *StageError", err)
		}
		if stageErr.Stage != etl.StageWrite {
			t.Errorf("failed stage = %s, want %s", stageErr.Stage, etl.StageWrite)
		}
		if !errors.Is(err, cause) {
			t.Errorf("error chain does not contain the cause: %v", err)
		}
	})

	t.Run("empty sources write an empty destination", func(t *testing.T) {
		source := &testutil.MemorySource{}
		sink := &testutil.MemorySink{
			Rows: []etl.ProjectCount{{UserID: 1, MaskedEmail: "stale@***.com", TotalProjects: 3}},
		}

		report, err := newPipeline(source, sink, etl.MaskPolicyReject).Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if sink.Writes != 1 {
			t.Errorf("sink.Writes = %d, want 1 (empty result still overwrites)", sink.Writes)
		}
		if len(sink.Rows) != 0 {
			t.Errorf("sink rows = %+v, want empty", sink.Rows)
		}
		if report.OutputRows != 0 {
			t.Errorf("report.OutputRows = %d, want 0", report.OutputRows)
		}
	})
}
