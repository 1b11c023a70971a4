package testutil

import (
	"context"

	"etl-go/internal/etl"
)

// MemorySource is an in-memory Source for tests, with optional error
// injection per table.
type MemorySource struct {
	Users       []etl.UserRecord
	Projects    []etl.ProjectRecord
	UsersErr    error
	ProjectsErr error
}

func (s *MemorySource) ReadUsers(context.Context) ([]etl.UserRecord, error) {
	if s.UsersErr != nil {
		return nil, s.UsersErr
	}
	return append([]etl.UserRecord(nil), s.Users...), nil
}

func (s *MemorySource) ReadProjects(context.Context) ([]etl.ProjectRecord, error) {
	if s.ProjectsErr != nil {
		return nil, s.ProjectsErr
	}
	return append([]etl.ProjectRecord(nil), s.Projects...), nil
}

// MemorySink is an in-memory Sink for tests. Each successful write
// replaces Rows entirely, mirroring the overwrite contract.
type MemorySink struct {
	Rows     []etl.ProjectCount
	WriteErr error
	Writes   int
}

func (s *MemorySink) WriteProjectCounts(_ context.Context, rows []etl.ProjectCount) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Rows = append([]etl.ProjectCount(nil), rows...)
	s.Writes++
	return nil
}

// OwnerID builds a *int64 for ProjectRecord literals.
func OwnerID(id int64) *int64 { return &id }
