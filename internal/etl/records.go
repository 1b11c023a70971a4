package etl

// UserRecord is a raw row of the users source table, projected to the
// two columns the pipeline needs.
type UserRecord struct {
	ID    int64
	Email string
}

// ProjectRecord is a raw row of the projects source table.
// OwnerID is nil for projects with no owner; such rows never join.
type ProjectRecord struct {
	ProjectID int64
	OwnerID   *int64
}

// MaskedUser is a user record after email redaction. The original email
// is discarded; only the masked form exists from this point on.
type MaskedUser struct {
	UserID      int64
	MaskedEmail string
}

// JoinedRecord is one (user, project) pair produced by the inner join.
type JoinedRecord struct {
	UserID      int64
	MaskedEmail string
	ProjectID   int64
}

// ProjectCount is one destination row: the number of projects owned by
// a user. Users with zero projects do not appear at all.
type ProjectCount struct {
	UserID        int64
	MaskedEmail   string
	TotalProjects int32
}
