package etl

// JoinUserProjects inner-joins masked users (master) with projects
// (detail) on user_id = owner_id. One output row per matching (user,
// project) pair; users with no projects and projects whose owner is nil
// or unknown are dropped. No deduplication is applied.
func JoinUserProjects(masked []MaskedUser, projects []ProjectRecord) []JoinedRecord {
	byID := make(map[int64]MaskedUser, len(masked))
	for _, m := range masked {
		byID[m.UserID] = m
	}

	joined := make([]JoinedRecord, 0, len(projects))
	for _, p := range projects {
		if p.OwnerID == nil {
			continue
		}
		m, ok := byID[*p.OwnerID]
		if !ok {
			continue
		}
		joined = append(joined, JoinedRecord{
			UserID:      m.UserID,
			MaskedEmail: m.MaskedEmail,
			ProjectID:   p.ProjectID,
		})
	}
	return joined
}
