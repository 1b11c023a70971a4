package etl

type countKey struct {
	userID      int64
	maskedEmail string
}

// CountProjects groups joined rows by (user_id, masked_email) and
// counts the rows in each group, duplicates included. One output row
// per group; output order is not part of the contract.
func CountProjects(joined []JoinedRecord) []ProjectCount {
	counts := make(map[countKey]int32)
	for _, j := range joined {
		counts[countKey{userID: j.UserID, maskedEmail: j.MaskedEmail}]++
	}

	out := make([]ProjectCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ProjectCount{
			UserID:        k.userID,
			MaskedEmail:   k.maskedEmail,
			TotalProjects: n,
		})
	}
	return out
}
