package repository

import "github.com/Nok1969/regent-work-order-system/internal/models"

// MapRepair translates a raw repairs row into the domain shape, resolving
// the requester/assignee ids against the supplied profile map. Unknown ids
// fall back to the baked-in sample set so a partial profile lookup never
// sinks the whole list.
func MapRepair(row RepairRow, profiles map[string]models.User) models.RepairRequest {
	fallback := models.SampleUserMap()

	resolve := func(id string) models.User {
		if u, ok := profiles[id]; ok {
			return u
		}
		if u, ok := fallback[id]; ok {
			return u
		}
		return models.SampleUsers[0]
	}

	r := models.RepairRequest{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		RoomNumber:  row.RoomNumber,
		Status:      models.RepairStatus(row.Status),
		Priority:    models.Priority(row.Priority),
		WorkType:    row.WorkType,
		RequestedBy: resolve(row.RequestedBy),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		CompletedAt: row.CompletedAt,
		Notes:       row.Notes,
		Attachments: row.Attachments,
	}
	if row.AssignedTo != nil && *row.AssignedTo != "" {
		u := resolve(*row.AssignedTo)
		r.AssignedTo = &u
	}
	return r
}

// MapRepairs maps a full result set against one profile lookup.
func MapRepairs(rows []RepairRow, profiles map[string]models.User) []models.RepairRequest {
	out := make([]models.RepairRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapRepair(row, profiles))
	}
	return out
}

// ProfileIDs collects the distinct requester/assignee ids of a result set
// for a batched profile lookup.
func ProfileIDs(rows []RepairRow) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, row := range rows {
		add(row.RequestedBy)
		if row.AssignedTo != nil {
			add(*row.AssignedTo)
		}
	}
	return ids
}
