package lifecycle

import "facility_workorders/internal/domain/entities"

// ProjectSystemInformation replays the timeline into the per-milestone
// snapshot. Last write wins per milestone.
func ProjectSystemInformation(timeline []entities.TimelineEvent) entities.SystemInformation {
	var info entities.SystemInformation
	for _, ev := range timeline {
		switch ev.Type {
		case entities.EventCreated:
			info.CreatedBy = snapshot(ev)
			if ev.Metadata["subcontractorId"] != "" {
				info.Assignment = snapshot(ev)
			}
		case entities.EventApproved:
			info.ApprovedBy = snapshot(ev)
		case entities.EventAssigned:
			info.Assignment = snapshot(ev)
		case entities.EventCompleted:
			info.Completion = snapshot(ev)
		}
	}
	return info
}

func snapshot(ev entities.TimelineEvent) *entities.MilestoneSnapshot {
	var meta map[string]string
	if len(ev.Metadata) > 0 {
		meta = make(map[string]string, len(ev.Metadata))
		for k, v := range ev.Metadata {
			meta[k] = v
		}
	}
	return &entities.MilestoneSnapshot{
		UserID:    ev.UserID,
		UserName:  ev.UserName,
		UserRole:  ev.UserRole,
		Timestamp: ev.Timestamp,
		Metadata:  meta,
	}
}
