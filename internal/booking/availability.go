package booking

import (
	"time"
)

// DefaultSlotStepMinutes is the stride between candidate slot starts.
const DefaultSlotStepMinutes = 30

// buildSlots steps through [windowStart, windowEnd) and emits every candidate
// [cursor, cursor+duration) that fits inside the window, starts strictly in
// the future, and does not overlap a busy commitment. Output is chronological.
func buildSlots(resource Resource, windowStart, windowEnd time.Time, duration, step time.Duration, busy []Commitment, now time.Time) []Slot {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	var slots []Slot
	for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(step) {
		if !cursor.After(now) {
			continue
		}
		end := cursor.Add(duration)
		if overlapsAny(cursor, end, busy) {
			continue
		}
		slots = append(slots, Slot{
			ResourceID:   resource.ID,
			ResourceName: resource.Name,
			StartAt:      cursor,
			EndAt:        end,
		})
	}
	return slots
}

// overlapsAny tests half-open overlap: [start,end) intersects [c.StartAt,c.EndAt)
// iff start < c.EndAt && c.StartAt < end.
func overlapsAny(start, end time.Time, busy []Commitment) bool {
	for _, c := range busy {
		if c.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// workingHours resolves the wall-clock window for a resource, falling back to
// the tenant defaults when the resource carries no explicit hours.
func workingHours(resource Resource, tenant Tenant) (start, end string) {
	start, end = tenant.WorkStart, tenant.WorkEnd
	if resource.WorkStart != nil && resource.WorkEnd != nil {
		start, end = *resource.WorkStart, *resource.WorkEnd
	}
	return start, end
}

func isWorkingDay(tenant Tenant, date time.Time) bool {
	wd := int(date.Weekday())
	for _, d := range tenant.WorkingDays {
		if d == wd {
			return true
		}
	}
	return false
}
