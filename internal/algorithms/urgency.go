package algorithms

import (
	"sort"
	"time"

	"vendorcover_backend/internal/models"
)

// IsUrgent - заявка срочная, если дата события приходится на сегодня или завтра
func IsUrgent(eventDate *time.Time, now time.Time) bool {
	if eventDate == nil {
		return false
	}
	eventDay := truncateToDay(*eventDate)
	today := truncateToDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	return !eventDay.Before(today) && !eventDay.After(tomorrow)
}

// SortByUrgency сортирует заявки: срочные раньше несрочных,
// внутри групп - по возрастанию даты события. Заявки без даты идут последними.
func SortByUrgency(jobs []models.HelpRequest, now time.Time) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ui := IsUrgent(jobs[i].EventDate, now)
		uj := IsUrgent(jobs[j].EventDate, now)
		if ui != uj {
			return ui
		}
		if jobs[i].EventDate == nil {
			return false
		}
		if jobs[j].EventDate == nil {
			return true
		}
		return jobs[i].EventDate.Before(*jobs[j].EventDate)
	})
}
