package algorithms

import (
	"fmt"
	"time"

	"vendorcover_backend/internal/models"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityAction  Severity = "action"
	SeverityWaiting Severity = "waiting"
	SeveritySuccess Severity = "success"
)

// StatusInfo - производный статус заявки для конкретного пользователя
type StatusInfo struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	Icon     string   `json:"icon"`
}

// ResolveJobStatus вычисляет отображаемый статус заявки для пользователя.
// Чистая функция: никаких запросов, время передается явно.
// Возвращает (zero, false) для нераспознанного статуса заявки.
func ResolveJobStatus(
	job *models.HelpRequest,
	userID string,
	agreement *models.SubcontractAgreement,
	applications []models.JobApplication,
	now time.Time,
) (StatusInfo, bool) {
	switch job.Status {
	case models.JobStatusOpen:
		if job.RequesterID == userID {
			return resolveOpenForRequester(job, applications), true
		}
		return resolveOpenForApplicant(userID, applications), true

	case models.JobStatusFilled:
		return resolveFilled(job, userID, agreement, now), true

	case models.JobStatusCompleted:
		if job.PaymentStatus == models.PaymentStatusPaid {
			return StatusInfo{Label: "Complete & Paid", Severity: SeveritySuccess, Icon: "check-circle"}, true
		}
		if job.RequesterID == userID {
			return StatusInfo{Label: "Confirm Payment Required", Severity: SeverityAction, Icon: "dollar-sign"}, true
		}
		return StatusInfo{Label: "Awaiting Payment Confirmation", Severity: SeverityWaiting, Icon: "clock"}, true

	case models.JobStatusCancelled:
		return StatusInfo{Label: "Cancelled", Severity: SeverityInfo, Icon: "x-circle"}, true
	}

	return StatusInfo{}, false
}

// Приоритетный порядок для владельца открытой заявки:
// paused > контрпредложения вендоров > ожидание ответа на свои контрпредложения >
// необработанные отклики > пусто.
func resolveOpenForRequester(job *models.HelpRequest, applications []models.JobApplication) StatusInfo {
	if job.Paused {
		return StatusInfo{Label: "Paused - Hidden from Search", Severity: SeverityInfo, Icon: "pause"}
	}

	vendorCounters := 0
	posterCountersAwaiting := 0
	plainPending := 0
	for i := range applications {
		app := &applications[i]
		switch {
		case app.Status == models.ApplicationStatusCounterOfferSent && app.HasCounterAmount() && !app.CounterOffer.FromPoster:
			vendorCounters++
		case app.Status == models.ApplicationStatusCounterOfferSent && app.CounterOffer != nil && app.CounterOffer.FromPoster:
			posterCountersAwaiting++
		case app.Status == models.ApplicationStatusPending:
			plainPending++
		}
	}

	if vendorCounters > 0 {
		return StatusInfo{
			Label:    fmt.Sprintf("Review %d Counter %s", vendorCounters, plural(vendorCounters, "Offer", "Offers")),
			Severity: SeverityAction,
			Icon:     "dollar-sign",
		}
	}
	if posterCountersAwaiting > 0 {
		return StatusInfo{
			Label:    fmt.Sprintf("Awaiting %d Counter Offer %s", posterCountersAwaiting, plural(posterCountersAwaiting, "Response", "Responses")),
			Severity: SeverityWaiting,
			Icon:     "clock",
		}
	}
	if plainPending > 0 {
		return StatusInfo{
			Label:    fmt.Sprintf("Review %d %s", plainPending, plural(plainPending, "Application", "Applications")),
			Severity: SeverityAction,
			Icon:     "users",
		}
	}
	return StatusInfo{Label: "Open - Awaiting Applications", Severity: SeverityInfo, Icon: "eye"}
}

func resolveOpenForApplicant(userID string, applications []models.JobApplication) StatusInfo {
	var myApp *models.JobApplication
	for i := range applications {
		if applications[i].ApplicantID == userID {
			myApp = &applications[i]
			break
		}
	}

	if myApp == nil {
		return StatusInfo{Label: "Open Job", Severity: SeverityInfo, Icon: "eye"}
	}

	switch myApp.Status {
	case models.ApplicationStatusCounterOfferSent:
		if myApp.CounterOffer != nil && myApp.CounterOffer.FromPoster {
			return StatusInfo{Label: "Respond to Counter Offer", Severity: SeverityAction, Icon: "dollar-sign"}
		}
		return StatusInfo{Label: "Your Counter Offer - Awaiting Review", Severity: SeverityWaiting, Icon: "clock"}
	case models.ApplicationStatusCounterOfferAccepted:
		return StatusInfo{Label: "Offer Accepted - Awaiting Hire", Severity: SeverityWaiting, Icon: "clock"}
	case models.ApplicationStatusDeclined:
		return StatusInfo{Label: "Application Declined", Severity: SeverityInfo, Icon: "x-circle"}
	default:
		return StatusInfo{Label: "Application Under Review", Severity: SeverityWaiting, Icon: "clock"}
	}
}

func resolveFilled(job *models.HelpRequest, userID string, agreement *models.SubcontractAgreement, now time.Time) StatusInfo {
	if agreement != nil && agreement.Status == models.AgreementStatusActive {
		isRequester := agreement.RequesterID == userID
		isVendor := agreement.VendorID == userID

		needsMySignature := (isRequester && !agreement.RequesterConfirmed) || (isVendor && !agreement.VendorConfirmed)
		needsOtherSignature := (isRequester && !agreement.VendorConfirmed) || (isVendor && !agreement.RequesterConfirmed)

		if needsMySignature {
			return StatusInfo{Label: "Sign Agreement Required", Severity: SeverityAction, Icon: "file-signature"}
		}
		if needsOtherSignature {
			return StatusInfo{Label: "Waiting for Other Party to Sign", Severity: SeverityWaiting, Icon: "clock"}
		}
	}

	if job.EventDate != nil {
		eventDay := truncateToDay(*job.EventDate)
		today := truncateToDay(now)

		if eventDay.Equal(today) {
			return StatusInfo{Label: "Job Today - In Progress", Severity: SeverityAction, Icon: "calendar"}
		}
		if eventDay.After(today) {
			days := int(eventDay.Sub(today).Hours() / 24)
			return StatusInfo{
				Label:    fmt.Sprintf("Upcoming in %d %s", days, plural(days, "day", "days")),
				Severity: SeverityInfo,
				Icon:     "calendar",
			}
		}
	}
	return StatusInfo{Label: "Job Filled", Severity: SeverityInfo, Icon: "check-circle"}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
