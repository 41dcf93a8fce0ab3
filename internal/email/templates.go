package email

import "fmt"

// Шаблоны писем, дублирующих ключевые уведомления переговоров.
// Письма best-effort: сбой отправки не влияет на переход состояния.

func HiredEmail(to, vendorName, jobTitle string, amount float64) *Email {
	return &Email{
		To:      []string{to},
		Subject: "You've been hired: " + jobTitle,
		Body: fmt.Sprintf(
			"<p>Hi %s,</p><p>You have been hired for <b>%s</b> at $%.2f. "+
				"Please review and sign the subcontract agreement in your dashboard.</p>",
			vendorName, jobTitle, amount,
		),
	}
}

func NotSelectedEmail(to, jobTitle string) *Email {
	return &Email{
		To:      []string{to},
		Subject: "Update on your application",
		Body: fmt.Sprintf(
			"<p>The job <b>%s</b> has been filled by another vendor. "+
				"Thank you for applying.</p>",
			jobTitle,
		),
	}
}

func CounterOfferEmail(to, jobTitle string, amount float64) *Email {
	return &Email{
		To:      []string{to},
		Subject: "New counter offer: " + jobTitle,
		Body: fmt.Sprintf(
			"<p>You received a counter offer of $%.2f for <b>%s</b>. "+
				"Open the job to respond.</p>",
			amount, jobTitle,
		),
	}
}
