package algorithms

// Условия оплаты контрпредложения
const (
	PaymentTerms5050         = "50_50"
	PaymentTerms3070         = "30_70"
	PaymentTermsFullUpfront  = "full_upfront"
	PaymentTermsOnCompletion = "upon_completion"
)

// PaymentSchedule - разбивка суммы на предоплату и постоплату.
// Инвариант: UpfrontAmount + CompletionAmount == исходная сумма.
type PaymentSchedule struct {
	UpfrontAmount    float64 `json:"upfront_amount"`
	CompletionAmount float64 `json:"completion_amount"`
}

// SplitSchedule вычисляет график платежей по сумме и условиям.
// Неизвестные условия трактуются как 50/50.
func SplitSchedule(amount float64, terms string) PaymentSchedule {
	switch terms {
	case PaymentTerms3070:
		upfront := amount * 0.3
		return PaymentSchedule{UpfrontAmount: upfront, CompletionAmount: amount - upfront}
	case PaymentTermsFullUpfront:
		return PaymentSchedule{UpfrontAmount: amount, CompletionAmount: 0}
	case PaymentTermsOnCompletion:
		return PaymentSchedule{UpfrontAmount: 0, CompletionAmount: amount}
	case PaymentTerms5050:
		fallthrough
	default:
		upfront := amount * 0.5
		return PaymentSchedule{UpfrontAmount: upfront, CompletionAmount: amount - upfront}
	}
}

// ValidPaymentTerms - допустимые значения для валидации DTO
func ValidPaymentTerms() []string {
	return []string{PaymentTerms5050, PaymentTerms3070, PaymentTermsFullUpfront, PaymentTermsOnCompletion}
}
