package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"vendorcover_backend/internal/algorithms"
)

// RegisterGinRules подключает доменные правила к валидатору gin binding,
// чтобы теги binding:"payment_terms" работали в DTO.
func RegisterGinRules() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomRules(v)
	}
}

// registerCustomRules регистрирует доменные правила валидации.
func registerCustomRules(v *validator.Validate) {
	// payment_terms: значение должно входить в список поддерживаемых схем оплаты.
	_ = v.RegisterValidation("payment_terms", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true // пустое значение отсекается правилом required, если оно задано
		}
		for _, terms := range algorithms.ValidPaymentTerms() {
			if value == terms {
				return true
			}
		}
		return false
	})
}
