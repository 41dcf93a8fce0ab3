package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для доменных ошибок:
переговоры по заявкам, соглашения, подписки, профили.
*/

// =========================================================================
// Фабричные функции
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (409)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrPartialFailure - часть шагов многошаговой операции не выполнилась.
// Основной переход состояния уже применен, откат не выполняется.
func ErrPartialFailure(err error, domain, message string) *AppError {
	return Wrap(err, CodePartialFailure, domain, message, http.StatusInternalServerError)
}

// =========================================================================
// Negotiation (заявки и контрпредложения)
// =========================================================================

// ErrVersionConflict - запись была изменена другой сессией (optimistic lock).
var ErrVersionConflict = New(
	CodeConflict,
	"negotiation",
	"The record was modified by another session. Please refresh and retry.",
	http.StatusConflict,
)

// ErrAlreadyApplied - пользователь уже откликнулся на эту заявку.
var ErrAlreadyApplied = New(
	CodeAlreadyExists,
	"negotiation",
	"You have already applied to this job",
	http.StatusConflict,
)

// ErrJobNotOpen - операция возможна только для открытой заявки.
var ErrJobNotOpen = New(
	CodeInvalidStatus,
	"negotiation",
	"Job is not open",
	http.StatusConflict,
)

// ErrInvalidOfferAmount - сумма контрпредложения должна быть положительным конечным числом.
var ErrInvalidOfferAmount = New(
	CodeValidationFailed,
	"negotiation",
	"Offer amount must be a positive number",
	http.StatusBadRequest,
)

// ErrHireInProgress - финализация найма по этой заявке уже выполняется.
var ErrHireInProgress = New(
	CodeConflict,
	"negotiation",
	"Hire finalization for this job is already in progress",
	http.StatusConflict,
)

// ErrCannotWithdraw - отозвать отклик можно только в статусе pending.
var ErrCannotWithdraw = New(
	CodeInvalidStatus,
	"negotiation",
	"Only pending applications can be withdrawn",
	http.StatusConflict,
)

// =========================================================================
// Agreements
// =========================================================================

// ErrAgreementVoided - соглашение аннулировано, подтверждение невозможно.
var ErrAgreementVoided = New(
	CodeInvalidStatus,
	"agreement",
	"Agreement has been voided",
	http.StatusConflict,
)

// ErrNotAgreementParty - пользователь не является стороной соглашения.
var ErrNotAgreementParty = New(
	CodeForbidden,
	"agreement",
	"You are not a party to this agreement",
	http.StatusForbidden,
)

// =========================================================================
// Subscriptions & access
// =========================================================================

// ErrSubscriptionRequired - действие требует активной подписки.
var ErrSubscriptionRequired = New(
	CodeForbidden,
	"subscription",
	"An active subscription is required for this action",
	http.StatusForbidden,
)

// =========================================================================
// Profiles & users
// =========================================================================

// ErrProfileNotApproved - профиль вендора не прошел модерацию.
var ErrProfileNotApproved = New(
	CodeForbidden,
	"profile",
	"Your vendor profile has not been approved yet",
	http.StatusForbidden,
)

// ErrUserSuspended - аккаунт временно заблокирован.
var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

// ErrInsufficientPermissions - не-админ пытается выполнить админ-действие.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrInvalidCredentials - неверный email или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)
