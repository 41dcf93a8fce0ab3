package auth

import "vendorcover_backend/internal/models"

// IsPrivilegedRole - admin и owner имеют расширенные права
func IsPrivilegedRole(role models.UserRole) bool {
	return role == models.UserRoleAdmin || role == models.UserRoleOwner
}

// CanModerateProfiles - модерация профилей доступна только привилегированным ролям
func CanModerateProfiles(role models.UserRole) bool {
	return IsPrivilegedRole(role)
}

// CanGrantSubscriptions - выдача admin-granted доступа
func CanGrantSubscriptions(role models.UserRole) bool {
	return IsPrivilegedRole(role)
}
