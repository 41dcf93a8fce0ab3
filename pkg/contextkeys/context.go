package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// ActorContextKey - ключ, по которому в context хранится ID действующего пользователя
const ActorContextKey = contextKey("actor_id")

// RoleContextKey - ключ для роли действующего пользователя
const RoleContextKey = contextKey("actor_role")
