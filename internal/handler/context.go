package handler

type ContextKey string

var (
	RoleCtxKey  ContextKey = "role"
	SubCtxKey   ContextKey = "sub"
	EmployeeCtx ContextKey = "employee"
	WeekCtx     ContextKey = "week"
)
