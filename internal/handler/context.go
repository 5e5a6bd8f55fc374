package handler

type ContextKey string

var (
	RoleCtxKey  ContextKey = "role"
	SubCtxKey   ContextKey = "sub"
	MyInfoCtx   ContextKey = "myInfo"
	UserInfoCtx ContextKey = "userInfo"
	CarerCtx    ContextKey = "carer"
	ClientCtx   ContextKey = "client"
	LineItemCtx ContextKey = "lineItem"
	ShiftCtx    ContextKey = "shift"
	InvoiceCtx  ContextKey = "invoice"
)
