package models

// user roles
const (
	RoleCustomer = "customer"
	RoleOperator = "operator"
)

// TokenPayload is the verified content of a session token
type TokenPayload struct {
	UserID   string
	UserName string
	Role     string
}
