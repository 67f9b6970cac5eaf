package auth

// Role define los roles soportados por la API.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin es el único atajo de rol que reconocemos; todo lo demás es "user".
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
