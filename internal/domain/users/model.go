package users

import "time"

// Role refleja el rol persistido del usuario.
// El rol autoritativo para autorización viene en los claims del token;
// acá solo lo guardamos para listados de admin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User es el perfil de un usuario de la plataforma.
// La autenticación (password, tokens) vive en el Authenticator externo.
type User struct {
	ID string

	Name      string
	Email     string
	Phone     string
	Location  string
	AvatarURL string

	Role Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact es la vista mínima que exponen animals/adoptions al hidratar
// creador o solicitante.
type Contact struct {
	ID    string
	Name  string
	Email string
	Phone string
}
