package authz

import (
	"strings"

	"pet-adoption-api/internal/ports/auth"
)

// OwnerOrAdmin es la regla única de mutación sobre recursos con dueño:
// el caller es el owner del recurso, o tiene rol admin. Nada más.
func OwnerOrAdmin(claims auth.Claims, ownerID string) bool {
	callerID := strings.TrimSpace(claims.UserID)
	if callerID == "" {
		return false
	}
	if claims.IsAdmin() {
		return true
	}
	return callerID == strings.TrimSpace(ownerID)
}

// SelfOrAdmin gatea lecturas de recursos personales (ej. una solicitud
// de adopción solo la ve el solicitante o un admin).
func SelfOrAdmin(claims auth.Claims, subjectID string) bool {
	return OwnerOrAdmin(claims, subjectID)
}
