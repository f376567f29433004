package database

import "aeroops/internal/models"

// CreateAuditLog records a platform audit entry. Best-effort: a failed
// audit write never fails the request that triggered it.
func CreateAuditLog(userID uint, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = DB.Create(&record).Error
}
