package jobs

import (
	"log"

	"messenger-backend/models"

	"gorm.io/gorm"
)

// SweepOrphanedMessages deletes messages whose sender or recipient no longer
// exists in the users table. The account-deletion hook normally handles the
// cascade; this sweep is the backstop for deletion events that never arrived.
func SweepOrphanedMessages(db *gorm.DB) func() {
	return func() {
		log.Println("Running job: SweepOrphanedMessages...")

		result := db.
			Where("sender_id NOT IN (?) OR recipient_id NOT IN (?)",
				db.Model(&models.User{}).Select("id"),
				db.Model(&models.User{}).Select("id"),
			).
			Delete(&models.Message{})
		if result.Error != nil {
			log.Printf("Error sweeping orphaned messages: %v", result.Error)
			return
		}

		if result.RowsAffected > 0 {
			log.Printf("Swept %d orphaned messages", result.RowsAffected)
		}
	}
}
