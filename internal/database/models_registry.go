package database

import "postboard/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Post{},
		&models.Comment{},
		&models.Report{},
		&models.PostLike{},
		&models.PostView{},
		&models.BlockedIP{},
	}
}
