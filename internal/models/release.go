package models

// Release is a monthly release train, named YYYY-MM.
type Release struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"not null" json:"description"`
}

func (Release) TableName() string {
	return "releases"
}
