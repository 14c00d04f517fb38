package models

// Service is an entry of the deployable service catalog.
type Service struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Service) TableName() string {
	return "services"
}
