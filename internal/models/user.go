package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles issued by the identity provider.
const (
	RoleAdministrator  = "Administrator"
	RoleFleetManager   = "FleetManager"
	RoleTechnician     = "Technician"
	RoleInsuranceAgent = "InsuranceAgent"
	RoleHrManager      = "HrManager"
	RoleDriver         = "Driver"
)

// Roles lists every known role, in declaration order.
var Roles = []string{
	RoleAdministrator,
	RoleFleetManager,
	RoleTechnician,
	RoleInsuranceAgent,
	RoleHrManager,
	RoleDriver,
}

// User represents an account known to the chat service.
// The identifier is issued externally; the chat core only checks that it exists.
type User struct {
	ID         string `gorm:"primaryKey" json:"id" bson:"_id"`
	Role       string `gorm:"type:text;not null" json:"role" bson:"role"`
	Email      string `gorm:"type:text;uniqueIndex" json:"email" bson:"email"`
	FirstName  string `gorm:"type:text" json:"firstName" bson:"firstName"`
	LastName   string `gorm:"type:text" json:"lastName" bson:"lastName"`
	Patronymic string `gorm:"type:text" json:"patronymic" bson:"patronymic"`
}

// BeforeCreate is a GORM hook called before the record is inserted.
// It generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
