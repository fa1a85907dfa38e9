package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile extends a user with the contact and address fields checkout requires.
type Profile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:profiles_user_id_key"`
	Name        string    `gorm:"column:name;not null;default:''"`
	Email       string    `gorm:"column:email;not null;default:''"`
	Role        string    `gorm:"column:role;not null;default:'USER'"`
	PhoneNumber *string   `gorm:"column:phone_number"`
	UserAddress *string   `gorm:"column:user_address"`
	City        *string   `gorm:"column:city"`
	Country     *string   `gorm:"column:country"`
	StateName   *string   `gorm:"column:state_name"`
	PinCode     *string   `gorm:"column:pin_code"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
