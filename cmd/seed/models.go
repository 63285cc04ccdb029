package main

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The tables below are the relational layout internal/store/postgres reads.

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:text"`
	Email      string    `gorm:"uniqueIndex;not null"`
	IsVerified bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID        *uuid.UUID  `gorm:"type:uuid;index"`
	OrderDate     time.Time   `gorm:"not null;index"`
	PaymentStatus string      `gorm:"type:text"`
	TotalAmount   float64     `gorm:"type:numeric(12,2);not null;default:0"`
	Items         []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem keeps meal_id as text: it may hold a uuid or a legacy key.
type OrderItem struct {
	ID       uint      `gorm:"primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	MealID   string    `gorm:"type:text"`
	MealName string    `gorm:"type:text"`
	Quantity int64     `gorm:"not null;default:1"`
	Price    float64   `gorm:"type:numeric(12,2);not null;default:0"`
}

// Meal tags are jsonb holding either an array or a legacy comma string.
type Meal struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey"`
	LegacyID *string        `gorm:"uniqueIndex"`
	Name     string         `gorm:"type:text"`
	Type     string         `gorm:"index"`
	Price    *float64       `gorm:"type:numeric(10,2)"`
	Calories *float64       `gorm:"type:numeric(10,2)"`
	Protein  *float64       `gorm:"type:numeric(10,2)"`
	Carbs    *float64       `gorm:"type:numeric(10,2)"`
	Fat      *float64       `gorm:"type:numeric(10,2)"`
	Tags     datatypes.JSON `gorm:"type:jsonb"`
}

type Favorite struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_fav_user_meal"`
	MealID    string     `gorm:"uniqueIndex:idx_fav_user_meal;index"`
	CreatedAt time.Time  `gorm:"not null;index"`
}

type UploadHistory struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Filename     string         `gorm:"type:text"`
	UploadedBy   string         `gorm:"type:text"`
	TotalRows    int64          `gorm:"not null;default:0"`
	SuccessCount int64          `gorm:"not null;default:0"`
	ErrorCount   int64          `gorm:"not null;default:0"`
	Errors       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}

func (UploadHistory) TableName() string { return "upload_history" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (m *Meal) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (u *UploadHistory) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func allModels() []any {
	return []any{&User{}, &Order{}, &OrderItem{}, &Meal{}, &Favorite{}, &UploadHistory{}}
}
