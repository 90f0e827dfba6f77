package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	FullName       string          `gorm:"size:128" json:"full_name"`
	MobileNumber   string          `gorm:"size:16;index" json:"mobile_number"`
	Village        string          `gorm:"size:64" json:"village"`
	Role           Role            `gorm:"size:16;index;not null" json:"role"`
	CommissionRate decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"commission_rate"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
}
