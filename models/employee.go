package models

import (
	"time"
)

// Employee mirrors a Salesforce User. IDs are namespaced ("sf-<id>") so
// synced rows never collide with manually-entered ones.
type Employee struct {
	ID         string       `gorm:"primaryKey;size:64" json:"id"`
	Name       string       `gorm:"size:255;not null" json:"name"`
	Email      string       `gorm:"size:255;uniqueIndex" json:"email"`
	Role       EmployeeRole `gorm:"type:enum('admin','bd','md','mm','dsm','executive','content_ops_staff','content_ops_manager');not null;default:'bd'" json:"role"`
	RoleTitle  string       `gorm:"size:100" json:"role_title"`
	ManagerID  *string      `gorm:"size:64;index" json:"manager_id"`
	Location   string       `gorm:"size:100" json:"location"`
	Division   Division     `gorm:"type:enum('east','central','west');default:'east'" json:"division"`
	Department string       `gorm:"size:100" json:"department"`
	IsActive   *bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
