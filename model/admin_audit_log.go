package model

import "strings"

// AdminAuditLog represents audit trail for admin actions
type AdminAuditLog struct {
	Base
	AdminID     string `gorm:"type:varchar(64);not null;index" json:"admin_id"`
	AdminName   string `gorm:"type:varchar(50)" json:"admin_name"`
	Action      string `gorm:"type:varchar(100);not null" json:"action"` // e.g., "create", "delete", "toggle"
	Resource    string `gorm:"type:varchar(100);index" json:"resource"`  // e.g., "internships", "users"
	ResourceID  string `gorm:"type:varchar(64)" json:"resource_id"`
	Status      int    `json:"status"`
	IPAddress   string `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string `gorm:"type:text" json:"user_agent"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}

func (a *AdminAuditLog) SearchText() []string {
	return []string{a.AdminName, a.Action, a.Resource, a.ResourceID, a.Description}
}

func (a *AdminAuditLog) Normalize() {
	a.Description = strings.TrimSpace(a.Description)
}
