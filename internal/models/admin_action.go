package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionDetails is the free-form payload attached to an admin action, stored as JSON text.
type ActionDetails map[string]any

// Value implements driver.Valuer.
func (d ActionDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal action details: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *ActionDetails) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported action details type %T", value)
	}

	if len(raw) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(raw, d)
}

// AdminAction is an append-only record of something an admin did.
type AdminAction struct {
	ID        string        `gorm:"primarykey;type:varchar(36)" json:"id"`
	AdminID   string        `gorm:"type:varchar(36);not null;index" json:"admin"`
	Action    string        `gorm:"type:varchar(255);not null" json:"action"`
	Target    string        `gorm:"type:varchar(50)" json:"target,omitempty"`
	TargetID  string        `gorm:"type:varchar(36)" json:"targetId,omitempty"`
	Details   ActionDetails `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`

	// Relations
	Admin User `gorm:"foreignKey:AdminID" json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (a *AdminAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
