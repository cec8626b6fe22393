package models

import (
	"gorm.io/gorm"
)

// Keyspace is the persisted definition of one expiring store: its name and
// expiration policy. Only the definition is durable; the entries themselves
// live in memory and are rebuilt empty on restart.
type Keyspace struct {
	ID              string `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"unique;not null"`
	ExpireMs        int64  `json:"expireMs" gorm:"column:expire_ms"`
	SweepIntervalMs int64  `json:"sweepIntervalMs" gorm:"column:sweep_interval_ms"`
	Limit           int    `json:"limit" gorm:"column:entry_limit"`
	UserID          string `json:"-" gorm:"column:user_id;index"`
	gorm.Model
}

// TableName specifies the table name for the Keyspace model
func (Keyspace) TableName() string {
	return "keyspaces"
}
