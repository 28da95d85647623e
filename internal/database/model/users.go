package model

import (
	"time"
)

const TableNameUser = "users"

// User mapped from table <users>
type User struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	Email     string     `gorm:"column:email;not null;uniqueIndex:uk_users_email,priority:1;size:255" json:"email"`
	CreatedAt *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
