package models

import "time"

type User struct {
	Id        string
	Email     string    `pg:",unique,notnull"`
	Password  string    `json:"-"` // bcrypt hash
	CreatedAt time.Time `pg:"default:now()"`
}

type UserDto struct {
	Email string `json:"email"`
	Pass  string `json:"pass"`
}
