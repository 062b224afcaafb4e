package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           string    `bson:"_id"          json:"id"`
	Email        string    `bson:"email"        json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	FirstName    string    `bson:"firstName"    json:"firstName"`
	LastName     string    `bson:"lastName"     json:"lastName"`
	Role         Role      `bson:"role"         json:"role"`
	CreatedAt    time.Time `bson:"createdAt"    json:"createdAt"`
}

const UserCollection = "users"
