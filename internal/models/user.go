package models

import "time"

type User struct {
	ID               int64     `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	FullName         string    `db:"full_name" json:"full_name"`
	Bio              string    `db:"bio" json:"bio"`
	ProfilePic       string    `db:"profile_pic" json:"profile_pic"`
	NativeLanguage   string    `db:"native_language" json:"native_language"`
	LearningLanguage string    `db:"learning_language" json:"learning_language"`
	Location         string    `db:"location" json:"location"`
	IsOnboarded      bool      `db:"is_onboarded" json:"is_onboarded"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Card is the profile summary embedded into friend-request listings.
type Card struct {
	ID               int64  `db:"id" json:"id"`
	FullName         string `db:"full_name" json:"full_name"`
	ProfilePic       string `db:"profile_pic" json:"profile_pic"`
	NativeLanguage   string `db:"native_language" json:"native_language"`
	LearningLanguage string `db:"learning_language" json:"learning_language"`
}
