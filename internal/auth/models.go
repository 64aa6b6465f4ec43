package auth

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleCoach  = "coach"
	RoleParent = "student_parent"
	RoleAdmin  = "admin"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	FCMToken     string             `bson:"fcm_token,omitempty" json:"fcm_token,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FCMTokenRequest struct {
	Token string `json:"token"`
}
