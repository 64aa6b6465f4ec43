package auth

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	repo *UserRepository
}

func NewUserService(repo *UserRepository) *UserService {
	return &UserService{repo: repo}
}

func validRole(role string) bool {
	return role == RoleCoach || role == RoleParent || role == RoleAdmin
}

func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errors.New("name, email and password are required")
	}
	if !validRole(req.Role) {
		return errors.New("role must be coach, student_parent or admin")
	}

	existingUser, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return errors.New("Email already registered")
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashPassword,
		Role:         req.Role,
	}

	return s.repo.CreateUser(ctx, user)
}

func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (string, error) {
	user, err := s.repo.FindByEmail(ctx, cred.Email)
	if err != nil || user == nil || !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return "", errors.New("Invalid Credentials")
	}

	return GenerateJWT(user.ID.Hex(), user.Email, user.Role, time.Hour*24)
}

// SaveFCMToken stores the caller's current device push token. Clients call
// this on login and whenever the platform rotates the token.
func (s *UserService) SaveFCMToken(ctx context.Context, userID primitive.ObjectID, token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	return s.repo.UpdateFCMToken(ctx, userID, token)
}
