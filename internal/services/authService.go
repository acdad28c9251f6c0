package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/models"
	"github.com/devansh03/FileHaven/internal/store"
)

// AuthService handles registration, login, and JWT issuance.
type AuthService struct {
	users  store.UserStore
	secret []byte
}

func NewAuthService(users store.UserStore, jwtSecret string) *AuthService {
	return &AuthService{users: users, secret: []byte(jwtSecret)}
}

type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateJWT generates a JWT token carrying the user id
func (s *AuthService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * 4).Unix(), // Token expires in 4 hours
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Register creates a new user. The unique index on email is the duplicate
// guard; a taken address comes back as a conflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := validate.Struct(registerInput{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: a valid email and a password of at least 8 characters are required", apperr.ErrValidation)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hashed,
		CreatedAt: time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// Login authenticates a user and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if !VerifyPassword(password, user.Password) {
		return "", errors.New("invalid credentials")
	}

	return s.GenerateJWT(user.ID.Hex())
}
