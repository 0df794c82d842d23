package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storefront/database"
	"storefront/middleware"
	"storefront/models"
)

const bcryptCost = 10

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, token string, exp time.Time) error
}

type AuthController struct {
	base
	users  UserRepository
	tokens TokenRevoker
	secret []byte
	ttl    time.Duration
}

func NewAuthController(users UserRepository, tokens TokenRevoker, secret []byte, ttl, timeout time.Duration) *AuthController {
	return &AuthController{base: newBase(timeout), users: users, tokens: tokens, secret: secret, ttl: ttl}
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := ac.ctx(c)
	defer cancel()

	user, err := ac.users.FindByEmail(ctx, input.Email)
	if errors.Is(err, database.ErrNotFound) {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondError(c, err, "")
		return
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, exp, err := middleware.IssueToken(ac.secret, user.ID.Hex(), user.Role, ac.ttl)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"token": token, "expiresAt": exp, "user": user})
}

// Logout blacklists the caller's token until it would have expired anyway.
func (ac *AuthController) Logout(c *gin.Context) {
	token, exp := middleware.Token(c)
	if token == "" {
		fail(c, http.StatusBadRequest, "Token required")
		return
	}
	if exp.IsZero() {
		exp = time.Now().Add(ac.ttl)
	}

	ctx, cancel := ac.ctx(c)
	defer cancel()

	if err := ac.tokens.Revoke(ctx, token, exp); err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
