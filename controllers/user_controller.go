package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"storefront/database"
	"storefront/middleware"
	"storefront/models"
)

const minPasswordLength = 8

type UserController struct {
	base
	users UserRepository
}

func NewUserController(users UserRepository, timeout time.Duration) *UserController {
	return &UserController{base: newBase(timeout), users: users}
}

func (uc *UserController) List(c *gin.Context) {
	ctx, cancel := uc.ctx(c)
	defer cancel()

	users, err := uc.users.List(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusOK, users)
}

func (uc *UserController) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if !middleware.IsAdmin(c) && middleware.UserID(c) != id.Hex() {
		fail(c, http.StatusForbidden, "Access denied")
		return
	}

	ctx, cancel := uc.ctx(c)
	defer cancel()

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	ok(c, http.StatusOK, user)
}

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	Image    string `json:"image"`
	Provider string `json:"provider"`
	Role     string `json:"role"`
}

// Create registers a credentials user, or records the profile of a user who
// signed in through Google. An existing Google profile is refreshed only for
// its owner or an admin, and never replaces a credentials account.
func (uc *UserController) Create(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Name and a valid email are required")
		return
	}
	if in.Provider == "" {
		in.Provider = models.ProviderCredentials
	}
	if in.Provider != models.ProviderCredentials && in.Provider != models.ProviderGoogle {
		fail(c, http.StatusBadRequest, "provider must be credentials or google")
		return
	}

	role := models.RoleUser
	if in.Role != "" && in.Role != models.RoleUser {
		if !middleware.IsAdmin(c) || !models.ValidRole(in.Role) {
			fail(c, http.StatusForbidden, "Only admins can assign roles")
			return
		}
		role = in.Role
	}

	ctx, cancel := uc.ctx(c)
	defer cancel()

	existing, err := uc.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && in.Provider == models.ProviderGoogle && existing.Provider == models.ProviderGoogle:
		if !middleware.IsAdmin(c) && middleware.UserID(c) != existing.ID.Hex() {
			fail(c, http.StatusForbidden, "Not allowed to update this profile")
			return
		}
		fields := bson.M{"name": strings.TrimSpace(in.Name)}
		if in.Image != "" {
			fields["image"] = in.Image
		}
		updated, err := uc.users.Update(ctx, existing.ID, fields)
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		ok(c, http.StatusOK, updated)
		return
	case err == nil:
		fail(c, http.StatusConflict, "Email already registered")
		return
	case !errors.Is(err, database.ErrNotFound):
		respondError(c, err, "")
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Image:    in.Image,
		Role:     role,
		Provider: in.Provider,
	}
	if in.Provider == models.ProviderCredentials {
		if len(in.Password) < minPasswordLength {
			fail(c, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}
		if user.Password, err = hashPassword(in.Password); err != nil {
			respondError(c, err, "")
			return
		}
	}

	if err := uc.users.Create(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			fail(c, http.StatusConflict, "Email already registered")
			return
		}
		respondError(c, err, "")
		return
	}
	ok(c, http.StatusCreated, user)
}

// UpdateSelf edits the caller's own profile. Changing the password requires
// the current one.
func (uc *UserController) UpdateSelf(c *gin.Context) {
	userID, valid := currentUser(c)
	if !valid {
		return
	}
	var in struct {
		Name            *string `json:"name"`
		Image           *string `json:"image"`
		Password        *string `json:"password"`
		CurrentPassword string  `json:"currentPassword"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := uc.ctx(c)
	defer cancel()

	fields := bson.M{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			fail(c, http.StatusBadRequest, "Name must not be empty")
			return
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			fail(c, http.StatusBadRequest, "Password must be at least 8 characters")
			return
		}
		user, err := uc.users.FindByID(ctx, userID)
		if err != nil {
			respondError(c, err, "User not found")
			return
		}
		if user.Password != "" && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
			fail(c, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			respondError(c, err, "")
			return
		}
		fields["password"] = hashed
	}
	if len(fields) == 0 {
		fail(c, http.StatusBadRequest, "No fields to update")
		return
	}

	updated, err := uc.users.Update(ctx, userID, fields)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	ok(c, http.StatusOK, updated)
}

// Update is the admin edit, the only place a role can change.
func (uc *UserController) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var in struct {
		Name  *string `json:"name"`
		Image *string `json:"image"`
		Role  *string `json:"role"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := bson.M{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			fail(c, http.StatusBadRequest, "role must be user or admin")
			return
		}
		if *in.Role != models.RoleAdmin && id.Hex() == middleware.UserID(c) {
			fail(c, http.StatusBadRequest, "Admins cannot demote themselves")
			return
		}
		fields["role"] = *in.Role
	}
	if len(fields) == 0 {
		fail(c, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx, cancel := uc.ctx(c)
	defer cancel()

	updated, err := uc.users.Update(ctx, id, fields)
	if err != nil {
		respondError(c, err, "User not found")
		return
	}
	ok(c, http.StatusOK, updated)
}
