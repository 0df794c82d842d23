package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/middleware"
	"storefront/models"
)

func userRouter(users *memUsers) *gin.Engine {
	uc := NewUserController(users, time.Second)
	r := gin.New()
	r.POST("/api/users", middleware.OptionalAuth(testSecret, nil), uc.Create)
	r.GET("/api/users/:id", with(requireAuth(false), uc.Get)...)
	r.PUT("/api/users/:id", with(requireAuth(true), uc.Update)...)
	return r
}

func TestRegisterCredentialsUser(t *testing.T) {
	users := &memUsers{}
	r := userRouter(users)

	w, _ := doJSON(t, r, http.MethodPost, "/api/users", gin.H{"name": "Ada", "email": "ada@example.com", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users", gin.H{"name": "Ada", "email": "ada@example.com", "password": "long-enough", "role": "admin"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/users", gin.H{"name": "Ada", "email": "ada@example.com", "password": "long-enough"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.User
	env.decode(t, &created)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.Equal(t, models.ProviderCredentials, created.Provider)
	require.Len(t, users.users, 1)
	assert.NotEqual(t, "long-enough", users.users[0].Password)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users", gin.H{"name": "Ada", "email": "ada@example.com", "password": "long-enough"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/users", gin.H{"name": "Root", "email": "root@example.com", "password": "long-enough", "role": "admin"}, adminToken(t))
	require.Equal(t, http.StatusCreated, w.Code)
	env.decode(t, &created)
	assert.Equal(t, models.RoleAdmin, created.Role)
}

func TestGoogleProfileIsUpserted(t *testing.T) {
	users := &memUsers{}
	r := userRouter(users)
	body := gin.H{"name": "Grace", "email": "grace@example.com", "provider": "google"}

	w, _ := doJSON(t, r, http.MethodPost, "/api/users", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	grace := users.users[0]

	body["name"] = "Grace H."
	w, env := doJSON(t, r, http.MethodPost, "/api/users", body, tokenFor(t, grace.ID, models.RoleUser))
	require.Equal(t, http.StatusOK, w.Code)
	var got models.User
	env.decode(t, &got)
	assert.Equal(t, "Grace H.", got.Name)
	assert.Len(t, users.users, 1)

	body["name"] = "Admin Edit"
	w, _ = doJSON(t, r, http.MethodPost, "/api/users", body, adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Admin Edit", users.users[0].Name)
}

func TestGoogleProfileCannotBeTakenOver(t *testing.T) {
	grace := &models.User{ID: primitive.NewObjectID(), Name: "Grace", Email: "grace@example.com", Role: models.RoleUser, Provider: models.ProviderGoogle}
	ada := &models.User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com", Role: models.RoleUser, Provider: models.ProviderCredentials, Password: "hash"}
	users := &memUsers{users: []*models.User{grace, ada}}
	r := userRouter(users)

	hijack := gin.H{"name": "Mallory", "email": "grace@example.com", "provider": "google", "image": "https://evil.example/x.png"}
	w, _ := doJSON(t, r, http.MethodPost, "/api/users", hijack, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users", hijack, tokenFor(t, ada.ID, models.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Grace", users.users[0].Name)

	overCredentials := gin.H{"name": "Mallory", "email": "ada@example.com", "provider": "google"}
	w, _ = doJSON(t, r, http.MethodPost, "/api/users", overCredentials, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/api/users", overCredentials, adminToken(t))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Ada", users.users[1].Name)
	assert.Equal(t, models.ProviderCredentials, users.users[1].Provider)
}

func TestUserGetAndRoleChange(t *testing.T) {
	self := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Role: models.RoleAdmin}
	other := &models.User{ID: primitive.NewObjectID(), Email: "b@example.com", Role: models.RoleUser}
	r := userRouter(&memUsers{users: []*models.User{self, other}})

	w, _ := doJSON(t, r, http.MethodGet, "/api/users/"+self.ID.Hex(), nil, tokenFor(t, other.ID, models.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/users/"+other.ID.Hex(), nil, tokenFor(t, other.ID, models.RoleUser))
	assert.Equal(t, http.StatusOK, w.Code)

	adminTok := tokenFor(t, self.ID, models.RoleAdmin)
	w, _ = doJSON(t, r, http.MethodPut, "/api/users/"+self.ID.Hex(), gin.H{"role": "user"}, adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPut, "/api/users/"+other.ID.Hex(), gin.H{"role": "owner"}, adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doJSON(t, r, http.MethodPut, "/api/users/"+other.ID.Hex(), gin.H{"role": "admin"}, adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.User
	env.decode(t, &got)
	assert.Equal(t, models.RoleAdmin, got.Role)
}
