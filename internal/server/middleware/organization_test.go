package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/server/biz"
	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type testEnv struct {
	Auth          *biz.AuthService
	Users         *biz.UserService
	Organizations *biz.OrganizationService
	Memberships   *biz.MembershipService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tenancy.Configure(tenancy.Config{Environment: tenancy.EnvTest})

	database, err := db.Open(db.Config{Dialect: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, database.Migrate(context.Background()))

	guards := biz.NewGuards(database)
	require.NoError(t, guards.Validate(context.Background()))

	users := biz.NewUserService(biz.UserServiceParams{DB: database})
	roles := biz.NewRoleService(biz.RoleServiceParams{DB: database})
	memberships := biz.NewMembershipService(biz.MembershipServiceParams{DB: database, Guards: guards})
	organizations := biz.NewOrganizationService(biz.OrganizationServiceParams{
		DB:                database,
		RoleService:       roles,
		MembershipService: memberships,
	})

	auth, err := biz.NewAuthService(biz.AuthServiceParams{
		DB:          database,
		UserService: users,
	})
	require.NoError(t, err)

	return &testEnv{
		Auth:          auth,
		Users:         users,
		Organizations: organizations,
		Memberships:   memberships,
	}
}

func setupAuthedRouter(t *testing.T, env *testEnv) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(WithJWTAuth(env.Auth))
	router.Use(WithOrganization(env.Memberships))
	router.GET("/whoami", func(c *gin.Context) {
		user, _ := contexts.GetUser(c.Request.Context())

		var organizationID int64
		if id, ok := contexts.GetTenantID(c.Request.Context()); ok {
			organizationID = id
		}

		c.JSON(http.StatusOK, gin.H{
			"userID":         user.ID,
			"organizationID": organizationID,
		})
	})

	return router
}

func createUserAndOrg(t *testing.T, env *testEnv) (*objects.User, *objects.Organization, string) {
	t.Helper()

	user, err := env.Users.CreateUser(context.Background(), biz.CreateUserInput{
		Email:    "alice@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	org, err := env.Organizations.CreateOrganization(context.Background(), biz.CreateOrganizationInput{
		Name: "Acme", Slug: "acme", OwnerUserID: user.ID,
	})
	require.NoError(t, err)

	token, err := env.Auth.GenerateJWTToken(context.Background(), user)
	require.NoError(t, err)

	return user, org, token
}

func TestWithJWTAuth(t *testing.T) {
	env := setupTestEnv(t)
	router := setupAuthedRouter(t, env)

	_, _, token := createUserAndOrg(t, env)

	// No token is rejected.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A garbage token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A valid token passes.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithOrganization(t *testing.T) {
	env := setupTestEnv(t)
	router := setupAuthedRouter(t, env)

	_, org, token := createUserAndOrg(t, env)

	// Selecting a member organization sets the ambient tenant.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(OrganizationHeader, strconv.FormatInt(org.ID, 10))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"organizationID":`+strconv.FormatInt(org.ID, 10))

	// No header means no tenant.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"organizationID":0`)

	// A non-member organization is rejected.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(OrganizationHeader, "9999")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A malformed organization id is rejected.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(OrganizationHeader, "not-a-number")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
