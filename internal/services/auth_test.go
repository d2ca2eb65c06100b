package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/aawaaz/complaint-desk/internal/cache"
	"github.com/aawaaz/complaint-desk/internal/database"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuth(t *testing.T, ttl time.Duration) (*services.AuthService, *database.MemoryStore, *cache.MemoryStore) {
	t.Helper()
	users := database.NewMemoryStore()
	denylist := cache.NewMemoryStore()
	svc := services.NewAuthService(users, denylist, services.AuthOptions{
		Secret:     testSecret,
		TokenTTL:   ttl,
		BcryptCost: bcrypt.MinCost,
	}, zap.NewNop().Sugar())
	return svc, users, denylist
}

func register(t *testing.T, svc *services.AuthService, email string) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Student",
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_CreatesStudent(t *testing.T) {
	svc, users, _ := newAuth(t, time.Hour)

	u := register(t, svc, "  Asha@College.EDU ")

	assert.Equal(t, models.RoleStudent, u.Role)
	assert.Equal(t, "asha@college.edu", u.Email)
	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")))

	stored, err := users.FindUserByEmail(context.Background(), "asha@college.edu")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, u.ID, stored.ID)
}

func TestRegister_Rejections(t *testing.T) {
	svc, _, _ := newAuth(t, time.Hour)
	register(t, svc, "asha@college.edu")

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Again", Email: "ASHA@college.edu", Password: "hunter22"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "", Email: "not-an-email", Password: "123"})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestLogin_IssuesTokenForPrincipal(t *testing.T) {
	svc, _, _ := newAuth(t, time.Hour)
	u := register(t, svc, "asha@college.edu")

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "asha@college.edu", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	p, claims, err := svc.ParseToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, models.RoleStudent, p.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc, _, _ := newAuth(t, time.Hour)
	register(t, svc, "asha@college.edu")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "asha@college.edu", Password: "wrong-password"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@college.edu", Password: "hunter22"})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestParseToken_Rejects(t *testing.T) {
	svc, _, _ := newAuth(t, time.Hour)
	ctx := context.Background()

	sign := func(method jwt.SigningMethod, key interface{}, claims services.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := services.Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	_, _, err := svc.ParseToken(ctx, sign(jwt.SigningMethodHS256, []byte(testSecret), valid))
	require.NoError(t, err, "control case")

	wrongKey := sign(jwt.SigningMethodHS256, []byte("other-secret"), valid)
	noneAlg := sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)

	badRole := valid
	badRole.Role = "superuser"

	badSubject := valid
	badSubject.RegisteredClaims.Subject = "42"

	noExpiry := valid
	noExpiry.RegisteredClaims.ExpiresAt = nil

	for name, token := range map[string]string{
		"garbage":    "not.a.token",
		"wrong key":  wrongKey,
		"alg none":   noneAlg,
		"bad role":   sign(jwt.SigningMethodHS256, []byte(testSecret), badRole),
		"bad sub":    sign(jwt.SigningMethodHS256, []byte(testSecret), badSubject),
		"no expiry":  sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"empty body": "",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.ParseToken(ctx, token)
			assert.ErrorIs(t, err, services.ErrUnauthenticated)
		})
	}
}

func TestParseToken_Expired(t *testing.T) {
	svc, _, _ := newAuth(t, -time.Minute)
	register(t, svc, "asha@college.edu")

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "asha@college.edu", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = svc.ParseToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, denylist := newAuth(t, time.Hour)
	ctx := context.Background()
	register(t, svc, "asha@college.edu")

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "asha@college.edu", Password: "hunter22"})
	require.NoError(t, err)

	_, claims, err := svc.ParseToken(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := denylist.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, _, err = svc.ParseToken(ctx, resp.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	assert.ErrorIs(t, svc.Logout(ctx, nil), services.ErrUnauthenticated)
}

func TestCreateAdmin_Idempotent(t *testing.T) {
	svc, _, _ := newAuth(t, time.Hour)
	ctx := context.Background()

	admin, created, err := svc.CreateAdmin(ctx, "Admin User", "admin@college.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	again, created, err := svc.CreateAdmin(ctx, "Someone Else", "admin@college.com", "different")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	me, err := svc.Me(ctx, &models.Principal{UserID: admin.ID, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "admin@college.com", me.Email)

	_, err = svc.Me(ctx, nil)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}
