package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

func newAuthServiceForTest(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, newTestCacheService(newStubCacheRepo()), validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "xccm-test",
		BcryptCost:        bcrypt.MinCost,
	})
}

func registerRequest(role, email string) models.RegisterRequest {
	return models.RegisterRequest{
		Email:           email,
		Password:        "password",
		ConfirmPassword: "password",
		Role:            role,
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Specialization:  "Maths",
		Grade:           "PhD",
		Subjects:        []string{"algebra"},
	}
}

func TestAuthServiceRegisterBuildsRoleVariant(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	student, err := svc.Register(ctx, registerRequest("student", "Student@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.Equal(t, "student@example.com", student.Email)

	stored, err := repo.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maths", stored.Specialization)
	assert.Empty(t, stored.Grade)
	assert.Empty(t, stored.Subjects)
	assert.NotEqual(t, "password", stored.PasswordHash)

	teacher, err := svc.Register(ctx, registerRequest("TEACHER", "teacher@example.com"))
	require.NoError(t, err)
	stored, err = repo.FindByID(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, stored.Role)
	assert.Empty(t, stored.Specialization)
	assert.Equal(t, "PhD", stored.Grade)
	assert.Equal(t, models.StringList{"algebra"}, stored.Subjects)

	profile, err := stored.Profile()
	require.NoError(t, err)
	assert.IsType(t, models.TeacherProfile{}, profile)
}

func TestAuthServiceRegisterRejectsInvalidInput(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("JANITOR", "a@example.com"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	req := registerRequest("STUDENT", "a@example.com")
	req.ConfirmPassword = "different"
	_, err = svc.Register(ctx, req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Register(ctx, registerRequest("STUDENT", "a@example.com"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerRequest("TEACHER", "a@example.com"))
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestAuthServiceLoginAndValidateToken(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())
	ctx := context.Background()
	registered, err := svc.Register(ctx, registerRequest("TEACHER", "teacher@example.com"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, registered.ID, res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "xccm-test", claims.Issuer)

	again, err := svc.Login(ctx, models.LoginRequest{Email: "teacher@example.com", Password: "password"})
	require.NoError(t, err)
	otherClaims, err := svc.ValidateToken(again.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	repo := newFakeUserRepo(&models.User{ID: 1, Email: "off@example.com", PasswordHash: string(hash), Role: models.RoleStudent, Active: false})
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: "off@example.com", Password: "password"})
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignTokens(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())

	claims := &models.JWTClaims{
		UserID: 1,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "xccm-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceProfile(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 5, Email: "s@example.com", FirstName: "S", Role: models.RoleStudent, Active: true})
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	info, err := svc.Profile(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "s@example.com", info.Email)

	_, err = svc.Profile(ctx, 6)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
