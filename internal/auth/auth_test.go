package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/hash"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.RefreshToken{},
	))
	return db
}

func newTestIssuer() *Issuer {
	return &Issuer{
		AccessSecret:  []byte("access-test-secret"),
		RefreshSecret: []byte("refresh-test-secret"),
	}
}

// seedUser creates an enabled user with the given permissions on a fresh role.
func seedUser(t *testing.T, db *gorm.DB, username, password string, permissions ...string) *models.User {
	t.Helper()

	perms := make([]models.Permission, 0, len(permissions))
	for _, p := range permissions {
		perm := models.Permission{Title: p, Description: p}
		require.NoError(t, db.FirstOrCreate(&perm, models.Permission{Title: p}).Error)
		perms = append(perms, perm)
	}
	role := models.Role{Name: username + "-role", Permissions: perms}
	require.NoError(t, db.Create(&role).Error)

	hashed, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashed,
		Enabled:      true,
		RoleID:       role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	var loaded models.User
	require.NoError(t, db.Preload("Role.Permissions").First(&loaded, user.ID).Error)
	return &loaded
}
