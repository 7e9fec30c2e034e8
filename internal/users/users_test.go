package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"linkpress/internal/testsupport"
	"linkpress/internal/users"
)

func TestFindByEmail(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("finds existing user", func(t *testing.T) {
		testUser := testsupport.CreateTestUser(t, db, "test@example.com")

		foundUser, err := users.FindByEmail(db, "test@example.com")

		require.NoError(t, err)
		assert.NotNil(t, foundUser)
		assert.Equal(t, testUser.Email, foundUser.Email)
		assert.Equal(t, testUser.ID, foundUser.ID)
	})

	t.Run("returns error for non-existent user", func(t *testing.T) {
		foundUser, err := users.FindByEmail(db, "nonexistent@example.com")

		assert.Error(t, err)
		assert.Nil(t, foundUser)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestCreateUser(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("creates new user with api key", func(t *testing.T) {
		email := "newuser@example.com"

		user, err := users.CreateUser(db, email, "securepassword123")
		require.NoError(t, err)

		assert.Equal(t, email, user.Email)
		assert.NotEmpty(t, user.EncryptedPassword)
		assert.NotEmpty(t, user.APIKey)
		assert.Len(t, user.APIKey, 64)
	})

	t.Run("returns error when user already exists", func(t *testing.T) {
		email := "existing@example.com"

		_, err := users.CreateUser(db, email, "password123")
		require.NoError(t, err)

		_, err = users.CreateUser(db, email, "password123")
		assert.Error(t, err)
		assert.ErrorIs(t, err, users.ErrUserExists)
	})

	t.Run("returns error for empty email", func(t *testing.T) {
		_, err := users.CreateUser(db, "", "password123")
		assert.Error(t, err)
	})

	t.Run("returns error for empty password", func(t *testing.T) {
		_, err := users.CreateUser(db, "nopassword@example.com", "")
		assert.Error(t, err)
	})
}

func TestFindByAPIKey(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("finds user by api key", func(t *testing.T) {
		created, err := users.CreateUser(db, "keyed@example.com", "password123")
		require.NoError(t, err)

		found, err := users.FindByAPIKey(db, created.APIKey)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("returns not found for unknown key", func(t *testing.T) {
		found, err := users.FindByAPIKey(db, "deadbeef")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("rejects empty key without querying", func(t *testing.T) {
		found, err := users.FindByAPIKey(db, "")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})
}

func TestRotateAPIKey(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("replaces the key and invalidates the old one", func(t *testing.T) {
		created, err := users.CreateUser(db, "rotate@example.com", "password123")
		require.NoError(t, err)
		oldKey := created.APIKey

		newKey, err := users.RotateAPIKey(db, created.Email)
		require.NoError(t, err)
		assert.NotEqual(t, oldKey, newKey)

		_, err = users.FindByAPIKey(db, oldKey)
		assert.ErrorIs(t, err, users.ErrUserNotFound)

		found, err := users.FindByAPIKey(db, newKey)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("returns error for non-existent user", func(t *testing.T) {
		_, err := users.RotateAPIKey(db, "nonexistent@example.com")
		assert.Error(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("changes password successfully", func(t *testing.T) {
		email := "changepass@example.com"

		_, err := users.CreateUser(db, email, "oldpassword123")
		require.NoError(t, err)

		userBefore, err := users.FindByEmail(db, email)
		require.NoError(t, err)
		oldEncryptedPassword := userBefore.EncryptedPassword

		err = users.ChangePassword(db, email, "newpassword456")
		require.NoError(t, err)

		userAfter, err := users.FindByEmail(db, email)
		require.NoError(t, err)
		assert.NotEqual(t, oldEncryptedPassword, userAfter.EncryptedPassword)
		assert.NotEmpty(t, userAfter.EncryptedPassword)
	})

	t.Run("returns error for non-existent user", func(t *testing.T) {
		err := users.ChangePassword(db, "nonexistent@example.com", "newpassword")
		assert.Error(t, err)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("returns error for empty password", func(t *testing.T) {
		email := "testuser@example.com"

		_, err := users.CreateUser(db, email, "password123")
		require.NoError(t, err)

		err = users.ChangePassword(db, email, "")
		assert.Error(t, err)
	})
}

func TestSetupAdminUserIfNotExists(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("creates user if not exists", func(t *testing.T) {
		email := "setup@example.com"

		users.SetupAdminUserIfNotExists(db, email)

		foundUser, err := users.FindByEmail(db, email)
		require.NoError(t, err)
		assert.Equal(t, email, foundUser.Email)
	})

	t.Run("does not error if user already exists", func(t *testing.T) {
		email := "existing-setup@example.com"

		_, err := users.CreateUser(db, email, "password123")
		require.NoError(t, err)

		users.SetupAdminUserIfNotExists(db, email)

		foundUser, err := users.FindByEmail(db, email)
		require.NoError(t, err)
		assert.Equal(t, email, foundUser.Email)
	})
}
