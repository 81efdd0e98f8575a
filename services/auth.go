package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"visa_crm_go/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
	// MaxFailedLogins before the account is locked
	MaxFailedLogins = 5
	// LockoutDuration after MaxFailedLogins
	LockoutDuration = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrAccountInactive    = errors.New("account is inactive")
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Authenticate checks credentials and maintains the failed-login lockout
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Preload("Workspace").Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	if user.LockoutUntil != nil && user.LockoutUntil.After(now) {
		return nil, ErrAccountLocked
	}

	if !VerifyPassword(user.Password, password) {
		attempts := user.FailedLoginAttempts + 1
		updates := map[string]interface{}{"failed_login_attempts": attempts}
		if attempts >= MaxFailedLogins {
			updates["lockout_until"] = now.Add(LockoutDuration)
			updates["failed_login_attempts"] = 0
			LogSecurityEvent("ACCOUNT_LOCKED", user.ID, fmt.Sprintf("locked after %d failed logins", attempts))
		}
		db.Model(&user).Updates(updates)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"lockout_until":         nil,
		"last_login_at":         now,
	})
	return &user, nil
}

// CreateSession creates a new session for a user
func CreateSession(db *gorm.DB, user *models.User, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		WorkspaceID: user.WorkspaceID,
		Token:       token,
		ExpiresAt:   time.Now().Add(DefaultSessionDuration),
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession validates a session token and returns the session if valid
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session
	err := db.Preload("User.Workspace").Preload("Workspace").
		Where("token = ?", token).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired() {
		db.Delete(&session)
		return nil, fmt.Errorf("session expired")
	}
	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(db *gorm.DB, token string) error {
	if err := db.Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteAllUserSessions signs a user out everywhere
func DeleteAllUserSessions(db *gorm.DB, userID string) error {
	result := db.Where("user_id = ?", userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Deleted %d sessions for user %s", result.RowsAffected, userID)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(db *gorm.DB) error {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[JOB] Cleaned up %d expired sessions", result.RowsAffected)
	}
	return nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, userID, details string) {
	log.Printf("[SECURITY] %s | User: %s | Details: %s", eventType, userID, details)
}
