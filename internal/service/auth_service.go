package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/printstudio/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultAdminPassword is used until the admin sets their own.
const DefaultAdminPassword = "printstudio"

var (
	// ErrInvalidPassword 表示密码错误。
	ErrInvalidPassword = errors.New("invalid password")
	// ErrPasswordMissing 表示未提供新密码。
	ErrPasswordMissing = errors.New("password is required")
)

// Password states reported to the admin panel.
const (
	PasswordStateDefault = "default"
	PasswordStateCustom  = "custom"
)

// AuthService manages the single admin password.
type AuthService struct {
	db              *gorm.DB
	defaultPassword string
}

// NewAuthService constructs AuthService. An empty defaultPassword falls back
// to DefaultAdminPassword.
func NewAuthService(gdb *gorm.DB, defaultPassword string) *AuthService {
	if strings.TrimSpace(defaultPassword) == "" {
		defaultPassword = DefaultAdminPassword
	}
	return &AuthService{db: gdb, defaultPassword: defaultPassword}
}

// EnsurePassword stores the default password when none is set.
func (s *AuthService) EnsurePassword(ctx context.Context) error {
	_, err := s.hash(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.SetPassword(ctx, s.defaultPassword)
}

// Verify checks a login attempt.
func (s *AuthService) Verify(ctx context.Context, password string) error {
	hash, err := s.hash(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.EnsurePassword(ctx); err != nil {
			return err
		}
		hash, err = s.hash(ctx)
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return nil
}

// SetPassword replaces the admin password.
func (s *AuthService) SetPassword(ctx context.Context, password string) error {
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return ErrPasswordMissing
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return upsertSetting(s.db.WithContext(ctx), db.SettingKeyAdminPasswordHash, string(hash))
}

// ResetPassword restores the default password.
func (s *AuthService) ResetPassword(ctx context.Context) error {
	return s.SetPassword(ctx, s.defaultPassword)
}

// PasswordState reports whether the default password is still in use.
func (s *AuthService) PasswordState(ctx context.Context) (string, error) {
	err := s.Verify(ctx, s.defaultPassword)
	switch {
	case err == nil:
		return PasswordStateDefault, nil
	case errors.Is(err, ErrInvalidPassword):
		return PasswordStateCustom, nil
	}
	return "", err
}

func (s *AuthService) hash(ctx context.Context) (string, error) {
	var record db.SystemSetting
	if err := s.db.WithContext(ctx).Where("key = ?", db.SettingKeyAdminPasswordHash).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		return "", fmt.Errorf("load admin password: %w", err)
	}
	return record.Value, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
