package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-api-authsession/internal/domain"
	"github.com/go-api-authsession/internal/infrastructure/dynamo"
	"github.com/go-api-authsession/internal/pkg/mask"
	"github.com/go-api-authsession/internal/pkg/password"
)

const birthdayLayout = "2006-01-02"

var avatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Service covers registration and the profile operations of an authenticated
// account. Every method that acts on an existing account takes the principal
// resolved by the authentication layer.
type Service interface {
	SendRegisterCode(ctx context.Context, email string) error
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Profile, error)

	SendVerifyEmail(ctx context.Context, principal *domain.Account) error
	VerifyEmail(ctx context.Context, principal *domain.Account, req domain.VerifyEmailRequest) error

	GetProfile(ctx context.Context, principal *domain.Account) *domain.Profile
	UpdateProfile(ctx context.Context, principal *domain.Account, req domain.UpdateProfileRequest) (*domain.Profile, error)
	Info(ctx context.Context, principal *domain.Account) *domain.AccountInfo
	ChangePassword(ctx context.Context, principal *domain.Account, req domain.ChangePasswordRequest) error
	UploadAvatar(ctx context.Context, principal *domain.Account, in AvatarUpload) (string, error)
}

// AvatarUpload is a single uploaded image.
type AvatarUpload struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

type accountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, accountID int64, updates map[string]interface{}) error
}

type codeVerifier interface {
	RequestCode(ctx context.Context, purpose domain.Purpose, identifier string) error
	Redeem(ctx context.Context, purpose domain.Purpose, identifier, code string) error
}

type avatarStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

type ServiceDeps struct {
	Accounts       accountStore
	Codes          codeVerifier
	Avatars        avatarStore
	AvatarMaxBytes int64
	Now            func() time.Time
}

type service struct {
	accounts       accountStore
	codes          codeVerifier
	avatars        avatarStore
	avatarMaxBytes int64
	now            func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		accounts:       deps.Accounts,
		codes:          deps.Codes,
		avatars:        deps.Avatars,
		avatarMaxBytes: deps.AvatarMaxBytes,
		now:            now,
	}
}

func (s *service) SendRegisterCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.ensureUnregistered(ctx, email); err != nil {
		return err
	}
	return s.codes.RequestCode(ctx, domain.PurposeRegister, email)
}

// Register checks uniqueness and hashes the password before redeeming the
// code, so a code is never burned by a request that cannot succeed.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Profile, error) {
	email := domain.NormalizeEmail(req.Email)
	if err := s.ensureUnregistered(ctx, email); err != nil {
		return nil, err
	}
	digest, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.codes.Redeem(ctx, domain.PurposeRegister, email, req.Code); err != nil {
		return nil, err
	}
	accountID, err := s.accounts.NextID(ctx)
	if err != nil {
		return nil, err
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname, _, _ = strings.Cut(email, "@")
	}
	now := s.now().UTC()
	a := &domain.Account{
		AccountID:    accountID,
		Email:        email,
		PasswordHash: digest,
		Nickname:     nickname,
		Gender:       domain.GenderSecret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Insert(ctx, a); err != nil {
		return nil, err
	}
	slog.Info("account registered", "account_id", accountID)
	return domain.ProfileOf(a), nil
}

func (s *service) SendVerifyEmail(ctx context.Context, principal *domain.Account) error {
	if principal.EmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	return s.codes.RequestCode(ctx, domain.PurposeVerifyEmail, principal.Email)
}

func (s *service) VerifyEmail(ctx context.Context, principal *domain.Account, req domain.VerifyEmailRequest) error {
	if domain.NormalizeEmail(req.Email) != principal.Email {
		return fmt.Errorf("email does not belong to this account: %w", domain.ErrForbidden)
	}
	if principal.EmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	if err := s.codes.Redeem(ctx, domain.PurposeVerifyEmail, principal.Email, req.Code); err != nil {
		return err
	}
	return s.accounts.Update(ctx, principal.AccountID, map[string]interface{}{
		dynamo.FieldEmailVerified: true,
	})
}

func (s *service) GetProfile(_ context.Context, principal *domain.Account) *domain.Profile {
	return domain.ProfileOf(principal)
}

func (s *service) UpdateProfile(ctx context.Context, principal *domain.Account, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	updated := *principal
	updates := map[string]interface{}{}
	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname == "" {
			return nil, fmt.Errorf("nickname must not be blank: %w", domain.ErrBadRequest)
		}
		updates[dynamo.FieldNickname] = nickname
		updated.Nickname = nickname
	}
	if req.Gender != nil {
		updates[dynamo.FieldGender] = *req.Gender
		updated.Gender = *req.Gender
	}
	if req.Birthday != nil {
		b, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			return nil, fmt.Errorf("birthday must be YYYY-MM-DD: %w", domain.ErrBadRequest)
		}
		if b.After(s.now()) {
			return nil, fmt.Errorf("birthday is in the future: %w", domain.ErrBadRequest)
		}
		updates[dynamo.FieldBirthday] = b
		updated.Birthday = &b
	}
	if req.Signature != nil {
		updates[dynamo.FieldSignature] = *req.Signature
		updated.Signature = *req.Signature
	}
	if len(updates) == 0 {
		return domain.ProfileOf(principal), nil
	}
	if err := s.accounts.Update(ctx, principal.AccountID, updates); err != nil {
		return nil, err
	}
	return domain.ProfileOf(&updated), nil
}

func (s *service) Info(_ context.Context, principal *domain.Account) *domain.AccountInfo {
	return &domain.AccountInfo{
		AccountID: principal.AccountID,
		Email:     mask.Email(principal.Email),
		Nickname:  principal.Nickname,
		Avatar:    principal.Avatar,
		CreatedAt: principal.CreatedAt,
	}
}

func (s *service) ChangePassword(ctx context.Context, principal *domain.Account, req domain.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return fmt.Errorf("passwords do not match: %w", domain.ErrBadRequest)
	}
	if !password.Verify(req.OldPassword, principal.PasswordHash) {
		return fmt.Errorf("old password is incorrect: %w", domain.ErrBadRequest)
	}
	if req.NewPassword == req.OldPassword {
		return fmt.Errorf("new password must differ from the old one: %w", domain.ErrBadRequest)
	}
	if !letterAndDigit(req.NewPassword) {
		return fmt.Errorf("password needs at least one letter and one digit: %w", domain.ErrBadRequest)
	}
	digest, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.accounts.Update(ctx, principal.AccountID, map[string]interface{}{
		dynamo.FieldPasswordHash: digest,
	})
}

func (s *service) UploadAvatar(ctx context.Context, principal *domain.Account, in AvatarUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !avatarExts[ext] {
		return "", fmt.Errorf("avatar must be jpg, jpeg or png: %w", domain.ErrBadRequest)
	}
	if in.Size <= 0 {
		return "", fmt.Errorf("avatar is empty: %w", domain.ErrBadRequest)
	}
	if s.avatarMaxBytes > 0 && in.Size > s.avatarMaxBytes {
		return "", fmt.Errorf("avatar exceeds %d bytes: %w", s.avatarMaxBytes, domain.ErrBadRequest)
	}
	url, err := s.avatars.Upload(ctx, in.Filename, in.Reader)
	if err != nil {
		return "", err
	}
	if err := s.accounts.Update(ctx, principal.AccountID, map[string]interface{}{
		dynamo.FieldAvatar: url,
	}); err != nil {
		return "", err
	}
	if principal.Avatar != "" {
		if err := s.avatars.Delete(ctx, principal.Avatar); err != nil {
			slog.Warn("delete previous avatar", "account_id", principal.AccountID, "err", err)
		}
	}
	return url, nil
}

func (s *service) ensureUnregistered(ctx context.Context, email string) error {
	_, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

func letterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
