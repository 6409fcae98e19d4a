package account

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-api-authsession/internal/domain"
	"github.com/go-api-authsession/internal/infrastructure/dynamo"
	"github.com/go-api-authsession/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccounts) NextID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockAccounts) Insert(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAccounts) Update(ctx context.Context, accountID int64, updates map[string]interface{}) error {
	return m.Called(ctx, accountID, updates).Error(0)
}

type mockCodes struct{ mock.Mock }

func (m *mockCodes) RequestCode(ctx context.Context, purpose domain.Purpose, identifier string) error {
	return m.Called(ctx, purpose, identifier).Error(0)
}
func (m *mockCodes) Redeem(ctx context.Context, purpose domain.Purpose, identifier, code string) error {
	return m.Called(ctx, purpose, identifier, code).Error(0)
}

type mockAvatars struct{ mock.Mock }

func (m *mockAvatars) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}
func (m *mockAvatars) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

// --- helpers ---

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSvc(a *mockAccounts, c *mockCodes, av *mockAvatars) Service {
	return NewService(ServiceDeps{
		Accounts:       a,
		Codes:          c,
		Avatars:        av,
		AvatarMaxBytes: 1024,
		Now:            func() time.Time { return fixedNow },
	})
}

func principal(t *testing.T) *domain.Account {
	t.Helper()
	digest, err := password.Hash("secret1")
	require.NoError(t, err)
	return &domain.Account{AccountID: 7, Email: "alice@x.com", PasswordHash: digest, Nickname: "alice"}
}

// --- registration ---

func TestSendRegisterCode_New(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	a.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	c.On("RequestCode", mock.Anything, domain.PurposeRegister, "a@x.com").Return(nil)

	require.NoError(t, newSvc(a, c, nil).SendRegisterCode(context.Background(), "A@X.com"))
	c.AssertExpectations(t)
}

func TestSendRegisterCode_AlreadyRegistered(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	a.On("FindByEmail", mock.Anything, "a@x.com").Return(&domain.Account{AccountID: 1}, nil)

	err := newSvc(a, c, nil).SendRegisterCode(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, domain.ErrConflict)
	c.AssertNotCalled(t, "RequestCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_Success(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	a.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, domain.ErrNotFound)
	c.On("Redeem", mock.Anything, domain.PurposeRegister, "bob@x.com", "123456").Return(nil)
	a.On("NextID", mock.Anything).Return(int64(11), nil)
	a.On("Insert", mock.Anything, mock.MatchedBy(func(acct *domain.Account) bool {
		return acct.AccountID == 11 && acct.Email == "bob@x.com" && acct.Nickname == "bob" &&
			password.Verify("secret1", acct.PasswordHash) && !acct.EmailVerified && acct.CreatedAt.Equal(fixedNow)
	})).Return(nil)

	p, err := newSvc(a, c, nil).Register(context.Background(), domain.RegisterRequest{
		Email: "Bob@x.com", Password: "secret1", Code: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.AccountID)
	assert.Equal(t, "bob", p.Nickname)
	a.AssertExpectations(t)
}

func TestRegister_DuplicateDoesNotBurnCode(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	a.On("FindByEmail", mock.Anything, "bob@x.com").Return(&domain.Account{AccountID: 3}, nil)

	_, err := newSvc(a, c, nil).Register(context.Background(), domain.RegisterRequest{
		Email: "bob@x.com", Password: "secret1", Code: "123456",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	c.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_BadCode(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	a.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, domain.ErrNotFound)
	c.On("Redeem", mock.Anything, domain.PurposeRegister, "bob@x.com", "000000").Return(domain.ErrCodeMismatch)

	_, err := newSvc(a, c, nil).Register(context.Background(), domain.RegisterRequest{
		Email: "bob@x.com", Password: "secret1", Code: "000000",
	})
	assert.ErrorIs(t, err, domain.ErrCodeMismatch)
	a.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRegister_OverlongPasswordKeepsCode(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	a.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, domain.ErrNotFound)

	// passes min/max rune validation but is 77 bytes
	_, err := newSvc(a, c, nil).Register(context.Background(), domain.RegisterRequest{
		Email: "bob@x.com", Password: strings.Repeat("😀", 19) + "1", Code: "123456",
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	c.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	a.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// --- email verification ---

func TestSendVerifyEmail(t *testing.T) {
	c := &mockCodes{}
	p := principal(t)
	c.On("RequestCode", mock.Anything, domain.PurposeVerifyEmail, "alice@x.com").Return(nil)
	svc := newSvc(&mockAccounts{}, c, nil)

	require.NoError(t, svc.SendVerifyEmail(context.Background(), p))

	p.EmailVerified = true
	assert.ErrorIs(t, svc.SendVerifyEmail(context.Background(), p), domain.ErrConflict)
}

func TestVerifyEmail_Success(t *testing.T) {
	a, c := &mockAccounts{}, &mockCodes{}
	c.On("Redeem", mock.Anything, domain.PurposeVerifyEmail, "alice@x.com", "654321").Return(nil)
	a.On("Update", mock.Anything, int64(7), map[string]interface{}{dynamo.FieldEmailVerified: true}).Return(nil)

	err := newSvc(a, c, nil).VerifyEmail(context.Background(), principal(t), domain.VerifyEmailRequest{
		Email: "Alice@x.com", Code: "654321",
	})
	require.NoError(t, err)
	a.AssertExpectations(t)
}

func TestVerifyEmail_OtherAddress(t *testing.T) {
	c := &mockCodes{}
	err := newSvc(&mockAccounts{}, c, nil).VerifyEmail(context.Background(), principal(t), domain.VerifyEmailRequest{
		Email: "mallory@x.com", Code: "654321",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	c.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- profile ---

func TestUpdateProfile(t *testing.T) {
	a := &mockAccounts{}
	nick, gender, bday, sig := "ally", domain.GenderFemale, "1990-05-04", "hi"
	wantBday := time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)
	a.On("Update", mock.Anything, int64(7), map[string]interface{}{
		dynamo.FieldNickname:  "ally",
		dynamo.FieldGender:    domain.GenderFemale,
		dynamo.FieldBirthday:  wantBday,
		dynamo.FieldSignature: "hi",
	}).Return(nil)

	p, err := newSvc(a, nil, nil).UpdateProfile(context.Background(), principal(t), domain.UpdateProfileRequest{
		Nickname: &nick, Gender: &gender, Birthday: &bday, Signature: &sig,
	})
	require.NoError(t, err)
	assert.Equal(t, "ally", p.Nickname)
	assert.Equal(t, "1990-05-04", p.Birthday)
	assert.Equal(t, "female", p.Gender)
}

func TestUpdateProfile_NoChanges(t *testing.T) {
	a := &mockAccounts{}
	p, err := newSvc(a, nil, nil).UpdateProfile(context.Background(), principal(t), domain.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Nickname)
	a.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProfile_BadBirthday(t *testing.T) {
	svc := newSvc(&mockAccounts{}, nil, nil)
	for _, b := range []string{"04/05/1990", "2030-01-01"} {
		b := b
		_, err := svc.UpdateProfile(context.Background(), principal(t), domain.UpdateProfileRequest{Birthday: &b})
		assert.ErrorIs(t, err, domain.ErrBadRequest, b)
	}
}

func TestInfo_MasksEmail(t *testing.T) {
	info := newSvc(nil, nil, nil).Info(context.Background(), &domain.Account{AccountID: 1, Email: "abcdefg@x.com"})
	assert.Equal(t, "abc****fg@x.com", info.Email)
}

// --- password ---

func TestChangePassword(t *testing.T) {
	a := &mockAccounts{}
	a.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(u map[string]interface{}) bool {
		digest, _ := u[dynamo.FieldPasswordHash].(string)
		return len(u) == 1 && password.Verify("newpass1", digest)
	})).Return(nil)

	err := newSvc(a, nil, nil).ChangePassword(context.Background(), principal(t), domain.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "newpass1", ConfirmPassword: "newpass1",
	})
	require.NoError(t, err)
	a.AssertExpectations(t)
}

func TestChangePassword_Rejections(t *testing.T) {
	// 4-byte letters: passes the letter/digit rule, fails the bcrypt limit
	long := strings.Repeat("𝒜", 19) + "1"
	cases := map[string]domain.ChangePasswordRequest{
		"confirm mismatch": {OldPassword: "secret1", NewPassword: "newpass1", ConfirmPassword: "newpass2"},
		"wrong old":        {OldPassword: "nope123", NewPassword: "newpass1", ConfirmPassword: "newpass1"},
		"same as old":      {OldPassword: "secret1", NewPassword: "secret1", ConfirmPassword: "secret1"},
		"letters only":     {OldPassword: "secret1", NewPassword: "abcdefg", ConfirmPassword: "abcdefg"},
		"digits only":      {OldPassword: "secret1", NewPassword: "1234567", ConfirmPassword: "1234567"},
		"over 72 bytes":    {OldPassword: "secret1", NewPassword: long, ConfirmPassword: long},
	}
	p := principal(t)
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			a := &mockAccounts{}
			err := newSvc(a, nil, nil).ChangePassword(context.Background(), p, req)
			assert.ErrorIs(t, err, domain.ErrBadRequest)
			a.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// --- avatar ---

func TestUploadAvatar_ReplacesPrevious(t *testing.T) {
	a, av := &mockAccounts{}, &mockAvatars{}
	p := principal(t)
	p.Avatar = "s3://bucket/avatars/old.png"
	body := bytes.NewReader([]byte("png"))

	av.On("Upload", mock.Anything, "me.PNG", body).Return("s3://bucket/avatars/new.png", nil)
	a.On("Update", mock.Anything, int64(7), map[string]interface{}{dynamo.FieldAvatar: "s3://bucket/avatars/new.png"}).Return(nil)
	av.On("Delete", mock.Anything, "s3://bucket/avatars/old.png").Return(errors.New("ignored"))

	url, err := newSvc(a, nil, av).UploadAvatar(context.Background(), p, AvatarUpload{Reader: body, Filename: "me.PNG", Size: 3})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/avatars/new.png", url)
	av.AssertExpectations(t)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	av := &mockAvatars{}
	svc := newSvc(&mockAccounts{}, nil, av)
	for _, in := range []AvatarUpload{
		{Filename: "a.gif", Size: 10},
		{Filename: "a.png", Size: 0},
		{Filename: "a.png", Size: 2048},
	} {
		_, err := svc.UploadAvatar(context.Background(), principal(t), in)
		assert.ErrorIs(t, err, domain.ErrBadRequest, in.Filename)
	}
	av.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}
