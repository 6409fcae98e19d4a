package validate

import (
	"testing"

	"github.com/go-api-authsession/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStruct_LoginRequest(t *testing.T) {
	assert.NoError(t, Struct(&domain.LoginRequest{Email: "a@x.com", Password: "secret1"}))

	err := Struct(&domain.LoginRequest{Email: "nope", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.ErrorContains(t, err, "email must be a valid email address")
	assert.ErrorContains(t, err, "password must be at least 6 characters")
}

func TestStruct_RegisterRequestCode(t *testing.T) {
	req := &domain.RegisterRequest{Email: "a@x.com", Password: "secret1", Code: "12ab56"}
	assert.ErrorContains(t, Struct(req), "code must contain digits only")

	req.Code = "12345"
	assert.ErrorContains(t, Struct(req), "code must be exactly 6 characters")

	req.Code = "123456"
	assert.NoError(t, Struct(req))
}

func TestStruct_UpdateProfileGender(t *testing.T) {
	g := "robot"
	assert.ErrorContains(t, Struct(&domain.UpdateProfileRequest{Gender: &g}), "gender must be one of [male female secret]")
	g = "secret"
	assert.NoError(t, Struct(&domain.UpdateProfileRequest{Gender: &g}))
	assert.NoError(t, Struct(&domain.UpdateProfileRequest{}))
}

func TestStruct_Required(t *testing.T) {
	err := Struct(&domain.VerifyEmailRequest{})
	assert.ErrorContains(t, err, "email is required")
	assert.ErrorContains(t, err, "code is required")
}

func TestStruct_FallsBackToGoFieldName(t *testing.T) {
	s := struct {
		Token string `validate:"required"`
	}{}
	assert.ErrorContains(t, Struct(s), "Token is required")
}
