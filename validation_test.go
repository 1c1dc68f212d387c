package session_test

import (
	"testing"

	session "github.com/jobconnect/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpInputValidate(t *testing.T) {
	valid := session.SignUpInput{
		Email:    "alice@example.com",
		Password: "Str0ng!pass",
	}
	assert.NoError(t, valid.Validate())

	badEmail := valid
	badEmail.Email = "not-an-email"
	err := badEmail.Validate()
	require.Error(t, err)
	assert.True(t, session.IsRegistrationRejected(err))

	weakPassword := valid
	weakPassword.Password = "short"
	err = weakPassword.Validate()
	require.Error(t, err)
	assert.True(t, session.IsRegistrationRejected(err))

	badRole := valid
	badRole.Role = session.Role("admin")
	assert.Error(t, badRole.Validate())

	withRole := valid
	withRole.Role = session.RoleEmployer
	assert.NoError(t, withRole.Validate())

	badMobile := valid
	badMobile.Mobile = "123"
	assert.Error(t, badMobile.Validate())

	goodMobile := valid
	goodMobile.Mobile = "+1 212 555 0100"
	assert.NoError(t, goodMobile.Validate())
}

func TestNormalizeMobile(t *testing.T) {
	got, err := session.NormalizeMobile("+1 212 555 0100")
	require.NoError(t, err)
	assert.Equal(t, "+12125550100", got)

	_, err = session.NormalizeMobile("123")
	assert.Error(t, err)
}
