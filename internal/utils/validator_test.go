// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passwordPayload struct {
	Password string `validate:"required,strong_password"`
}

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Secret123!", true},
		{"Aa1!aaaa", true},
		{"short1A!", true},
		{"Aa1!aaa", false},     // too short
		{"secret123!", false},  // no uppercase
		{"SECRET123!", false},  // no lowercase
		{"SecretAbc!", false},  // no number
		{"Secret12345", false}, // no special character
	}

	for _, tc := range cases {
		err := ValidateStruct(&passwordPayload{Password: tc.password})
		if tc.valid {
			assert.NoError(t, err, "password %q should be accepted", tc.password)
		} else {
			assert.Error(t, err, "password %q should be rejected", tc.password)
		}
	}
}

func TestGetValidationErrors(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Title string `validate:"required,min=3"`
	}

	err := ValidateStruct(&payload{Email: "not-an-email", Title: "ab"})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "Invalid email format", errs[0].Message)
	assert.Equal(t, "title", errs[1].Field)
	assert.Contains(t, errs[1].Message, "at least 3")
}
