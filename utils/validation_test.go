package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMsisdn(t *testing.T) {
	// Local, international and bare formats all converge on the same MSISDN
	for _, input := range []string{"0712345678", "+254712345678", "254712345678", " 0712345678 "} {
		msisdn, err := NormalizeMsisdn(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "254712345678", msisdn, "input %q", input)
	}
}

func TestNormalizeMsisdnRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"", "   ", "12345", "not-a-phone", "07123"} {
		_, err := NormalizeMsisdn(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestValidateChargeAmount(t *testing.T) {
	amount, err := ValidateChargeAmount(1500)
	require.NoError(t, err)
	assert.Equal(t, 1500, amount)

	amount, err = ValidateChargeAmount(1)
	require.NoError(t, err)
	assert.Equal(t, 1, amount)

	_, err = ValidateChargeAmount(0)
	assert.Error(t, err)
	_, err = ValidateChargeAmount(-100)
	assert.Error(t, err)
	_, err = ValidateChargeAmount(1500.50)
	assert.Error(t, err)
}

func TestValidateUsername(t *testing.T) {
	ok, _ := ValidateUsername("student_42")
	assert.True(t, ok)

	for _, username := range []string{"ab", "has space", "way_too_long_username_here", "bad!chars"} {
		ok, msg := ValidateUsername(username)
		assert.False(t, ok, "username %q", username)
		assert.NotEmpty(t, msg)
	}
}

func TestValidateEmail(t *testing.T) {
	ok, _ := ValidateEmail("learner@elimustore.co.ke")
	assert.True(t, ok)

	for _, email := range []string{"", "plain", "missing@tld", "@nodomain.com"} {
		ok, msg := ValidateEmail(email)
		assert.False(t, ok, "email %q", email)
		assert.NotEmpty(t, msg)
	}
}
