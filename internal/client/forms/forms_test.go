package forms

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClient() models.ClientRegistration {
	return models.ClientRegistration{
		Email:           "jane@example.com",
		Password:        "Secret1!x",
		ConfirmPassword: "Secret1!x",
		Nom:             "Doe",
		Prenom:          "Jane",
		Telephone:       "+1 (514) 123-4567",
	}
}

func validPro() models.ProRegistration {
	return models.ProRegistration{
		Email:           "pro@example.com",
		Password:        "Secret1!x",
		ConfirmPassword: "Secret1!x",
		Nom:             "Doe",
		Prenom:          "John",
		Telephone:       "+15141234567",
		BusinessName:    "Salon",
		SpecialtyID:     2,
		Pays:            "Canada",
		Province:        "QC",
		Ville:           "Montreal",
		AdresseSalon:    "1 rue X",
		CodePostal:      "H1H 1H1",
		TravailSalon:    true,
	}
}

func TestStruct_ValidClientRegistration(t *testing.T) {
	require.NoError(t, Struct(validClient()))
}

func TestStruct_ReportsEveryBadField(t *testing.T) {
	f := validClient()
	f.Email = "nope"
	f.Telephone = "514"
	f.ConfirmPassword = "different"
	f.Nom = ""

	err := Struct(f)
	require.Error(t, err)

	var errs Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "invalid email format", errs.Field("email"))
	assert.Equal(t, "invalid format, e.g. +1 514 123 4567", errs.Field("telephone"))
	assert.Equal(t, "passwords do not match", errs.Field("confirmpassword"))
	assert.Equal(t, "required", errs.Field("nom"))
	assert.Empty(t, errs.Field("prenom"))
}

func TestStruct_WeakPasswordMessage(t *testing.T) {
	f := validClient()
	f.Password = "alllowercase1!"
	f.ConfirmPassword = f.Password

	var errs Errors
	require.ErrorAs(t, Struct(f), &errs)
	assert.Equal(t, "at least one uppercase letter", errs.Field("password"))
}

func TestStruct_ProDistanceRequiredOnlyForHomeService(t *testing.T) {
	f := validPro()
	require.NoError(t, Struct(f))

	f.TravailDomicile = true
	var errs Errors
	require.ErrorAs(t, Struct(f), &errs)
	assert.Equal(t, "required", errs.Field("distance_max_km"))

	f.DistanceMaxKm = 20
	require.NoError(t, Struct(f))
}

func TestPasswordProblem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ab1!", "at least 8 characters"},
		{"abcdefg1!", "at least one uppercase letter"},
		{"ABCDEFG1!", "at least one lowercase letter"},
		{"Abcdefgh!", "at least one digit"},
		{"Abcdefgh1", "at least one special character"},
		{"Abcdefg1!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordProblem(tt.in))
		})
	}
}

func TestCredentials(t *testing.T) {
	require.NoError(t, Credentials("a@b.co", "x"))

	var errs Errors
	require.ErrorAs(t, Credentials("", ""), &errs)
	assert.Len(t, errs, 2)
	assert.Equal(t, "required", errs.Field("email"))
	assert.Equal(t, "required", errs.Field("password"))

	require.ErrorAs(t, Credentials("bad", "x"), &errs)
	assert.Equal(t, "invalid email format", errs.Field("email"))
}

func TestCode(t *testing.T) {
	require.NoError(t, Code("0427"))

	for _, bad := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		err := Code(bad)
		var ve ValidationError
		require.ErrorAs(t, err, &ve, bad)
		assert.Equal(t, "code", ve.Field)
	}
}

func TestErrors_ErrorJoinsFields(t *testing.T) {
	e := Errors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.Equal(t, "a: x; b: y", e.Error())
}
