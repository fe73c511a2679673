package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfileRequestApply_OnlyProvidedFields(t *testing.T) {
	year := 2019
	profile := &models.Profile{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Headline:       "Engineer",
		CurrentCompany: "Analytical",
		Skills:         []string{"math"},
	}

	body := `{"headline":"Principal Engineer","skills":["go","sql"],"graduationYear":2019}`
	var req UpdateProfileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	req.Apply(profile)

	assert.Equal(t, "Principal Engineer", profile.Headline)
	assert.Equal(t, []string{"go", "sql"}, profile.Skills)
	assert.Equal(t, &year, profile.GraduationYear)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Analytical", profile.CurrentCompany)
}

func TestHandleValidationError(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}
	v := validator.New()
	err := v.Struct(payload{Email: "nope"})

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "Email must be a valid email address", fields[0].Message)

	plain := HandleValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request format", plain.Message)
}

func TestNewPageNeverNil(t *testing.T) {
	page := NewPage[int](nil, PaginationInfo{Page: 2, Limit: 20, Total: 20, Pages: 1})
	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"pagination":{"page":2,"limit":20,"total":20,"pages":1}}`, string(raw))
}

func TestResponseEnvelope(t *testing.T) {
	raw, err := json.Marshal(NewResponse(CountResponse{Count: 3}, ""))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, float64(3), decoded["data"].(map[string]interface{})["count"])
	assert.Contains(t, decoded, "timestamp")
	assert.NotContains(t, decoded, "message")
}
