package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/companion-chat/internal/models"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestErrorWithData(t *testing.T) {
	resp := ErrorWithData("limit", 42)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "limit", resp.Error)
	assert.Equal(t, 42, resp.Data)
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    []string
	}{
		{
			name:    "bet direction out of range",
			payload: models.BetRequest{Direction: 2},
			want:    []string{"field Direction must be one of [1 -1]"},
		},
		{
			name:    "missing bet direction",
			payload: models.BetRequest{},
			want:    []string{"field Direction is a required field"},
		},
		{
			name: "bad card",
			payload: models.CheckoutRequest{
				CardNumber: "42",
				Expiry:     "13/99",
				CVC:        "abc",
				Name:       "A",
			},
			want: []string{
				"field CardNumber is too short, min 12",
				"field Expiry can contain only date in format MM/YY",
				"field CVC can contain only numbers",
			},
		},
		{
			name:    "voice id with symbols",
			payload: models.VoiceSettingsRequest{VoiceID: ptr("a-b")},
			want:    []string{"field VoiceID can contain only numbers and letters"},
		},
	}

	v := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, StatusError, resp.Status)
			for _, msg := range tt.want {
				assert.Contains(t, resp.Error, msg)
			}
		})
	}
}

func TestValidationError_Max(t *testing.T) {
	long := make([]byte, 4001)
	for i := range long {
		long[i] = 'a'
	}
	err := validator.New().Struct(models.SendMessageRequest{Text: string(long)})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, "field Text is too long, max 4000", resp.Error)
}

func ptr[T any](v T) *T { return &v }
