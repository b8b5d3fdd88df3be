package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"id": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("что-то пошло не так")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "что-то пошло не так", resp.Error)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Title string `validate:"required"`
		Email string `validate:"required,email"`
		Price int    `validate:"gte=0"`
	}

	err := validator.New().Struct(req{Email: "not-an-email", Price: -1})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Title is a required field")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Price must be greater than or equal to 0")
}
