package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		locals  any
		want    uuid.UUID
		wantErr bool
	}{
		{"valid sub", &jwt.Token{Claims: jwt.MapClaims{"sub": id.String()}}, id, false},
		{"no token", nil, uuid.Nil, true},
		{"missing sub", &jwt.Token{Claims: jwt.MapClaims{}}, uuid.Nil, true},
		{"malformed sub", &jwt.Token{Claims: jwt.MapClaims{"sub": "nope"}}, uuid.Nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got uuid.UUID
			var gotErr error
			app.Get("/", func(c *fiber.Ctx) error {
				if tt.locals != nil {
					c.Locals("user", tt.locals)
				}
				got, gotErr = ProfileID(c)
				return c.SendStatus(fiber.StatusOK)
			})

			_, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			if tt.wantErr {
				assert.Error(t, gotErr)
				return
			}
			assert.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
