package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freelog/freelog/internal/validation"
)

func TestNewClientInput_Validate(t *testing.T) {
	tests := []struct {
		name       string
		input      NewClientInput
		wantFields []string
	}{
		{
			name:  "valid",
			input: NewClientInput{Name: "Acme Inc", Contact: "John Smith", Email: "john@acmeinc.com"},
		},
		{
			name:       "all missing",
			input:      NewClientInput{},
			wantFields: []string{"name", "contact", "email"},
		},
		{
			name:       "bad email",
			input:      NewClientInput{Name: "Acme", Contact: "John", Email: "john-at-acme"},
			wantFields: []string{"email"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *validation.Error
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				require.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestNewClientInput_Build_NormalizesEmail(t *testing.T) {
	now := time.Now()
	c := NewClientInput{Name: " Acme ", Contact: "John", Email: " John@AcmeInc.com "}.Build("c1", "f1", now)

	require.Equal(t, "c1", c.ID)
	require.Equal(t, "f1", c.OwnerID)
	require.Equal(t, "Acme", c.Name)
	require.Equal(t, "john@acmeinc.com", c.Email)
	require.Equal(t, StatusActive, c.Status)
	require.Equal(t, now, c.CreatedAt)
}

func TestClientNotFoundError_Error(t *testing.T) {
	require.Equal(t, `client not found: id="c9"`, (&ClientNotFoundError{ID: "c9"}).Error())
}
