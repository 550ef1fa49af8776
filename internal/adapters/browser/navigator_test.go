package browser

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	opened []string
	err    error
}

func (r *recorder) open(_ context.Context, target string) error {
	r.opened = append(r.opened, target)
	return r.err
}

func TestNavigator_Navigate(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		target     string
		openErr    error
		wantOpened []string
		wantOut    string
		wantErr    bool
	}{
		{
			name:       "absolute url opens",
			target:     "https://auth.example.com/?redirect=x",
			wantOpened: []string{"https://auth.example.com/?redirect=x"},
		},
		{
			name:       "relative path resolves against base",
			base:       "https://app.example.com",
			target:     "/dashboard",
			wantOpened: []string{"https://app.example.com/dashboard"},
		},
		{
			name:    "relative path without base is printed",
			target:  "/dashboard",
			wantOut: "Continue at /dashboard",
		},
		{
			name:       "launcher failure prints url",
			target:     "https://auth.example.com/",
			openErr:    errors.New("no display"),
			wantOpened: []string{"https://auth.example.com/"},
			wantOut:    "https://auth.example.com/",
		},
		{
			name:    "non-http scheme refused",
			target:  "file:///etc/passwd",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{err: tt.openErr}
			var out bytes.Buffer
			n, err := New(Config{BaseURL: tt.base, Out: &out, Open: rec.open})
			require.NoError(t, err)

			err = n.Navigate(context.Background(), tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, rec.opened)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOpened, rec.opened)
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(Config{BaseURL: "app.example.com"})
	require.Error(t, err)
}
