package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		method string
		err    error
		status int
		body   string
	}{
		{"healthy", http.MethodGet, nil, http.StatusOK, "OK"},
		{"store down", http.MethodGet, errors.New("closed"), http.StatusServiceUnavailable, "session store unavailable"},
		{"wrong method", http.MethodPost, nil, http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthHandler(fakePinger{err: tt.err})(rec, httptest.NewRequest(tt.method, "/healthz", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
