package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	var syntaxErr *json.SyntaxError
	jsonErr := json.Unmarshal([]byte("{"), &struct{}{})
	assert.ErrorAs(t, jsonErr, &syntaxErr)

	tests := []struct {
		name      string
		err       error
		retryable bool
		errType   string
	}{
		{"nil", nil, false, ""},
		{"permanent", Permanent(errors.New("bad payload")), false, "permanent"},
		{"json", fmt.Errorf("decode: %w", jsonErr), false, "json_decode_error"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"no rows", pgx.ErrNoRows, false, "not_found"},
		{"unique", &pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{"fk", &pgconn.PgError{Code: "23503"}, false, "constraint_violation"},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true, "db_transient_error"},
		{"conn exception", &pgconn.PgError{Code: "08006"}, true, "db_transient_error"},
		{"syntax", &pgconn.PgError{Code: "42601"}, false, "db_error"},
		{"url", &url.Error{Op: "Post", URL: "http://agent", Err: errors.New("refused")}, true, "network_error"},
		{"refused string", errors.New("dial tcp: connection refused"), true, "connection_error"},
		{"unknown", errors.New("boom"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, errType := IsRetryableError(tt.err)
			assert.Equal(t, tt.retryable, retryable)
			assert.Equal(t, tt.errType, errType)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(1, 3, true))
	assert.True(t, ShouldRetry(3, 3, true))
	assert.False(t, ShouldRetry(4, 3, true))
	assert.False(t, ShouldRetry(1, 3, false))
}

func TestFormatKeys(t *testing.T) {
	assert.Equal(t, "retry:event-log:abc", FormatRetryKey("event-log", "abc"))
	assert.Equal(t, "dedup:event-log:abc", FormatDedupKey("event-log", "abc"))
}
