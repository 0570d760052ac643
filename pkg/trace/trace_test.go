package trace

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc123")
	assert.Equal(t, "abc123", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestWithContextIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithContext(ctx, ""))
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "client-id", FromHeader("client-id"))

	generated := FromHeader("")
	assert.Len(t, generated, 32)

	tooLong := FromHeader(strings.Repeat("x", 65))
	assert.Len(t, tooLong, 32)
}
