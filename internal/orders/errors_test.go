package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create: %w", NewInsufficientStock("p-1", 4))

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, "INSUFFICIENT_STOCK", KindOf(err).String())
}

func TestError_TransportUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewTransport("fetch", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "stock ledger fetch failed: dial tcp: connection refused", err.Error())
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "UNKNOWN", KindUnknown.String())
}

func TestParseKind_RoundTrip(t *testing.T) {
	for k := KindUnknown; k <= KindInvalidTransition; k++ {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindUnknown, ParseKind("SOMETHING_ELSE"))
}
