package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: cause, want: KindUnknown},
		{name: "transport", err: NewError(KindTransport, "fetch", cause), want: KindTransport},
		{name: "wrapped", err: fmt.Errorf("cycle: %w", NewError(KindDecode, "fetch", cause)), want: KindDecode},
		{name: "unknown status", err: &UnknownStatusError{Name: "hw", Status: "lost"}, want: KindUnknownStatus},
		{
			name: "unknown status inside error",
			err:  NewError(KindMalformedRecord, "translate", &UnknownStatusError{Name: "hw", Status: "lost"}),
			want: KindUnknownStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewError(KindDelivery, "telegram send", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "telegram send: boom", err.Error())
	assert.True(t, IsKind(err, KindDelivery))
	assert.False(t, IsKind(nil, KindDelivery))
}

func TestWatermarkValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Watermark(0).Valid())
	assert.True(t, Watermark(1700000000).Valid())
	assert.False(t, NoWatermark.Valid())
}

func TestStatusUpdateLatest(t *testing.T) {
	t.Parallel()

	_, ok := StatusUpdate{}.Latest()
	assert.False(t, ok)

	update := StatusUpdate{Homeworks: []Submission{
		{Name: "first", Status: StatusApproved},
		{Name: "second", Status: StatusRejected},
	}}
	latest, ok := update.Latest()
	assert.True(t, ok)
	assert.Equal(t, "first", latest.Name)
}
