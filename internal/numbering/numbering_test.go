package numbering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	max string
	err error
}

func (f *fakeStore) MaxDisplayNumber(_ context.Context) (string, error) {
	return f.max, f.err
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "OS #001", Format(1, KindServiceOrder))
	assert.Equal(t, "AG #007", Format(7, KindPreSchedule))
	assert.Equal(t, "OS #042", Format(42, KindServiceOrder))
	// beyond 999 the number grows without re-padding
	assert.Equal(t, "OS #1000", Format(1000, KindServiceOrder))
}

func TestExtractRoundTrip(t *testing.T) {
	value, ok := Extract(Format(42, KindServiceOrder), KindServiceOrder)
	require.True(t, ok)
	assert.Equal(t, 42, value)

	value, ok = Extract(Format(999, KindPreSchedule), KindPreSchedule)
	require.True(t, ok)
	assert.Equal(t, 999, value)
}

func TestExtractRejectsWrongKind(t *testing.T) {
	_, ok := Extract("OS #010", KindPreSchedule)
	assert.False(t, ok)

	_, ok = Extract("banana", KindServiceOrder)
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("AG #003", KindPreSchedule))
	assert.False(t, Valid("AG#003", KindPreSchedule))
	assert.False(t, Valid("AG #", KindPreSchedule))
}

func TestNextStartsAtOne(t *testing.T) {
	gen := NewGenerator(&fakeStore{}, KindServiceOrder, nil)
	assert.Equal(t, "OS #001", gen.Next(context.Background()))
}

func TestNextIncrements(t *testing.T) {
	gen := NewGenerator(&fakeStore{max: "OS #007"}, KindServiceOrder, nil)
	assert.Equal(t, "OS #008", gen.Next(context.Background()))
}

func TestNextRollsPastPadding(t *testing.T) {
	gen := NewGenerator(&fakeStore{max: "AG #999"}, KindPreSchedule, nil)
	assert.Equal(t, "AG #1000", gen.Next(context.Background()))
}

func TestNextResetsOnUnparseableMax(t *testing.T) {
	gen := NewGenerator(&fakeStore{max: "garbage"}, KindServiceOrder, nil)
	assert.Equal(t, "OS #001", gen.Next(context.Background()))
}

func TestNextFallsBackOnStoreError(t *testing.T) {
	gen := NewGenerator(&fakeStore{err: errors.New("store down")}, KindServiceOrder, nil)
	gen.now = func() time.Time { return time.Unix(1_712_345_678, 0) }

	got := gen.Next(context.Background())
	// last six digits of the unix timestamp
	assert.Equal(t, "OS #345678", got)
}
