package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-20")
	assert.NoError(t, err)
	assert.Equal(t, "2024-07-20", d.String())
	assert.False(t, d.IsZero())
}

func TestParseDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "20-07-2024", "2024/07/20", "2024-13-01", "not a date"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, "input %q", raw)
		assert.True(t, IsValidation(err), "input %q", raw)
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d, _ := ParseDate("2024-03-01")

	assert.Equal(t, "2024-02-29", d.Prev().String()) // leap year
	assert.Equal(t, "2024-03-02", d.Next().String())

	later, _ := ParseDate("2024-03-05")
	assert.True(t, later.After(d))
	assert.True(t, d.Before(later))
	assert.Equal(t, 4, d.DaysUntil(later))
}

func TestDateOf_TruncatesToDay(t *testing.T) {
	ts := time.Date(2024, 7, 20, 23, 59, 58, 0, time.UTC)
	assert.Equal(t, "2024-07-20", DateOf(ts).String())
}

func TestNewSessionID(t *testing.T) {
	id, err := NewSessionID("learner-42")
	assert.NoError(t, err)
	assert.Equal(t, "learner-42", id.String())

	_, err = NewSessionID("")
	assert.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = NewSessionID("   ")
	assert.Error(t, err)
}

func TestNewContentIndex(t *testing.T) {
	idx, err := NewContentIndex(0)
	assert.NoError(t, err)
	assert.Equal(t, 0, idx.Int())

	_, err = NewContentIndex(-1)
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 65, PercentOf(13, 20).Int())
	assert.Equal(t, 100, PercentOf(20, 20).Int())
	assert.Equal(t, 0, PercentOf(0, 20).Int())

	// floor, never round
	assert.Equal(t, 66, PercentOf(2, 3).Int())
	assert.Equal(t, 33, PercentOf(1, 3).Int())

	// zero or negative total scores 0, never divides
	assert.Equal(t, 0, PercentOf(5, 0).Int())
	assert.Equal(t, 0, PercentOf(5, -1).Int())
}
