package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowValidate(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, Window{Start: now.Add(-time.Hour), End: now}.Validate())
	assert.NoError(t, Window{Start: now, End: now}.Validate())
	assert.ErrorIs(t, Window{Start: now, End: now.Add(-time.Hour)}.Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{End: now}.Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{Start: now}.Validate(), ErrInvalidWindow)
	assert.ErrorIs(t, Window{}.Validate(), ErrInvalidWindow)
}
