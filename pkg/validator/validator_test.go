package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seekInput struct {
	VideoId string  `json:"video_id" validate:"required,max=8"`
	Offset  float64 `json:"offset" validate:"gte=-10,lte=10"`
	Hidden  string  `json:"-"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(seekInput{VideoId: "abc", Offset: -3})
	assert.True(t, ok)
	assert.Nil(t, errs)

	errs, ok = v.Validate(seekInput{Offset: 11})
	require.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Field: "video_id", Code: "REQUIRED", Message: "video_id is required"}, errs[0])
	assert.Equal(t, "offset", errs[1].Field)
	assert.Equal(t, "LTE", errs[1].Code)
	assert.Equal(t, "video_id is required; offset must not exceed 10", errs.Error())
}
