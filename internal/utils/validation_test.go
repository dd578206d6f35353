package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRequest struct {
	Difficulty string `binding:"omitempty,oneof=all basic intermediate advanced"`
	Count      int    `binding:"omitempty,gt=0,lte=50"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&fakeRequest{Difficulty: "basic", Count: 5}))
	assert.NoError(t, ValidateStruct(&fakeRequest{}))

	err := ValidateStruct(&fakeRequest{Difficulty: "expert"})
	assert.Error(t, err)
	assert.Equal(t, ErrorCodeValidationFailed, GetErrorCode(err))

	assert.Error(t, ValidateStruct(&fakeRequest{Count: 51}))
}

func TestIsValidYouTubeID(t *testing.T) {
	assert.True(t, IsValidYouTubeID("dQw4w9WgXcQ"))
	assert.True(t, IsValidYouTubeID("PLynG8gQD-n8BMplEWZHg0enkPUQ2DPjEa"))

	assert.False(t, IsValidYouTubeID(""))
	assert.False(t, IsValidYouTubeID("short"))
	assert.False(t, IsValidYouTubeID("has space in it"))
}
