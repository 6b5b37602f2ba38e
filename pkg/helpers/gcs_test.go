package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCSPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/media/avatars/u1/a.png", GCSPublicURL("media", "avatars/u1/a.png"))
	assert.Equal(t, "https://storage.googleapis.com/media/avatars/my%20pic.png", GCSPublicURL("media", "avatars/my pic.png"))
}
