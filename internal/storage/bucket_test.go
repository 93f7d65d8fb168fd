package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFromURL(t *testing.T) {
	assert.Equal(t, "public/user-001-1.jpeg",
		PathFromURL("chat-images", "https://storage.googleapis.com/chat-images/public/user-001-1.jpeg"))

	assert.Equal(t, "collage_creation/user-001/collage_20250601_120000.jpg",
		PathFromURL("chat-images", "https://storage.googleapis.com/chat-images/collage_creation/user-001/collage_20250601_120000.jpg"))

	// URL from a different bucket yields nothing
	assert.Equal(t, "", PathFromURL("chat-images", "https://storage.googleapis.com/other-bucket/file.jpeg"))
}
