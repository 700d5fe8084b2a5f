package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalOnly(t *testing.T) {
	assert.False(t, GalleryPost{ID: 1}.LocalOnly())
	assert.False(t, GalleryPost{ID: 999_999_999_999}.LocalOnly())
	assert.True(t, GalleryPost{ID: 1_000_000_000_000}.LocalOnly())
	assert.True(t, GalleryPost{ID: time.Now().UnixMilli()}.LocalOnly())
}

func TestShareText(t *testing.T) {
	post := GalleryPost{UserName: "Ana", Message: "Felicidades!"}
	assert.Equal(t, "Ana compartilhou uma homenagem no Chá Revelação\n\nFelicidades!",
		post.ShareText("Chá Revelação"))

	bare := GalleryPost{UserName: "Ana"}
	assert.Equal(t, "Ana compartilhou uma homenagem no Chá Revelação",
		bare.ShareText("Chá Revelação"))
}

func TestSessionValidAt(t *testing.T) {
	now := time.Now()

	assert.True(t, Session{Token: "t", ExpiresAt: now.Add(time.Minute).UnixMilli()}.ValidAt(now))
	assert.False(t, Session{Token: "t", ExpiresAt: now.Add(-time.Minute).UnixMilli()}.ValidAt(now))
	assert.False(t, Session{Token: "", ExpiresAt: now.Add(time.Minute).UnixMilli()}.ValidAt(now))
	assert.False(t, Session{Token: "t", ExpiresAt: now.UnixMilli()}.ValidAt(now))
}
