package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	d := FromMap("welcome", map[string]any{"app_name": "VidStream", "fullname": "A B", "username": "ab", "login_url": "https://vid.example/login"})

	subject, text, html, err := Render(d)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to VidStream", subject)
	assert.Contains(t, text, "@ab")
	assert.Contains(t, html, `href="https://vid.example/login"`)
}

func TestRender_PasswordChangedEscapesHTML(t *testing.T) {
	d := FromMap("password_changed", map[string]any{"app_name": "VidStream", "fullname": "<b>x</b>", "username": "ab"})

	_, _, html, err := Render(d)
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>x</b>")
	assert.Contains(t, html, "&lt;b&gt;x&lt;/b&gt;")
}

func TestRender_UnknownType(t *testing.T) {
	_, _, _, err := Render(AccountEmail{Type: "nope"})
	assert.Error(t, err)
}
