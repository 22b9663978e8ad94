package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	valid := email.Message{To: "jane@example.com", Subject: "Hi", HTMLBody: "<p>Hi</p>"}
	assert.NoError(t, valid.Validate())

	err := email.Message{To: "nope", Subject: "", HTMLBody: ""}.Validate()
	require.ErrorIs(t, err, email.ErrInvalidMessage)
	ve := validator.ExtractValidationErrors(err)
	assert.True(t, ve.Has("to"))
	assert.True(t, ve.Has("subject"))
	assert.True(t, ve.Has("html_body"))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		_, err := email.New(email.Config{})
		assert.ErrorIs(t, err, email.ErrDisabled)
	})

	t.Run("dev dir", func(t *testing.T) {
		s, err := email.New(email.Config{DevDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &email.DevSender{}, s)
	})

	t.Run("postmark", func(t *testing.T) {
		s, err := email.New(email.Config{PostmarkServerToken: "token", SenderEmail: "noreply@example.com"})
		require.NoError(t, err)
		assert.IsType(t, &email.PostmarkSender{}, s)
	})

	t.Run("postmark invalid sender", func(t *testing.T) {
		_, err := email.New(email.Config{PostmarkServerToken: "token", SenderEmail: "bad"})
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestDevSender_Send(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.Send(context.Background(), email.Message{
		To:       "jane@example.com",
		Subject:  "New Job Posted!",
		HTMLBody: "<p>body</p>",
		Tag:      "job_alert",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = e.Name()
		case ".json":
			jsonFile = e.Name()
		}
	}
	assert.True(t, strings.HasSuffix(htmlFile, "_job_alert.html"))

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Equal(t, "<p>body</p>", string(body))

	raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	var env map[string]any
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "jane@example.com", env["to"])
	assert.Equal(t, "New Job Posted!", env["subject"])
}

func TestDevSender_RejectsInvalid(t *testing.T) {
	t.Parallel()

	err := email.NewDevSender(t.TempDir()).Send(context.Background(), email.Message{})
	assert.ErrorIs(t, err, email.ErrInvalidMessage)
}
