package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsCmd_Use(t *testing.T) {
	assert.Equal(t, "sessions", sessionsCmd.Use)
}

func TestSessionsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range sessionsCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Contains(t, names, "list")
	assert.Contains(t, names, "new")
	assert.Contains(t, names, "show")
	assert.Contains(t, names, "send")
}

func TestSessionsCmd_ErrorsWithoutService(t *testing.T) {
	oldSession := sessionService
	sessionService = nil
	defer func() {
		sessionService = oldSession
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sessions", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSessionsList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sessions", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No sessions yet")
}

func TestSessionsNew_PrintsCreatedSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sessions", "new", "Order questions"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created session")
	assert.Contains(t, buf.String(), "Order questions")
}

func TestSessionsShow_PrintsMessagesAndCitations(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := sessionService.(*mockSessionService)
	session, err := mock.CreateSession(nil, "help")
	require.NoError(t, err)
	_, err = mock.SendMessage(nil, session.ID, "hello")
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sessions", "show", session.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err = rootCmd.Execute()

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "[user] hello")
	assert.Contains(t, output, "[assistant] session answer")
	assert.Contains(t, output, `cite "session" -> docs 0`)
}

func TestSessionsShow_UnknownSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sessions", "show", "nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSessionsSend_PrintsAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := sessionService.(*mockSessionService)
	session, err := mock.CreateSession(nil, "help")
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sessions", "send", session.ID, "where is my order?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err = rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "session answer")
	assert.Contains(t, buf.String(), "Citations:")
}

func TestSessionsSend_RequiresTwoArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sessions", "send", "only-id"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}
