package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonlaunch/toonlaunch/internal/launcher"
	"github.com/toonlaunch/toonlaunch/internal/login"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

const (
	successReply  = `{"success": "true", "cookie": "c00k1e", "gameserver": "gs.example:7198"}`
	queuedReply   = `{"success": "delayed", "queueToken": "q-1", "eta": "5", "position": "3"}`
	partialReply  = `{"success": "partial", "responseToken": "r-1", "banner": "Enter your ToonGuard code"}`
	rejectedReply = `{"success": "false", "banner": "Incorrect username and/or password."}`
)

func TestLogin_ArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{"login"}},
		{"username only", []string{"login", "flippy"}},
		{"too many", []string{"login", "flippy", "hunter2", "extra"}},
		{"account with arguments", []string{"login", "--account", "main", "flippy", "hunter2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := newFakeGame(t)
			fl := &fakeLauncher{}

			_, err := execute(t, Deps{LauncherFactory: fl.factory()}, append(tt.args, game.apiArgs()...)...)
			require.Error(t, err)
			assert.Empty(t, game.loginForms(), "no request may be sent")
			assert.Zero(t, fl.calls)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	game := newFakeGame(t, successReply)
	fl := &fakeLauncher{}

	out, err := execute(t, Deps{LauncherFactory: fl.factory(), Platform: launcher.PlatformLinux},
		append([]string{"login", "flippy", "hunter2"}, game.apiArgs()...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Login successful, launching game.")
	forms := game.loginForms()
	require.Len(t, forms, 1)
	assert.Equal(t, "flippy", forms[0].Get("username"))
	assert.Equal(t, "hunter2", forms[0].Get("password"))

	require.Equal(t, 1, fl.calls)
	assert.Equal(t, []launcher.Platform{launcher.PlatformLinux}, fl.platforms)
	assert.ElementsMatch(t, []string{
		login.EnvPlayCookie + "=c00k1e",
		login.EnvGameServer + "=gs.example:7198",
	}, fl.env)
}

func TestLogin_QueueThenTwoFactor(t *testing.T) {
	game := newFakeGame(t, queuedReply, partialReply, successReply)
	fl := &fakeLauncher{}

	out, err := execute(t, Deps{LauncherFactory: fl.factory(), Stdin: strings.NewReader("654321\n")},
		append([]string{"login", "flippy", "hunter2"}, game.apiArgs()...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Enter your ToonGuard code")
	forms := game.loginForms()
	require.Len(t, forms, 3)
	assert.Equal(t, "q-1", forms[1].Get("queueToken"))
	assert.Len(t, forms[1], 1)
	assert.Equal(t, "654321", forms[2].Get("appToken"))
	assert.Equal(t, "r-1", forms[2].Get("authToken"))
	assert.Len(t, forms[2], 2)
	assert.Equal(t, 1, fl.calls)
}

func TestLogin_Rejected(t *testing.T) {
	game := newFakeGame(t, rejectedReply)
	fl := &fakeLauncher{}

	out, err := execute(t, Deps{LauncherFactory: fl.factory()},
		append([]string{"login", "flippy", "wrong"}, game.apiArgs()...)...)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, login.CodeRejected)

	assert.Contains(t, out, "Incorrect username and/or password.")
	assert.NotContains(t, out, "Error:", "the flow's message is the only report")
	assert.Zero(t, fl.calls)
}

func TestLogin_TransportFailure(t *testing.T) {
	game := newFakeGame(t) // no replies: the fake answers 500

	out, err := execute(t, Deps{LauncherFactory: (&fakeLauncher{}).factory()},
		append([]string{"login", "flippy", "hunter2"}, game.apiArgs()...)...)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, login.CodeTransport)
	assert.Contains(t, out, "Could not talk to the login server")
}

func TestLogin_UnsupportedPlatformExitsCleanly(t *testing.T) {
	game := newFakeGame(t, successReply)

	out, err := execute(t, Deps{Platform: launcher.PlatformOther},
		append([]string{"login", "flippy", "hunter2"}, game.apiArgs()...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Platform other isn't supported yet.")
}

func TestLogin_SavedAccount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  main:
    username: flippy
    password: hunter2
  alt:
    username: slappy
`), 0o600))

	t.Run("stored password", func(t *testing.T) {
		game := newFakeGame(t, successReply)
		fl := &fakeLauncher{}
		_, err := execute(t, Deps{LauncherFactory: fl.factory()},
			append([]string{"--config", path, "login", "--account", "main"}, game.apiArgs()...)...)
		require.NoError(t, err)
		require.Len(t, game.loginForms(), 1)
		assert.Equal(t, "hunter2", game.loginForms()[0].Get("password"))
	})

	t.Run("prompted password", func(t *testing.T) {
		game := newFakeGame(t, successReply)
		var label string
		deps := Deps{
			LauncherFactory: (&fakeLauncher{}).factory(),
			SecretReader: func(l string) (string, error) {
				label = l
				return "s3cret", nil
			},
		}
		_, err := execute(t, deps,
			append([]string{"--config", path, "login", "-a", "alt"}, game.apiArgs()...)...)
		require.NoError(t, err)
		assert.Equal(t, "Password for slappy", label)
		assert.Equal(t, "slappy", game.loginForms()[0].Get("username"))
		assert.Equal(t, "s3cret", game.loginForms()[0].Get("password"))
	})

	t.Run("unknown account", func(t *testing.T) {
		game := newFakeGame(t)
		_, err := execute(t, Deps{LauncherFactory: (&fakeLauncher{}).factory()},
			append([]string{"--config", path, "login", "--account", "nope"}, game.apiArgs()...)...)
		require.Error(t, err)
		assert.Empty(t, game.loginForms())
	})
}
