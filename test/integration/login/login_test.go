//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package login_test

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/toonlaunch/toonlaunch/internal/launcher"
	"github.com/toonlaunch/toonlaunch/internal/login"
	"github.com/toonlaunch/toonlaunch/internal/prompt"
	"github.com/toonlaunch/toonlaunch/internal/ttrapi"
	"github.com/toonlaunch/toonlaunch/pkg/errutil"
)

var _ = Describe("Logging in and launching the game", func() {
	var (
		ctx    context.Context
		server *gameServer
		out    *bytes.Buffer
		in     *strings.Reader
		dir    string
		record string
	)

	BeforeEach(func() {
		ctx = context.Background()
		out = &bytes.Buffer{}
		in = strings.NewReader("")
		dir, record = installGame()
	})

	AfterEach(func() {
		if server != nil {
			server.close()
			server = nil
		}
	})

	newFlow := func() *login.Flow {
		client := ttrapi.NewClient(ttrapi.WithLoginURL(server.loginURL()))
		game := launcher.New(launcher.Config{InstallDir: dir}, nil)
		flow, err := login.NewFlow(client, game, prompt.NewLine(in, out),
			login.WithOutput(out),
			login.WithQueueDelay(time.Millisecond),
			login.WithPlatform(launcher.PlatformLinux),
		)
		Expect(err).NotTo(HaveOccurred())
		return flow
	}

	recorded := func() []string {
		data, err := os.ReadFile(record)
		Expect(err).NotTo(HaveOccurred())
		return strings.Split(strings.TrimSpace(string(data)), "\n")
	}

	When("the server accepts the credentials straight away", func() {
		It("starts the game in its install dir with the session variables", func() {
			server = newGameServer(map[string]any{
				"success": "true", "cookie": "c00kie", "gameserver": "gs1.example:7198",
			})

			result, err := newFlow().Run(ctx, login.Credentials{Username: "flippy", Password: "hunter2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.State).To(Equal(login.StateSuccess))
			Expect(result.Requests).To(Equal(1))

			Expect(server.received()).To(Equal([]url.Values{
				{"username": {"flippy"}, "password": {"hunter2"}},
			}))

			resolved, err := filepath.EvalSymlinks(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(recorded()).To(Equal([]string{
				resolved,
				"TTR_PLAYCOOKIE=c00kie",
				"TTR_GAMESERVER=gs1.example:7198",
			}))

			info, err := os.Stat(filepath.Join(dir, "TTREngine"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm() & 0o100).NotTo(BeZero())
			Expect(out.String()).To(ContainSubstring("Login successful, launching game."))
		})

		It("leaves the launcher's own environment alone", func() {
			server = newGameServer(map[string]any{
				"success": "true", "cookie": "c", "gameserver": "g",
			})

			_, err := newFlow().Run(ctx, login.Credentials{Username: "flippy", Password: "hunter2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Getenv(login.EnvPlayCookie)).To(BeEmpty())
			Expect(os.Getenv(login.EnvGameServer)).To(BeEmpty())
		})
	})

	When("the server queues and then challenges the login", func() {
		It("re-checks the queue and answers the challenge before launching", func() {
			in = strings.NewReader("123456\n")
			server = newGameServer(
				map[string]any{"success": "delayed", "queueToken": "q1", "position": "4", "eta": "2"},
				map[string]any{"success": "delayed", "queueToken": "q2", "position": "1", "eta": "1"},
				map[string]any{"success": "partial", "responseToken": "r1", "banner": "Enter your token"},
				map[string]any{"success": "true", "cookie": "c00kie", "gameserver": "gs1"},
			)

			result, err := newFlow().Run(ctx, login.Credentials{Username: "flippy", Password: "hunter2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Requests).To(Equal(4))
			Expect(result.Path).To(Equal([]login.State{
				login.StateStart,
				login.StateAwaitingResponse, login.StateQueued,
				login.StateAwaitingResponse, login.StateQueued,
				login.StateAwaitingResponse, login.StateAwaitingTwoFactor,
				login.StateAwaitingResponse, login.StateSuccess,
			}))

			Expect(server.received()).To(Equal([]url.Values{
				{"username": {"flippy"}, "password": {"hunter2"}},
				{"queueToken": {"q1"}},
				{"queueToken": {"q2"}},
				{"appToken": {"123456"}, "authToken": {"r1"}},
			}))
			Expect(out.String()).To(ContainSubstring("Enter your token"))
			Expect(recorded()).To(ContainElement("TTR_PLAYCOOKIE=c00kie"))
		})
	})

	When("the server rejects the login", func() {
		It("shows the banner and never starts the game", func() {
			server = newGameServer(map[string]any{"success": "false", "banner": "Incorrect username or password."})

			result, err := newFlow().Run(ctx, login.Credentials{Username: "flippy", Password: "wrong"})
			errutil.AssertErrorCode(GinkgoT(), err, login.CodeRejected)
			Expect(result.State).To(Equal(login.StateFailed))
			Expect(result.Environment).To(BeNil())
			Expect(out.String()).To(ContainSubstring("Incorrect username or password."))
			Expect(record).NotTo(BeAnExistingFile())
		})
	})

	When("the login server is failing", func() {
		It("reports a transport failure rather than a rejection", func() {
			server = newGameServer()

			result, err := newFlow().Run(ctx, login.Credentials{Username: "flippy", Password: "hunter2"})
			errutil.AssertErrorCode(GinkgoT(), err, login.CodeTransport)
			Expect(result.State).To(Equal(login.StateFailed))
			Expect(out.String()).To(ContainSubstring("Could not talk to the login server"))
			Expect(record).NotTo(BeAnExistingFile())
		})
	})

	When("a queue reply carries no token", func() {
		It("fails as a protocol violation without a second request", func() {
			server = newGameServer(map[string]any{"success": "delayed", "position": "3"})

			_, err := newFlow().Run(ctx, login.Credentials{Username: "flippy", Password: "hunter2"})
			errutil.AssertErrorCode(GinkgoT(), err, login.CodeProtocol)
			Expect(server.received()).To(HaveLen(1))
		})
	})
})
