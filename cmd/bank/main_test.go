package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tellerbank/account-service/internal/account"
	"github.com/tellerbank/account-service/internal/client"
	"github.com/tellerbank/account-service/internal/config"
	"github.com/tellerbank/account-service/internal/logging"
	"github.com/tellerbank/account-service/internal/routes"
	"github.com/tellerbank/account-service/internal/server"
	"github.com/tellerbank/account-service/internal/session"
)

func newCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	srv, err := server.New(config.Config{AppName: "test", AppEnv: "development"}, routes.Deps{
		AccountOptions: []account.Option{account.WithPINCost(bcrypt.MinCost)},
	}, logging.Discard())
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.App().Listener(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	var out bytes.Buffer
	return &cli{
		bank:    client.New("http://"+ln.Addr().String()+"/api/v1", 5*time.Second),
		session: session.NewFile(filepath.Join(t.TempDir(), "loggedin")),
		out:     &out,
	}, &out
}

func TestCLISession(t *testing.T) {
	c, out := newCLI(t)
	ctx := context.Background()

	require.NoError(t, c.run(ctx, []string{"open", "Jane", "Doe", "1234", "1234", "ID-1"}))
	number := regexp.MustCompile(`Account number: (\d{10})`).FindStringSubmatch(out.String())
	require.Len(t, number, 2)

	assert.ErrorIs(t, c.run(ctx, []string{"balance"}), session.ErrNoSession)

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"login", number[1], "1234"}))
	assert.Equal(t, "OK...\n", out.String())

	require.NoError(t, c.run(ctx, []string{"deposit", "50", "Gasoline", "refill"}))
	require.NoError(t, c.run(ctx, []string{"withdraw", "20.5", "Tickets"}))
	assert.Regexp(t, `Transaction ok [0-9a-f-]{36}`, out.String())

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"balance"}))
	assert.Equal(t, "Current balance is 29.5\n", out.String())

	err := c.run(ctx, []string{"withdraw", "100", "too much"})
	assert.EqualError(t, err, "Operation cancelled due to insufficient funds.")

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"close"}))
	assert.Equal(t, "Account Closed ok\n", out.String())

	out.Reset()
	require.NoError(t, c.run(ctx, []string{"logout"}))
	assert.Equal(t, "Logout ok...\n", out.String())
	assert.ErrorIs(t, c.run(ctx, []string{"close"}), session.ErrNoSession)
}

func TestCLIUsageErrors(t *testing.T) {
	c, out := newCLI(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.run(ctx, nil), errUsage)
	assert.Contains(t, out.String(), "Available Commands")
	assert.ErrorIs(t, c.run(ctx, []string{"open", "Jane"}), errUsage)
	assert.ErrorIs(t, c.run(ctx, []string{"login", "1234567890"}), errUsage)
	assert.EqualError(t, c.run(ctx, []string{"transfer"}), "unknown command: transfer")
	assert.NoError(t, c.run(ctx, []string{"help"}))
}
