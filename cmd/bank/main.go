package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/tellerbank/account-service/internal/client"
	"github.com/tellerbank/account-service/internal/config"
	"github.com/tellerbank/account-service/internal/session"
)

var errUsage = errors.New("missing arguments in command, please execute help command")

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli{
		bank:    client.New(cfg.APIURL, cfg.HTTPTimeout),
		session: session.NewFile(cfg.SessionFile),
		out:     os.Stdout,
	}
	if err := app.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type cli struct {
	bank    *client.Client
	session *session.File
	out     io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printUsage()
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "open":
		return c.open(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "close":
		return c.withSession(func(s session.Session) error { return c.close(ctx, s) })
	case "deposit":
		return c.withSession(func(s session.Session) error { return c.transact(ctx, s, rest, c.bank.Deposit) })
	case "withdraw":
		return c.withSession(func(s session.Session) error { return c.transact(ctx, s, rest, c.bank.Withdraw) })
	case "balance":
		return c.withSession(func(s session.Session) error { return c.balance(ctx, s) })
	case "logout":
		return c.logout()
	case "help", "-h", "--help":
		c.printUsage()
		return nil
	default:
		c.printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.out, "Available Commands")
	fmt.Fprintln(c.out, "    open             Open an account")
	fmt.Fprintln(c.out, "          open [First Name] [Last Name] [Pin] [Confirm Pin] [ID SSN]")
	fmt.Fprintln(c.out, "    login            Login to an existing account")
	fmt.Fprintln(c.out, "          login [Account number] [PIN]")
	fmt.Fprintln(c.out, "    close            Close the logged in account")
	fmt.Fprintln(c.out, "    deposit          Make a deposit")
	fmt.Fprintln(c.out, "          deposit [amount] [description]")
	fmt.Fprintln(c.out, "    withdraw         Make a withdrawal")
	fmt.Fprintln(c.out, "          withdraw [amount] [description]")
	fmt.Fprintln(c.out, "    balance          Show the balance of the logged in account")
	fmt.Fprintln(c.out, "    logout           Log out of the current account")
	fmt.Fprintln(c.out, "    help             Show this help message")
}

func (c *cli) withSession(fn func(session.Session) error) error {
	s, err := c.session.Load()
	if err != nil {
		return err
	}
	return fn(s)
}

func (c *cli) open(ctx context.Context, args []string) error {
	if len(args) < 5 {
		return errUsage
	}
	opened, err := c.bank.Open(ctx, client.OpenRequest{
		FirstName:       args[0],
		LastName:        args[1],
		PIN:             args[2],
		PINConfirmation: args[3],
		HolderID:        args[4],
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Account opened successfully")
	fmt.Fprintf(c.out, "Account number: %s\n", opened.AccountNumber)
	fmt.Fprintf(c.out, "Pin number: %s\n", opened.PIN)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	summary, err := c.bank.Search(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := c.session.Save(session.Session{AccountID: summary.AccountID, AccountNumber: summary.AccountNumber}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "OK...")
	return nil
}

func (c *cli) close(ctx context.Context, s session.Session) error {
	if _, err := c.bank.Close(ctx, s.AccountID); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Account Closed ok")
	return nil
}

type transactFunc func(ctx context.Context, accountID int64, req client.TransactionRequest) (string, error)

func (c *cli) transact(ctx context.Context, s session.Session, args []string, apply transactFunc) error {
	if len(args) < 2 {
		return errUsage
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}
	txID, err := apply(ctx, s.AccountID, client.TransactionRequest{
		Amount:      amount,
		Description: strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Transaction ok %s\n", txID)
	return nil
}

func (c *cli) balance(ctx context.Context, s session.Session) error {
	bal, err := c.bank.Balance(ctx, s.AccountID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Current balance is %s\n", bal.Balance.String())
	return nil
}

func (c *cli) logout() error {
	if err := c.session.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logout ok...")
	return nil
}
