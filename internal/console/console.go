package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tellerbank/account-service/internal/account"
	"github.com/tellerbank/account-service/internal/client"
)

const rule = "==================================================================================="

// Bank is the subset of the REST client used by the console.
type Bank interface {
	Open(ctx context.Context, req client.OpenRequest) (account.OpenResponse, error)
	Search(ctx context.Context, accountNumber, pin string) (account.SummaryResponse, error)
	Find(ctx context.Context, accountID int64) (account.DetailResponse, error)
	Deposit(ctx context.Context, accountID int64, req client.TransactionRequest) (string, error)
	Withdraw(ctx context.Context, accountID int64, req client.TransactionRequest) (string, error)
}

type state int

const (
	stateMain state = iota
	stateHome
	stateReturn
	stateExit
)

// Console is the interactive menu-driven banking client.
type Console struct {
	bank Bank
	in   *bufio.Scanner
	out  io.Writer
	err  io.Writer
	now  func() time.Time

	current *account.SummaryResponse
}

// New builds a console reading choices from in and printing to out and errOut.
func New(bank Bank, in io.Reader, out, errOut io.Writer) *Console {
	return &Console{
		bank: bank,
		in:   bufio.NewScanner(in),
		out:  out,
		err:  errOut,
		now:  time.Now,
	}
}

// Run drives the menus until the user exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	st := stateMain
	for st != stateExit {
		if err := ctx.Err(); err != nil {
			return err
		}
		var ok bool
		switch st {
		case stateMain:
			st, ok = c.mainMenu(ctx)
		case stateHome:
			st, ok = c.homeMenu(ctx)
		case stateReturn:
			st, ok = c.returnMenu()
		}
		if !ok {
			return nil
		}
	}
	c.println("Goodbye!")
	return nil
}

func (c *Console) mainMenu(ctx context.Context) (state, bool) {
	c.println("")
	c.println("================================================")
	c.println("=========== Welcome to Teller Bank =============")
	c.println("================================================")
	c.println("1. Open a new account")
	c.println("2. Login")
	c.println("3. Exit")

	choice, ok := c.prompt("Select the desired option: ")
	if !ok {
		return stateExit, false
	}
	switch choice {
	case "1":
		c.openAccount(ctx)
		return stateMain, true
	case "2":
		if c.login(ctx) {
			return stateHome, true
		}
		return stateMain, true
	case "3":
		return stateExit, true
	default:
		c.errorf("Option is not correct. Please try again.")
		return stateMain, true
	}
}

func (c *Console) homeMenu(ctx context.Context) (state, bool) {
	c.println("")
	c.println(rule)
	c.printf(" Welcome %s\n", c.current.HolderFullName)
	c.println(rule)
	c.printf("Date: %s\n", c.now().Format(account.DateLayout))
	c.printf("Account Number: %s\n", c.current.AccountNumber)
	c.println("")
	c.println("What do you want to do?")
	c.println("1. Make a deposit")
	c.println("2. Make a withdrawal")
	c.println("3. Get Account Statement")
	c.println("4. Log out")
	c.println(rule)

	choice, ok := c.prompt("-> Select an option: ")
	if !ok {
		return stateExit, false
	}
	switch choice {
	case "1":
		c.transact(ctx, c.bank.Deposit)
		return stateReturn, true
	case "2":
		c.transact(ctx, c.bank.Withdraw)
		return stateReturn, true
	case "3":
		c.statement(ctx)
		return stateReturn, true
	case "4":
		c.current = nil
		return stateMain, true
	default:
		c.errorf("Option is not correct. Please try again.")
		return stateHome, true
	}
}

func (c *Console) returnMenu() (state, bool) {
	c.println("")
	c.println("1. Go Back")
	c.println("2. Exit")
	choice, ok := c.prompt("-> Select an option: ")
	if !ok {
		return stateExit, false
	}
	switch choice {
	case "1":
		return stateHome, true
	case "2":
		return stateExit, true
	default:
		c.errorf("Option is not correct. Please try again.")
		return stateReturn, true
	}
}

func (c *Console) openAccount(ctx context.Context) {
	var req client.OpenRequest
	fields := []struct {
		label string
		dest  *string
	}{
		{"First Name: ", &req.FirstName},
		{"Last Name: ", &req.LastName},
		{"PIN: ", &req.PIN},
		{"Confirm PIN: ", &req.PINConfirmation},
		{"ID (SSN, Voter Card ID): ", &req.HolderID},
	}
	for _, f := range fields {
		v, ok := c.prompt(f.label)
		if !ok {
			return
		}
		*f.dest = v
	}

	opened, err := c.bank.Open(ctx, req)
	if err != nil {
		c.errorf("Error: %v", err)
		return
	}
	c.println("Account opened successfully")
	c.printf("Account number: %s\n", opened.AccountNumber)
	c.printf("Pin number: %s\n", opened.PIN)
}

func (c *Console) login(ctx context.Context) bool {
	number, ok := c.prompt("Account Number: ")
	if !ok {
		return false
	}
	pin, ok := c.prompt("Pin: ")
	if !ok {
		return false
	}
	summary, err := c.bank.Search(ctx, number, pin)
	if err != nil {
		c.errorf("Error: %v", err)
		return false
	}
	c.current = &summary
	return true
}

type transactFunc func(ctx context.Context, accountID int64, req client.TransactionRequest) (string, error)

func (c *Console) transact(ctx context.Context, apply transactFunc) {
	rawAmount, ok := c.prompt("Amount: ")
	if !ok {
		return
	}
	description, ok := c.prompt("Description: ")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		c.errorf("Error: %q is not a valid amount", rawAmount)
		return
	}

	txID, err := apply(ctx, c.current.AccountID, client.TransactionRequest{Amount: amount, Description: description})
	if err != nil {
		c.errorf("Error: %v", err)
		return
	}
	c.printf("Transaction executed successfully with id: %s\n", txID)
}

func (c *Console) statement(ctx context.Context) {
	detail, err := c.bank.Find(ctx, c.current.AccountID)
	if err != nil {
		c.errorf("Error: %v", err)
		return
	}

	c.println("")
	c.println(rule)
	c.println("                                 ACCOUNT STATEMENT")
	c.println(rule)
	c.printf("Account Number: %s\n", detail.AccountNumber)
	c.printf("Holder Name: %s\n", detail.HolderFullName)
	c.printf("Holder Account Id: %s\n", detail.HolderID)
	c.printf("Status: %s\n", detail.Status)
	c.printf("Current Balance: %s\n", detail.Balance.StringFixed(2))
	c.println(rule)

	if len(detail.LastTransactions) == 0 {
		c.println("No transactions yet.")
		return
	}
	c.println("                                 LAST TRANSACTIONS")
	c.println(rule)
	const border = "+----------------------+---------------+------------+-----------------------------+"
	c.println(border)
	c.printf("| %-20s | %-13s | %-10s | %-27s |\n", "Date", "Type", "Amount", "Description")
	c.println(border)
	for _, tx := range detail.LastTransactions {
		c.printf("| %-20s | %-13s | %10s | %-27s |\n", tx.Date, tx.Type, tx.Amount.StringFixed(2), truncate(tx.Description, 27))
	}
	c.println(border)
}

// prompt prints label and reads one trimmed line; false means input is exhausted.
func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

func (c *Console) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }

func (c *Console) errorf(format string, args ...any) {
	fmt.Fprintf(c.err, "\n"+format+"\n", args...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
