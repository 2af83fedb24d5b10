package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tellerbank/account-service/internal/account"
)

const idempotencyKeyHeader = "Idempotency-Key"

// APIError is a non-2xx response from the account service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// OpenRequest is the payload for opening an account.
type OpenRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PIN             string `json:"pin"`
	PINConfirmation string `json:"pin_confirmation"`
	HolderID        string `json:"holder_id"`
}

// TransactionRequest is the payload for deposits, withdrawals, debits and checks.
// Direction is only read by the debit and check endpoints.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Direction   string          `json:"type,omitempty"`
	Description string          `json:"description"`
}

// Client calls the account REST API.
type Client struct {
	baseURL string
	timeout time.Duration
}

// New builds a client for the API rooted at baseURL (for example http://localhost:8080/api/v1).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, timeout: timeout}
}

// Open creates an account.
func (c *Client) Open(ctx context.Context, req OpenRequest) (account.OpenResponse, error) {
	var out account.OpenResponse
	err := c.do(ctx, fiber.Post(c.baseURL+"/accounts").JSON(req), &out)
	return out, err
}

// Search resolves an account from its number and PIN.
func (c *Client) Search(ctx context.Context, accountNumber, pin string) (account.SummaryResponse, error) {
	q := url.Values{}
	q.Set("accountNumber", accountNumber)
	q.Set("pin", pin)
	var out account.SummaryResponse
	err := c.do(ctx, fiber.Get(c.baseURL+"/accounts?"+q.Encode()), &out)
	return out, err
}

// Find fetches account detail and recent transactions.
func (c *Client) Find(ctx context.Context, accountID int64) (account.DetailResponse, error) {
	var out account.DetailResponse
	err := c.do(ctx, fiber.Get(c.accountURL(accountID, "")), &out)
	return out, err
}

// Balance fetches the running balance.
func (c *Client) Balance(ctx context.Context, accountID int64) (account.BalanceResponse, error) {
	var out account.BalanceResponse
	err := c.do(ctx, fiber.Get(c.accountURL(accountID, "/balance")), &out)
	return out, err
}

// Close closes the account.
func (c *Client) Close(ctx context.Context, accountID int64) (account.CloseResponse, error) {
	var out account.CloseResponse
	err := c.do(ctx, fiber.Put(c.accountURL(accountID, "/close")), &out)
	return out, err
}

// Deposit adds funds.
func (c *Client) Deposit(ctx context.Context, accountID int64, req TransactionRequest) (string, error) {
	return c.transact(ctx, accountID, "/deposit", req)
}

// Withdraw takes funds.
func (c *Client) Withdraw(ctx context.Context, accountID int64, req TransactionRequest) (string, error) {
	return c.transact(ctx, accountID, "/withdrawal", req)
}

// Debit records a debit with the direction in req.
func (c *Client) Debit(ctx context.Context, accountID int64, req TransactionRequest) (string, error) {
	return c.transact(ctx, accountID, "/debit", req)
}

// Check records a check with the direction in req.
func (c *Client) Check(ctx context.Context, accountID int64, req TransactionRequest) (string, error) {
	return c.transact(ctx, accountID, "/check", req)
}

func (c *Client) transact(ctx context.Context, accountID int64, suffix string, req TransactionRequest) (string, error) {
	var out account.TransactionIDResponse
	if err := c.do(ctx, fiber.Put(c.accountURL(accountID, suffix)).JSON(req), &out); err != nil {
		return "", err
	}
	return out.TransactionID, nil
}

func (c *Client) accountURL(id int64, suffix string) string {
	return fmt.Sprintf("%s/accounts/%d%s", c.baseURL, id, suffix)
}

// do sends the request and decodes a 2xx body into out. Unsafe methods carry a
// fresh Idempotency-Key.
func (c *Client) do(ctx context.Context, agent *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	method := string(agent.Request().Header.Method())
	if method != fiber.MethodGet && method != fiber.MethodHead {
		agent.Set(idempotencyKeyHeader, uuid.NewString())
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("call account service: %w", errors.Join(errs...))
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: status}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
