package account

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes account HTTP endpoints. Domain errors are returned as-is and
// rendered by the application's error handler.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type openRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PIN             string `json:"pin"`
	PINConfirmation string `json:"pin_confirmation"`
	HolderID        string `json:"holder_id"`
}

type transactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        Direction       `json:"type"`
	Description string          `json:"description"`
}

// OpenResponse is the body returned when an account is opened.
type OpenResponse struct {
	AccountID     int64  `json:"account_id"`
	AccountNumber string `json:"account_number"`
	PIN           string `json:"pin"`
}

// SummaryResponse is the body returned by an account search.
type SummaryResponse struct {
	AccountID      int64  `json:"account_id"`
	AccountNumber  string `json:"account_number"`
	HolderFullName string `json:"holder_full_name"`
}

// TransactionResponse is one entry of DetailResponse.LastTransactions.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// DetailResponse is the body returned for a single account.
type DetailResponse struct {
	AccountID        int64                 `json:"account_id"`
	AccountNumber    string                `json:"account_number"`
	HolderFullName   string                `json:"holder_full_name"`
	HolderID         string                `json:"holder_id"`
	Status           string                `json:"status"`
	Balance          decimal.Decimal       `json:"balance"`
	LastTransactions []TransactionResponse `json:"last_transactions"`
}

// BalanceResponse is the body returned by a balance inquiry.
type BalanceResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

// CloseResponse is the body returned when an account is closed.
type CloseResponse struct {
	AccountNumber string `json:"account_number"`
}

// TransactionIDResponse is the body returned after a transaction is applied.
type TransactionIDResponse struct {
	TransactionID string `json:"transaction_id"`
}

// Open creates a new account.
func (h *Handler) Open(c *fiber.Ctx) error {
	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	opened, err := h.service.Open(c.UserContext(), OpenInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PIN:             req.PIN,
		PINConfirmation: req.PINConfirmation,
		HolderID:        req.HolderID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(OpenResponse{
		AccountID:     opened.AccountID,
		AccountNumber: opened.AccountNumber,
		PIN:           opened.PIN,
	})
}

// Search looks an account up by number and PIN.
func (h *Handler) Search(c *fiber.Ctx) error {
	summary, err := h.service.Search(c.UserContext(), c.Query("accountNumber"), c.Query("pin"))
	if err != nil {
		return err
	}
	return c.JSON(SummaryResponse{
		AccountID:      summary.ID,
		AccountNumber:  summary.Number,
		HolderFullName: summary.HolderFullName,
	})
}

// Find returns account detail.
func (h *Handler) Find(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Find(c.UserContext(), id)
	if err != nil {
		return err
	}

	txs := make([]TransactionResponse, 0, len(detail.LastTransactions))
	for _, tx := range detail.LastTransactions {
		txs = append(txs, TransactionResponse{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Type:        string(tx.Type),
			Description: tx.Description,
			Date:        tx.Date,
		})
	}
	return c.JSON(DetailResponse{
		AccountID:        detail.ID,
		AccountNumber:    detail.Number,
		HolderFullName:   detail.HolderFullName,
		HolderID:         detail.HolderID,
		Status:           string(detail.Status),
		Balance:          detail.Balance,
		LastTransactions: txs,
	})
}

// Balance returns the running balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	balance, err := h.service.Balance(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(BalanceResponse{AccountNumber: balance.AccountNumber, Balance: balance.Amount})
}

// Close closes the account.
func (h *Handler) Close(c *fiber.Ctx) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	number, err := h.service.Close(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(CloseResponse{AccountNumber: number})
}

// Deposit applies a deposit.
func (h *Handler) Deposit(c *fiber.Ctx) error { return h.transact(c, h.service.Deposit) }

// Withdraw applies a withdrawal.
func (h *Handler) Withdraw(c *fiber.Ctx) error { return h.transact(c, h.service.Withdraw) }

// Debit applies a debit in the direction given by the body's type.
func (h *Handler) Debit(c *fiber.Ctx) error { return h.transact(c, h.service.Debit) }

// Check applies a check in the direction given by the body's type.
func (h *Handler) Check(c *fiber.Ctx) error { return h.transact(c, h.service.Check) }

type transactFunc func(ctx context.Context, accountID int64, input TransactionInput) (string, error)

func (h *Handler) transact(c *fiber.Ctx, apply transactFunc) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	txID, err := apply(c.UserContext(), id, TransactionInput{
		Amount:      req.Amount,
		Direction:   req.Type,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(TransactionIDResponse{TransactionID: txID})
}

func accountID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("accountId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	return id, nil
}
