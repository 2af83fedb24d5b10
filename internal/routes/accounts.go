package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tellerbank/account-service/internal/account"
)

// RegisterAccountRoutes wires account endpoints. lookupLimiter guards the
// number/PIN search and may be nil.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, lookupLimiter fiber.Handler) {
	search := []fiber.Handler{h.Search}
	if lookupLimiter != nil {
		search = append([]fiber.Handler{lookupLimiter}, search...)
	}
	r.Get("/accounts", search...)
	r.Post("/accounts", h.Open)
	r.Get("/accounts/:accountId", h.Find)
	r.Get("/accounts/:accountId/balance", h.Balance)
	r.Put("/accounts/:accountId/close", h.Close)
	r.Put("/accounts/:accountId/deposit", h.Deposit)
	r.Put("/accounts/:accountId/withdrawal", h.Withdraw)
	r.Put("/accounts/:accountId/debit", h.Debit)
	r.Put("/accounts/:accountId/check", h.Check)
}
