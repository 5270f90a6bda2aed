package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ministry/internal/model"
	"ministry/internal/service"
)

func (h *Handler) ListDues(c *fiber.Ctx) error {
	memberID, err := queryUUID(c, "memberId")
	if err != nil {
		return err
	}
	list, err := h.services.Dues.List(c.UserContext(), service.DuesQuery{
		Status:   model.PaymentStatus(upper(c.Query("status"))),
		MemberID: memberID,
		Search:   c.Query("search"),
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, list)
}

func (h *Handler) CreateDues(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.CreateDuesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	records, err := h.services.Dues.Create(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, records)
}

func (h *Handler) PayDues(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	dueID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.PayDuesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	record, err := h.services.Dues.Pay(c.UserContext(), id, dueID, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, record)
}

func (h *Handler) WaiveDues(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	dueID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	record, err := h.services.Dues.Waive(c.UserContext(), id, dueID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, record)
}

func (h *Handler) RemindDues(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	dueID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	notification, err := h.services.Dues.Remind(c.UserContext(), id, dueID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, notification)
}

func (h *Handler) DuesReport(c *fiber.Ctx) error {
	year, err := queryInt(c, "year", h.clock.Today().Year())
	if err != nil {
		return err
	}
	report, err := h.services.Dues.Report(c.UserContext(), year)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, report)
}

func (h *Handler) DuesReportWorkbook(c *fiber.Ctx) error {
	year, err := queryInt(c, "year", h.clock.Today().Year())
	if err != nil {
		return err
	}
	workbook, err := h.services.Dues.ReportWorkbook(c.UserContext(), year)
	if err != nil {
		return err
	}
	c.Attachment(fmt.Sprintf("dues-report-%d.xlsx", year))
	c.Set(fiber.HeaderContentType, service.ReportContentType)
	return c.Send(workbook)
}

func (h *Handler) CheckoutDues(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	dueID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.services.Payments.Checkout(c.UserContext(), id, dueID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, result)
}

// StripeWebhook is public; the payload signature is its authentication.
func (h *Handler) StripeWebhook(c *fiber.Ctx) error {
	if err := h.services.Payments.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, nil)
}

func (h *Handler) MemberExpenses(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	expenses, err := h.services.Dues.Expenses(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, expenses)
}

func (h *Handler) SubmitExpense(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req service.ExpenseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	expense, err := h.services.Dues.SubmitExpense(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, expense)
}
