package domain

import (
	"fmt"
	"strings"
)

// ExpenseCategory classifies an expense
type ExpenseCategory string

const (
	ExpenseUtilities ExpenseCategory = "utilities"
	ExpenseRent      ExpenseCategory = "rent"
	ExpenseSalary    ExpenseCategory = "salary"
	ExpenseRestock   ExpenseCategory = "restock"
	ExpenseOther     ExpenseCategory = "other"
)

// ParseExpenseCategory validates an expense category; empty means other
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	switch c := ExpenseCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ExpenseOther, nil
	case ExpenseUtilities, ExpenseRent, ExpenseSalary, ExpenseRestock, ExpenseOther:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidExpense, s)
}

// Expense is a dated outgoing payment. Date is a YYYY-MM-DD calendar day.
type Expense struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Amount   float64         `json:"amount"`
	Date     string          `json:"date"`
	Category ExpenseCategory `json:"category"`
}

// Validate checks the expense fields
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExpense)
	}
	if !validAmount(e.Amount) {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidExpense)
	}
	if _, err := ParseDay(e.Date); err != nil {
		return err
	}
	if _, err := ParseExpenseCategory(string(e.Category)); err != nil {
		return err
	}
	return nil
}

// RestockExpenseName is the synthesized name of a restock expense
func RestockExpenseName(productName string, quantity int) string {
	if productName == "" {
		productName = "Unknown"
	}
	return fmt.Sprintf("restock: %s x%d", productName, quantity)
}
