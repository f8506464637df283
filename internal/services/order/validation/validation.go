package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"smart-menu/internal/catalog"
	"smart-menu/internal/models"
)

const (
	MaxCustomerNameLength = 100
	MinCustomerAge        = 1
	MaxCustomerAge        = 150
	MinTableNumber        = 1
	MaxTableNumber        = 999
	MaxItemQuantity       = 99
	MaxItemNameLength     = 200
	LegalDrinkingAge      = 18
)

// Tolerance is the largest accepted difference between submitted and catalog amounts
var Tolerance = decimal.New(1, -2)

// Kind classifies a validation failure
type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindInvalidItem   Kind = "invalid_item"
	KindInvalidPrice  Kind = "invalid_price"
	KindTotalMismatch Kind = "total_mismatch"
	KindUnderage      Kind = "underage"
)

// Issue is a single field-level problem
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Error is the terminal result of a failed validation
type Error struct {
	Kind   Kind
	Reason string
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return e.Reason
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(parts, "; "))
}

// IsIntegrity reports whether the failure implies data that did not come from the real catalog
func (e *Error) IsIntegrity() bool {
	switch e.Kind {
	case KindInvalidItem, KindInvalidPrice, KindTotalMismatch:
		return true
	}
	return false
}

// Validator checks order requests against a catalog
type Validator struct {
	catalog *catalog.Catalog
}

// New creates a validator for the given catalog
func New(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// ValidateOrderRequest validates req against the default menu
func ValidateOrderRequest(req *models.OrderRequest) (*models.OrderRequest, error) {
	return New(catalog.Default()).Validate(req)
}

// Validate returns a normalized copy of req: trimmed customer name, catalog names,
// prices and alcohol flags, and the recomputed total. On failure it returns *Error.
func (v *Validator) Validate(req *models.OrderRequest) (*models.OrderRequest, error) {
	if req == nil {
		return nil, &Error{Kind: KindInvalidInput, Reason: "invalid input", Issues: []Issue{{Field: "body", Message: "request is required"}}}
	}

	if issues := validateShape(req); len(issues) > 0 {
		return nil, &Error{Kind: KindInvalidInput, Reason: "invalid input", Issues: issues}
	}

	entries := make([]catalog.Item, len(req.Items))
	for i, item := range req.Items {
		entry, ok := v.catalog.Lookup(item.ID)
		if !ok {
			return nil, &Error{
				Kind:   KindInvalidItem,
				Reason: fmt.Sprintf("invalid item: %s", item.ID),
				Issues: []Issue{{Field: fmt.Sprintf("items[%d].id", i), Message: "unknown menu item"}},
			}
		}
		entries[i] = entry
	}

	for i, item := range req.Items {
		if !withinTolerance(item.Price, entries[i].Price) {
			return nil, &Error{
				Kind:   KindInvalidPrice,
				Reason: fmt.Sprintf("invalid price for %s", entries[i].Name),
				Issues: []Issue{{Field: fmt.Sprintf("items[%d].price", i), Message: "price does not match the menu"}},
			}
		}
	}

	calculated := decimal.Zero
	for i, item := range req.Items {
		calculated = calculated.Add(entries[i].Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !withinTolerance(req.Total, calculated) {
		return nil, &Error{
			Kind:   KindTotalMismatch,
			Reason: "total mismatch",
			Issues: []Issue{{Field: "total", Message: "order total does not match the items"}},
		}
	}

	if req.CustomerAge < LegalDrinkingAge {
		for i := range req.Items {
			if entries[i].IsAlcoholic {
				return nil, &Error{
					Kind:   KindUnderage,
					Reason: "underage for alcoholic item",
					Issues: []Issue{{Field: fmt.Sprintf("items[%d].id", i), Message: fmt.Sprintf("%s requires age %d+", entries[i].Name, LegalDrinkingAge)}},
				}
			}
		}
	}

	normalized := &models.OrderRequest{
		CustomerName: strings.TrimSpace(req.CustomerName),
		CustomerAge:  req.CustomerAge,
		TableNumber:  req.TableNumber,
		Items:        make([]models.OrderRequestItem, len(req.Items)),
		Total:        calculated,
	}
	for i, item := range req.Items {
		normalized.Items[i] = models.OrderRequestItem{
			ID:          entries[i].ID,
			Name:        entries[i].Name,
			Price:       entries[i].Price,
			Quantity:    item.Quantity,
			IsAlcoholic: entries[i].IsAlcoholic,
		}
	}
	return normalized, nil
}

func validateShape(req *models.OrderRequest) []Issue {
	var issues []Issue

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		issues = append(issues, Issue{Field: "customerName", Message: "customer name is required"})
	} else if utf8.RuneCountInString(name) > MaxCustomerNameLength {
		issues = append(issues, Issue{Field: "customerName", Message: fmt.Sprintf("customer name must not exceed %d characters", MaxCustomerNameLength)})
	} else if hasControl(name) {
		issues = append(issues, Issue{Field: "customerName", Message: "customer name must not contain control characters"})
	}

	if req.CustomerAge < MinCustomerAge || req.CustomerAge > MaxCustomerAge {
		issues = append(issues, Issue{Field: "customerAge", Message: fmt.Sprintf("customer age must be between %d and %d", MinCustomerAge, MaxCustomerAge)})
	}

	if req.TableNumber < MinTableNumber || req.TableNumber > MaxTableNumber {
		issues = append(issues, Issue{Field: "tableNumber", Message: fmt.Sprintf("table number must be between %d and %d", MinTableNumber, MaxTableNumber)})
	}

	if len(req.Items) == 0 {
		issues = append(issues, Issue{Field: "items", Message: "cart is empty"})
	}
	for i, item := range req.Items {
		issues = append(issues, validateItem(item, i)...)
	}

	if !req.Total.IsPositive() {
		issues = append(issues, Issue{Field: "total", Message: "total must be positive"})
	}

	return issues
}

func validateItem(item models.OrderRequestItem, index int) []Issue {
	prefix := fmt.Sprintf("items[%d]", index)
	var issues []Issue

	if item.ID == "" {
		issues = append(issues, Issue{Field: prefix + ".id", Message: "item id is required"})
	}
	if utf8.RuneCountInString(item.Name) > MaxItemNameLength {
		issues = append(issues, Issue{Field: prefix + ".name", Message: fmt.Sprintf("item name must not exceed %d characters", MaxItemNameLength)})
	} else if hasControl(item.Name) {
		issues = append(issues, Issue{Field: prefix + ".name", Message: "item name must not contain control characters"})
	}
	if !item.Price.IsPositive() {
		issues = append(issues, Issue{Field: prefix + ".price", Message: "item price must be positive"})
	}
	if item.Quantity < 1 || item.Quantity > MaxItemQuantity {
		issues = append(issues, Issue{Field: prefix + ".quantity", Message: fmt.Sprintf("item quantity must be between 1 and %d", MaxItemQuantity)})
	}

	return issues
}

// hasControl reports control characters, including the NUL byte PostgreSQL text columns reject
func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
