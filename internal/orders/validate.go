package orders

import "strings"

// ValidatePlacement checks shape only; stock is re-checked inside the
// placement transaction.
func ValidatePlacement(items []LineItem, buyer Buyer) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range items {
		if it.ProductID <= 0 {
			return invalidInput("invalid product id %d", it.ProductID)
		}
		if it.Quantity <= 0 {
			return invalidInput("quantity for product %d must be a positive integer", it.ProductID)
		}
	}
	if strings.TrimSpace(buyer.FullName) == "" {
		return invalidInput("buyer name is required")
	}
	if strings.TrimSpace(buyer.Address) == "" {
		return invalidInput("shipping address is required")
	}
	if strings.TrimSpace(buyer.Phone) == "" {
		return invalidInput("buyer phone is required")
	}
	if strings.TrimSpace(buyer.PaymentMethod) == "" {
		return invalidInput("payment method is required")
	}
	return nil
}
