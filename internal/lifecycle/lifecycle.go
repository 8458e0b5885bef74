// Package lifecycle encodes the project workflow: an ordered status
// progression plus the one automatic transition that fires when every
// billing item of a project has been billed.
package lifecycle

type Status string

const (
	StatusEstimate     Status = "estimate"
	StatusOrder        Status = "order"
	StatusConstruction Status = "construction"
	StatusBilling      Status = "billing"
	StatusPaymentIn    Status = "payment_in"
	StatusPaymentOut   Status = "payment_out"
	StatusCancelled    Status = "cancelled"
)

// Ordered is the canonical forward progression. Cancelled sits outside it
// and is reachable from any status.
var Ordered = []Status{
	StatusEstimate,
	StatusOrder,
	StatusConstruction,
	StatusBilling,
	StatusPaymentIn,
	StatusPaymentOut,
}

func (s Status) Valid() bool {
	switch s {
	case StatusEstimate, StatusOrder, StatusConstruction, StatusBilling,
		StatusPaymentIn, StatusPaymentOut, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
