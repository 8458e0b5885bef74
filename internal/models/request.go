package models

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProjectPatchRequest carries the partial-field patch: status and/or any of
// the per-phase remark fields. Absent fields are left untouched.
type ProjectPatchRequest struct {
	Status              *string `json:"status,omitempty"`
	EstimateRemarks     *string `json:"estimateRemarks,omitempty"`
	OrderRemarks        *string `json:"orderRemarks,omitempty"`
	ConstructionRemarks *string `json:"constructionRemarks,omitempty"`
	BillingRemarks      *string `json:"billingRemarks,omitempty"`
	PaymentInRemarks    *string `json:"paymentInRemarks,omitempty"`
	PaymentOutRemarks   *string `json:"paymentOutRemarks,omitempty"`
}

type BillingItemPatchRequest struct {
	IsBilled *bool `json:"isBilled,omitempty"`
	IsPaid   *bool `json:"isPaid,omitempty"`
}

type OutboundPaymentPatchRequest struct {
	IsPaid *bool `json:"isPaid,omitempty"`
}

type UserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
	Remarks  string `json:"remarks"`
	IsActive *bool  `json:"isActive"`
}
