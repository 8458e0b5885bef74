package models

import (
	"time"

	"renovaflow-backend/internal/lifecycle"
)

type Project struct {
	ID                    string           `json:"id"`
	Status                lifecycle.Status `json:"status"`
	Title                 string           `json:"title"`
	PropertyName          string           `json:"propertyName,omitempty"`
	EstimateDate          string           `json:"estimateDate"`
	OrderDate             string           `json:"orderDate,omitempty"`
	ConstructionStartDate string           `json:"constructionStartDate,omitempty"`
	CompletionDate        string           `json:"completionDate"`

	EstimateRemarks     string `json:"estimateRemarks,omitempty"`
	OrderRemarks        string `json:"orderRemarks,omitempty"`
	ConstructionRemarks string `json:"constructionRemarks,omitempty"`
	BillingRemarks      string `json:"billingRemarks,omitempty"`
	PaymentInRemarks    string `json:"paymentInRemarks,omitempty"`
	PaymentOutRemarks   string `json:"paymentOutRemarks,omitempty"`

	CustomerName       string `json:"customerName,omitempty"`
	CustomerPostalCode string `json:"customerPostalCode,omitempty"`
	CustomerAddress    string `json:"customerAddress,omitempty"`
	CustomerPhone      string `json:"customerPhone,omitempty"`
	CustomerEmail      string `json:"customerEmail,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ConstructionStaff []ConstructionStaff `json:"constructionStaff"`
	BillingItems      []BillingItem       `json:"billingItems"`
	OutboundPayments  []OutboundPayment   `json:"outboundPayments"`
	Files             []ProjectFile       `json:"files,omitempty"`
}

type ConstructionStaff struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
}

type BillingItem struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	IsBilled  bool   `json:"isBilled"`
	IsPaid    bool   `json:"isPaid"`
}

type OutboundPayment struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Payee     string `json:"payee"`
	Amount    int64  `json:"amount"`
	IsPaid    bool   `json:"isPaid"`
}

type ProjectFile struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}
