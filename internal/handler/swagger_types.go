package handler

import (
	"github.com/google/uuid"

	"khata/internal/domain"
	"khata/internal/rbac"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	CompanySlug string `json:"company_slug" binding:"required" example:"sharma-traders"`
	Email       string `json:"email" binding:"required" example:"owner@sharmatraders.in"`
	Password    string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RegisterRequest represents the company registration request body.
type RegisterRequest struct {
	CompanyName string `json:"company_name" binding:"required" example:"Sharma Traders"`
	CompanySlug string `json:"company_slug" binding:"required" example:"sharma-traders"`
	GSTNumber   string `json:"gst_number" example:"27AAPFU0939F1ZV"`
	StateCode   string `json:"state_code" example:"27"`
	FullName    string `json:"full_name" binding:"required" example:"Ravi Sharma"`
	Email       string `json:"email" binding:"required" example:"owner@sharmatraders.in"`
	Password    string `json:"password" binding:"required" example:"securepassword123"`
}

// InviteMemberRequest represents the team invitation request body.
type InviteMemberRequest struct {
	Email    string          `json:"email" binding:"required" example:"priya@sharmatraders.in"`
	FullName string          `json:"full_name" binding:"required" example:"Priya Patel"`
	Role     domain.UserRole `json:"role" binding:"required" example:"accountant"`
}

// CreatePartyRequest represents the create party request body.
type CreatePartyRequest struct {
	PartyType      domain.PartyType `json:"party_type" binding:"required" example:"customer"`
	Name           string           `json:"name" binding:"required" example:"Gupta Kirana Store"`
	Phone          string           `json:"phone" example:"9876543210"`
	GSTNumber      string           `json:"gst_number" example:"27AABCU9603R1ZM"`
	StateCode      string           `json:"state_code" example:"27"`
	PartyGroup     string           `json:"party_group" example:"Retail"`
	OpeningBalance string           `json:"opening_balance" example:"1500.00"`
}

// InvoiceLineRequest represents one line of an invoice request.
type InvoiceLineRequest struct {
	ProductID       *uuid.UUID `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name            string     `json:"name" example:"Basmati Rice 5kg"`
	Quantity        string     `json:"quantity" example:"2"`
	Rate            string     `json:"rate" example:"450.00"`
	DiscountPercent string     `json:"discount_percent" example:"5"`
	GSTRate         string     `json:"gst_rate" example:"5"`
}

// CreateInvoiceRequest represents the create invoice request body.
type CreateInvoiceRequest struct {
	InvoiceType domain.InvoiceType   `json:"invoice_type" binding:"required" example:"sale"`
	InvoiceDate string               `json:"invoice_date" example:"2024-04-01"`
	PartyID     uuid.UUID            `json:"party_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	Items       []InvoiceLineRequest `json:"items" binding:"required"`
	Notes       string               `json:"notes" example:"Delivered to shop"`
}

// LinkRequest represents a manual invoice application.
type LinkRequest struct {
	InvoiceID uuid.UUID `json:"invoice_id" example:"770e8400-e29b-41d4-a716-446655440002"`
	Amount    string    `json:"amount" example:"500.00"`
}

// AllocationRequest represents how an amount is applied to open invoices.
type AllocationRequest struct {
	AutoLink bool          `json:"auto_link" example:"true"`
	Links    []LinkRequest `json:"links"`
	Discount string        `json:"discount" example:"0"`
}

// PaymentMethodRequest represents one method of a split payment.
type PaymentMethodRequest struct {
	Method      domain.PaymentMethod `json:"method" example:"upi"`
	Amount      string               `json:"amount" example:"1000.00"`
	ReferenceNo string               `json:"reference_no" example:"UPI123456"`
	AccountID   *uuid.UUID           `json:"account_id" example:"880e8400-e29b-41d4-a716-446655440003"`
}

// CreatePaymentRequest represents the create payment request body.
type CreatePaymentRequest struct {
	PaymentType domain.PaymentType     `json:"payment_type" binding:"required" example:"payment_in"`
	PartyID     uuid.UUID              `json:"party_id" binding:"required" example:"660e8400-e29b-41d4-a716-446655440001"`
	PaymentDate string                 `json:"payment_date" example:"2024-04-05"`
	TotalAmount string                 `json:"total_amount" example:"1000.00"`
	Methods     []PaymentMethodRequest `json:"payment_methods"`
	Allocation  AllocationRequest      `json:"allocation"`
}

// TransferRequest represents the account transfer request body.
type TransferRequest struct {
	FromAccountID uuid.UUID `json:"from_account_id" binding:"required" example:"880e8400-e29b-41d4-a716-446655440003"`
	ToAccountID   uuid.UUID `json:"to_account_id" binding:"required" example:"990e8400-e29b-41d4-a716-446655440004"`
	Amount        string    `json:"amount" example:"2500.00"`
	TransferDate  string    `json:"transfer_date" example:"2024-04-10"`
	Description   string    `json:"description" example:"Cash deposited to bank"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:""`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// FileWithDownloadURL represents a file with its download URL.
type FileWithDownloadURL struct {
	File        domain.FileMeta `json:"file"`
	FileURL     string          `json:"file_url" example:"https://khata-uploads.s3.ap-south-1.amazonaws.com/companies/.../files/....png"`
	DownloadURL string          `json:"download_url" example:"https://khata-uploads.s3.amazonaws.com/...?X-Amz-Signature=..."`
}

// RolesResponse represents the role permission table.
type RolesResponse struct {
	Version int                    `json:"version" example:"3"`
	Roles   []rbac.RolePermissions `json:"roles"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
