package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// UserRole defines a team member's role within a company.
// The permissions attached to each role live in internal/rbac.
type UserRole string

const (
	RoleOwner      UserRole = "owner"
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
	RoleSales      UserRole = "sales"
	RoleViewer     UserRole = "viewer"
)

// ValidUserRoles is the set of assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleOwner:      true,
	RoleAdmin:      true,
	RoleAccountant: true,
	RoleSales:      true,
	RoleViewer:     true,
}

// UserStatus tracks a team member through invitation and deactivation.
type UserStatus string

const (
	UserStatusInvited  UserStatus = "invited"
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// PartyType distinguishes customers from vendors.
type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeVendor   PartyType = "vendor"
)

// InvoiceType covers sales and purchase invoices and their returns.
type InvoiceType string

const (
	InvoiceTypeSale           InvoiceType = "sale"
	InvoiceTypePurchase       InvoiceType = "purchase"
	InvoiceTypeSaleReturn     InvoiceType = "sale_return"
	InvoiceTypePurchaseReturn InvoiceType = "purchase_return"
)

// ValidInvoiceTypes is the set of accepted invoice types.
var ValidInvoiceTypes = map[InvoiceType]bool{
	InvoiceTypeSale:           true,
	InvoiceTypePurchase:       true,
	InvoiceTypeSaleReturn:     true,
	InvoiceTypePurchaseReturn: true,
}

// IsReturn reports whether the invoice is a credit or debit note.
func (t InvoiceType) IsReturn() bool {
	return t == InvoiceTypeSaleReturn || t == InvoiceTypePurchaseReturn
}

// PartyType returns the kind of party the invoice is raised against.
func (t InvoiceType) PartyType() PartyType {
	if t == InvoiceTypeSale || t == InvoiceTypeSaleReturn {
		return PartyTypeCustomer
	}
	return PartyTypeVendor
}

// ReturnOf returns the invoice type a return settles against.
func (t InvoiceType) ReturnOf() InvoiceType {
	switch t {
	case InvoiceTypeSaleReturn:
		return InvoiceTypeSale
	case InvoiceTypePurchaseReturn:
		return InvoiceTypePurchase
	default:
		return t
	}
}

// StockDirection is +1 when the invoice brings goods in, -1 when goods leave.
func (t InvoiceType) StockDirection() int {
	switch t {
	case InvoiceTypePurchase, InvoiceTypeSaleReturn:
		return 1
	default:
		return -1
	}
}

// PaymentStatus is derived from an invoice's paid and balance amounts.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentType is the direction of a payment.
type PaymentType string

const (
	PaymentTypeIn  PaymentType = "payment_in"
	PaymentTypeOut PaymentType = "payment_out"
)

// ValidPaymentTypes is the set of accepted payment types.
var ValidPaymentTypes = map[PaymentType]bool{
	PaymentTypeIn:  true,
	PaymentTypeOut: true,
}

// InvoiceType returns the invoice type a payment settles.
func (t PaymentType) InvoiceType() InvoiceType {
	if t == PaymentTypeIn {
		return InvoiceTypeSale
	}
	return InvoiceTypePurchase
}

// PartyType returns the kind of party that receives or makes the payment.
func (t PaymentType) PartyType() PartyType {
	if t == PaymentTypeIn {
		return PartyTypeCustomer
	}
	return PartyTypeVendor
}

// Sign is +1 for money received and -1 for money paid out.
func (t PaymentType) Sign() int64 {
	if t == PaymentTypeIn {
		return 1
	}
	return -1
}

// PaymentMethod is how money moved.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodBank   PaymentMethod = "bank_transfer"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodCard   PaymentMethod = "card"
)

// ValidPaymentMethods is the set of accepted payment methods.
var ValidPaymentMethods = map[PaymentMethod]bool{
	PaymentMethodCash:   true,
	PaymentMethodBank:   true,
	PaymentMethodUPI:    true,
	PaymentMethodCheque: true,
	PaymentMethodCard:   true,
}

// AccountType distinguishes bank accounts from cash-in-hand.
type AccountType string

const (
	AccountTypeBank AccountType = "bank"
	AccountTypeCash AccountType = "cash"
)

// TransactionType labels a ledger line.
type TransactionType string

const (
	TxnOpeningBalance TransactionType = "opening_balance"
	TxnDeposit        TransactionType = "deposit"
	TxnWithdrawal     TransactionType = "withdrawal"
	TxnAdjustment     TransactionType = "adjustment"
	TxnPaymentIn      TransactionType = "payment_in"
	TxnPaymentOut     TransactionType = "payment_out"
	TxnReturnRefund   TransactionType = "return_refund"
	TxnTransferIn     TransactionType = "transfer_in"
	TxnTransferOut    TransactionType = "transfer_out"
)

// ManualTransactionTypes are the types a user may post directly.
var ManualTransactionTypes = map[TransactionType]bool{
	TxnDeposit:    true,
	TxnWithdrawal: true,
	TxnAdjustment: true,
}
