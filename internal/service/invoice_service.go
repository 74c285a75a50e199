package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"khata/internal/billing"
	"khata/internal/domain"
	"khata/internal/port"
	"khata/internal/sanitize"
)

const (
	idemInvoice = "invoice"
	idemReturn  = "return"
)

// InvoiceLineInput is one requested invoice line. A nil Rate or GSTRate is
// filled from the product, and the GST rate then from the company default.
type InvoiceLineInput struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	Name            string           `json:"name"`
	HSNCode         string           `json:"hsn_code"`
	Unit            string           `json:"unit"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Rate            *decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	GSTRate         *decimal.Decimal `json:"gst_rate"`
}

// CreateInvoiceInput is the DTO for creating a sale or purchase invoice.
// InvoiceNumber is honoured for purchases only, which carry the vendor's number.
type CreateInvoiceInput struct {
	InvoiceType   domain.InvoiceType `json:"invoice_type" binding:"required,oneof=sale purchase"`
	InvoiceNumber string             `json:"invoice_number" binding:"max=50"`
	InvoiceDate   domain.Date        `json:"invoice_date"`
	DueDate       *domain.Date       `json:"due_date"`
	PartyID       uuid.UUID          `json:"party_id" binding:"required"`
	PlaceOfSupply string             `json:"place_of_supply" binding:"omitempty,len=2"`
	Items         []InvoiceLineInput `json:"items" binding:"required,min=1,dive"`
	Notes         string             `json:"notes"`
	RequestID     string             `json:"-"`
}

// UpdateInvoiceInput is the DTO for invoice updates. A non-nil Items replaces every line.
type UpdateInvoiceInput struct {
	InvoiceNumber *string            `json:"invoice_number" binding:"omitempty,max=50"`
	InvoiceDate   *domain.Date       `json:"invoice_date"`
	DueDate       *domain.Date       `json:"due_date"`
	PartyID       *uuid.UUID         `json:"party_id"`
	PlaceOfSupply *string            `json:"place_of_supply" binding:"omitempty,len=2"`
	Items         []InvoiceLineInput `json:"items" binding:"omitempty,dive"`
	Notes         *string            `json:"notes"`
}

// CreateReturnInput is the DTO for a credit note (sale return) or debit note (purchase return).
type CreateReturnInput struct {
	InvoiceType     domain.InvoiceType `json:"invoice_type" binding:"required,oneof=sale_return purchase_return"`
	InvoiceDate     domain.Date        `json:"invoice_date"`
	PartyID         uuid.UUID          `json:"party_id" binding:"required"`
	PlaceOfSupply   string             `json:"place_of_supply" binding:"omitempty,len=2"`
	Items           []InvoiceLineInput `json:"items" binding:"required,min=1,dive"`
	Allocation      AllocationInput    `json:"allocation"`
	RefundAmount    decimal.Decimal    `json:"refund_amount"`
	RefundAccountID *uuid.UUID         `json:"refund_account_id"`
	Notes           string             `json:"notes"`
	RequestID       string             `json:"-"`
}

// InvoiceService defines the invoice and return contract.
type InvoiceService interface {
	Create(ctx context.Context, companyID, userID uuid.UUID, input CreateInvoiceInput) (*domain.Invoice, error)
	Get(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, companyID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, int, error)
	Update(ctx context.Context, companyID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error)
	// Delete removes an invoice. Returns are fully reversed; other invoices must be unpaid.
	Delete(ctx context.Context, companyID, invoiceID uuid.UUID) error
	CreateReturn(ctx context.Context, companyID, userID uuid.UUID, input CreateReturnInput) (*domain.Invoice, error)
}

type invoiceService struct {
	tx          port.TxManager
	invoiceRepo port.InvoiceRepository
	partyRepo   port.PartyRepository
	productRepo port.ProductRepository
	companyRepo port.CompanyRepository
	accountRepo port.BankAccountRepository
	txnRepo     port.TransactionRepository
	settings    SettingsService
	idem        *idempotencyStore
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	tx port.TxManager,
	invoiceRepo port.InvoiceRepository,
	partyRepo port.PartyRepository,
	productRepo port.ProductRepository,
	companyRepo port.CompanyRepository,
	accountRepo port.BankAccountRepository,
	txnRepo port.TransactionRepository,
	settings SettingsService,
	idempotencyTTL time.Duration,
) InvoiceService {
	return &invoiceService{
		tx:          tx,
		invoiceRepo: invoiceRepo,
		partyRepo:   partyRepo,
		productRepo: productRepo,
		companyRepo: companyRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		settings:    settings,
		idem:        newIdempotencyStore(idempotencyTTL),
	}
}

func (s *invoiceService) Create(ctx context.Context, companyID, userID uuid.UUID, input CreateInvoiceInput) (*domain.Invoice, error) {
	if input.InvoiceType != domain.InvoiceTypeSale && input.InvoiceType != domain.InvoiceTypePurchase {
		return nil, domain.ErrInvalidInvoiceType
	}
	if existing, ok, err := s.replay(ctx, idemInvoice, companyID, input.RequestID); ok || err != nil {
		return existing, err
	}

	var inv *domain.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		party, err := s.partyFor(ctx, companyID, input.PartyID, input.InvoiceType)
		if err != nil {
			return err
		}
		totals, err := s.computeTotals(ctx, companyID, input.InvoiceType, party, input.PlaceOfSupply, input.Items)
		if err != nil {
			return err
		}

		number := sanitize.Code(input.InvoiceNumber)
		if input.InvoiceType != domain.InvoiceTypePurchase || number == "" {
			number, err = s.settings.NextNumber(ctx, companyID, string(input.InvoiceType))
			if err != nil {
				return err
			}
		}

		inv = &domain.Invoice{
			CompanyID:      companyID,
			InvoiceType:    input.InvoiceType,
			InvoiceNumber:  number,
			InvoiceDate:    dateOrToday(input.InvoiceDate),
			DueDate:        input.DueDate,
			PartyID:        party.ID,
			PartyName:      party.Name,
			PlaceOfSupply:  sanitize.Code(input.PlaceOfSupply),
			LinkedInvoices: domain.LinkedInvoices{},
			RequestID:      requestIDPtr(input.RequestID),
			Notes:          sanitize.Text(input.Notes),
			CreatedBy:      userID,
		}
		totals.Apply(inv)

		if err := s.invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		if err := s.moveStock(ctx, companyID, inv.InvoiceType, inv.Items, 1); err != nil {
			return err
		}
		recv, pay := partyEffect(inv.InvoiceType, inv.TotalAmount)
		return s.partyRepo.AdjustBalance(ctx, companyID, party.ID, recv, pay)
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyConflict) {
			return s.afterConflict(ctx, idemInvoice, companyID, input.RequestID, err)
		}
		return nil, err
	}

	s.idem.remember(idemInvoice, companyID, input.RequestID, inv.ID)
	zerolog.Ctx(ctx).Info().
		Str("invoice_id", inv.ID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("invoice_type", string(inv.InvoiceType)).
		Str("total", inv.TotalAmount.String()).
		Msg("invoice created")
	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, companyID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, companyID, invoiceID)
}

func (s *invoiceService) List(ctx context.Context, companyID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, companyID, filter)
}

func (s *invoiceService) Update(ctx context.Context, companyID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error) {
	var inv *domain.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoiceRepo.GetByIDForUpdate(ctx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if inv.InvoiceType.IsReturn() {
			return fmt.Errorf("%w: returns cannot be edited, delete and re-create instead", domain.ErrInvalidInvoiceType)
		}

		oldPartyID, oldTotal, oldItems := inv.PartyID, inv.TotalAmount, inv.Items

		if input.PartyID != nil && *input.PartyID != inv.PartyID {
			if inv.PaidAmount.IsPositive() {
				return domain.ErrInvoiceHasPayments
			}
			inv.PartyID = *input.PartyID
		}
		party, err := s.partyFor(ctx, companyID, inv.PartyID, inv.InvoiceType)
		if err != nil {
			return err
		}
		inv.PartyName = party.Name

		if input.InvoiceNumber != nil && inv.InvoiceType == domain.InvoiceTypePurchase {
			if n := sanitize.Code(*input.InvoiceNumber); n != "" {
				inv.InvoiceNumber = n
			}
		}
		if input.InvoiceDate != nil && !input.InvoiceDate.IsZero() {
			inv.InvoiceDate = *input.InvoiceDate
		}
		if input.DueDate != nil {
			inv.DueDate = input.DueDate
		}
		if input.PlaceOfSupply != nil {
			inv.PlaceOfSupply = sanitize.Code(*input.PlaceOfSupply)
		}
		if input.Notes != nil {
			inv.Notes = sanitize.Text(*input.Notes)
		}

		lines := input.Items
		if lines == nil {
			lines = linesFromItems(inv.Items)
		}
		totals, err := s.computeTotals(ctx, companyID, inv.InvoiceType, party, inv.PlaceOfSupply, lines)
		if err != nil {
			return err
		}
		totals.Apply(inv)
		if inv.TotalAmount.LessThan(inv.PaidAmount) {
			return domain.ErrInvoiceOverpaid
		}

		if err := s.invoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		if err := s.moveStock(ctx, companyID, inv.InvoiceType, oldItems, -1); err != nil {
			return err
		}
		if err := s.moveStock(ctx, companyID, inv.InvoiceType, inv.Items, 1); err != nil {
			return err
		}

		if oldPartyID != inv.PartyID {
			recv, pay := partyEffect(inv.InvoiceType, oldTotal.Neg())
			if err := s.partyRepo.AdjustBalance(ctx, companyID, oldPartyID, recv, pay); err != nil {
				return err
			}
			recv, pay = partyEffect(inv.InvoiceType, inv.TotalAmount)
			return s.partyRepo.AdjustBalance(ctx, companyID, inv.PartyID, recv, pay)
		}
		delta := inv.TotalAmount.Sub(oldTotal)
		if delta.IsZero() {
			return nil
		}
		recv, pay := partyEffect(inv.InvoiceType, delta)
		return s.partyRepo.AdjustBalance(ctx, companyID, inv.PartyID, recv, pay)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, companyID, invoiceID uuid.UUID) error {
	var deleted *domain.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.invoiceRepo.GetByIDForUpdate(ctx, companyID, invoiceID)
		if err != nil {
			return err
		}
		deleted = inv
		if inv.InvoiceType.IsReturn() {
			return s.reverseReturn(ctx, inv)
		}
		if inv.PaidAmount.IsPositive() {
			return domain.ErrInvoiceHasPayments
		}
		if err := s.moveStock(ctx, companyID, inv.InvoiceType, inv.Items, -1); err != nil {
			return err
		}
		recv, pay := partyEffect(inv.InvoiceType, inv.TotalAmount.Neg())
		if err := s.partyRepo.AdjustBalance(ctx, companyID, inv.PartyID, recv, pay); err != nil {
			return err
		}
		return s.invoiceRepo.Delete(ctx, companyID, invoiceID)
	})
	if err != nil {
		return err
	}
	kind := idemInvoice
	if deleted.InvoiceType.IsReturn() {
		kind = idemReturn
	}
	s.idem.forget(kind, companyID, deleted.RequestID)
	zerolog.Ctx(ctx).Info().Str("invoice_id", invoiceID.String()).Msg("invoice deleted")
	return nil
}

// partyFor loads the party and checks it is the right kind for the invoice type.
func (s *invoiceService) partyFor(ctx context.Context, companyID, partyID uuid.UUID, invoiceType domain.InvoiceType) (*domain.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, companyID, partyID)
	if err != nil {
		return nil, err
	}
	if party.PartyType != invoiceType.PartyType() {
		return nil, domain.ErrPartyTypeMismatch
	}
	return party, nil
}

// computeTotals fills line defaults from products and settings and runs the billing arithmetic.
func (s *invoiceService) computeTotals(
	ctx context.Context,
	companyID uuid.UUID,
	invoiceType domain.InvoiceType,
	party *domain.Party,
	placeOfSupply string,
	items []InvoiceLineInput,
) (*billing.Totals, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	lines := make([]billing.LineInput, 0, len(items))
	for i, item := range items {
		line := billing.LineInput{
			ProductID:       item.ProductID,
			Name:            sanitize.Name(item.Name),
			HSNCode:         sanitize.Code(item.HSNCode),
			Unit:            sanitize.Code(item.Unit),
			Quantity:        item.Quantity,
			DiscountPercent: item.DiscountPercent,
		}
		if item.Rate != nil {
			line.Rate = *item.Rate
		}
		if item.GSTRate != nil {
			line.GSTRate = *item.GSTRate
		}

		if item.ProductID != nil {
			product, err := s.productRepo.GetByID(ctx, companyID, *item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			fillFromProduct(&line, item, product, invoiceType, party.IsRegistered())
		}
		if item.GSTRate == nil && item.ProductID == nil {
			line.GSTRate = settings.DefaultGSTRate
		}
		lines = append(lines, line)
	}

	state := placeOfSupply
	if state == "" {
		state = party.StateCode
	}
	return billing.Compute(lines, billing.Options{
		CompanyStateCode: company.StateCode,
		PartyStateCode:   state,
		RoundOff:         settings.RoundOffEnabled,
	})
}

func fillFromProduct(line *billing.LineInput, item InvoiceLineInput, product *domain.Product, invoiceType domain.InvoiceType, registered bool) {
	if line.Name == "" {
		line.Name = product.Name
	}
	if line.HSNCode == "" {
		line.HSNCode = product.HSNCode
	}
	if line.Unit == "" {
		line.Unit = product.Unit
	}
	if item.Rate == nil {
		if invoiceType.PartyType() == domain.PartyTypeCustomer {
			line.Rate = product.SaleRate(registered)
		} else {
			line.Rate = product.PurchaseRate
		}
	}
	if item.GSTRate == nil {
		line.GSTRate = product.GSTRate
	}
}

// linesFromItems turns stored lines back into explicit inputs so a recompute keeps their rates.
func linesFromItems(items domain.InvoiceItems) []InvoiceLineInput {
	lines := make([]InvoiceLineInput, 0, len(items))
	for _, it := range items {
		rate, gst := it.Rate, it.GSTRate
		lines = append(lines, InvoiceLineInput{
			ProductID:       it.ProductID,
			Name:            it.Name,
			HSNCode:         it.HSNCode,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			Rate:            &rate,
			DiscountPercent: it.DiscountPercent,
			GSTRate:         &gst,
		})
	}
	return lines
}

// moveStock applies the invoice type's stock direction to every product line; sign -1 reverses it.
func (s *invoiceService) moveStock(ctx context.Context, companyID uuid.UUID, invoiceType domain.InvoiceType, items domain.InvoiceItems, sign int) error {
	factor := decimal.NewFromInt(int64(invoiceType.StockDirection() * sign))
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		if err := s.productRepo.AdjustStock(ctx, companyID, *it.ProductID, it.Quantity.Mul(factor)); err != nil {
			return fmt.Errorf("adjusting stock of %s: %w", it.Name, err)
		}
	}
	return nil
}

func (s *invoiceService) replay(ctx context.Context, kind string, companyID uuid.UUID, requestID string) (*domain.Invoice, bool, error) {
	id, ok := s.idem.lookup(kind, companyID, requestID)
	if !ok {
		return nil, false, nil
	}
	inv, err := s.invoiceRepo.GetByID(ctx, companyID, id)
	if errors.Is(err, domain.ErrInvoiceNotFound) {
		s.idem.forget(kind, companyID, &requestID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

// afterConflict returns the invoice an earlier request with the same key created.
func (s *invoiceService) afterConflict(ctx context.Context, kind string, companyID uuid.UUID, requestID string, cause error) (*domain.Invoice, error) {
	if requestID == "" {
		return nil, cause
	}
	inv, err := s.invoiceRepo.GetByRequestID(ctx, companyID, requestID)
	if err != nil {
		return nil, cause
	}
	s.idem.remember(kind, companyID, requestID, inv.ID)
	return inv, nil
}

// partyEffect is how an invoice amount moves the party's receivable and payable totals.
func partyEffect(invoiceType domain.InvoiceType, amount decimal.Decimal) (receivable, payable decimal.Decimal) {
	switch invoiceType {
	case domain.InvoiceTypeSale:
		return amount, decimal.Zero
	case domain.InvoiceTypePurchase:
		return decimal.Zero, amount
	case domain.InvoiceTypeSaleReturn:
		return amount.Neg(), decimal.Zero
	default:
		return decimal.Zero, amount.Neg()
	}
}

func dateOrToday(d domain.Date) domain.Date {
	if d.IsZero() {
		return domain.Today()
	}
	return d
}
