package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/linking"
	"khata/internal/port"
	"khata/internal/sanitize"
)

const idemPayment = "payment"

// PaymentMethodInput is the part of a payment made through one method.
type PaymentMethodInput struct {
	Method      domain.PaymentMethod `json:"method" binding:"required"`
	Amount      decimal.Decimal      `json:"amount"`
	ReferenceNo string               `json:"reference_no" binding:"max=64"`
	AccountID   *uuid.UUID           `json:"account_id"`
}

// CreatePaymentInput is the DTO for recording a payment.
// TotalAmount is the gross amount settled; the methods carry TotalAmount minus the discount.
type CreatePaymentInput struct {
	PaymentType domain.PaymentType   `json:"payment_type" binding:"required,oneof=payment_in payment_out"`
	PartyID     uuid.UUID            `json:"party_id" binding:"required"`
	PaymentDate domain.Date          `json:"payment_date"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Methods     []PaymentMethodInput `json:"payment_methods" binding:"dive"`
	Allocation  AllocationInput      `json:"allocation"`
	Notes       string               `json:"notes"`
	RequestID   string               `json:"-"`
}

// PaymentService defines the payment contract. Payments are immutable: correct one by deleting it.
type PaymentService interface {
	Create(ctx context.Context, companyID, userID uuid.UUID, input CreatePaymentInput) (*domain.Payment, error)
	Get(ctx context.Context, companyID, paymentID uuid.UUID) (*domain.Payment, error)
	List(ctx context.Context, companyID uuid.UUID, filter port.PaymentFilter) ([]domain.Payment, int, error)
	Delete(ctx context.Context, companyID, paymentID uuid.UUID) error
}

type paymentService struct {
	tx          port.TxManager
	paymentRepo port.PaymentRepository
	invoiceRepo port.InvoiceRepository
	partyRepo   port.PartyRepository
	accountRepo port.BankAccountRepository
	txnRepo     port.TransactionRepository
	settings    SettingsService
	idem        *idempotencyStore
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	tx port.TxManager,
	paymentRepo port.PaymentRepository,
	invoiceRepo port.InvoiceRepository,
	partyRepo port.PartyRepository,
	accountRepo port.BankAccountRepository,
	txnRepo port.TransactionRepository,
	settings SettingsService,
	idempotencyTTL time.Duration,
) PaymentService {
	return &paymentService{
		tx:          tx,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		partyRepo:   partyRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		settings:    settings,
		idem:        newIdempotencyStore(idempotencyTTL),
	}
}

func validatePayment(input CreatePaymentInput) (domain.PaymentMethods, error) {
	if !domain.ValidPaymentTypes[input.PaymentType] {
		return nil, domain.ErrInvalidPaymentType
	}
	if !input.TotalAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	discount := input.Allocation.Discount
	if discount.IsNegative() || discount.GreaterThan(input.TotalAmount) {
		return nil, domain.ErrInvalidDiscount
	}

	methods := make(domain.PaymentMethods, 0, len(input.Methods))
	for _, m := range input.Methods {
		if !domain.ValidPaymentMethods[m.Method] {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, m.Method)
		}
		if !m.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: %s amount", domain.ErrInvalidAmount, m.Method)
		}
		methods = append(methods, domain.PaymentMethodLine{
			Method:      m.Method,
			Amount:      m.Amount,
			ReferenceNo: sanitize.Code(m.ReferenceNo),
			AccountID:   m.AccountID,
		})
	}
	if !methods.Total().Equal(input.TotalAmount.Sub(discount)) {
		return nil, domain.ErrPaymentMethodMismatch
	}
	return methods, nil
}

func (s *paymentService) Create(ctx context.Context, companyID, userID uuid.UUID, input CreatePaymentInput) (*domain.Payment, error) {
	methods, err := validatePayment(input)
	if err != nil {
		return nil, err
	}
	if id, ok := s.idem.lookup(idemPayment, companyID, input.RequestID); ok {
		existing, err := s.paymentRepo.GetByID(ctx, companyID, id)
		if !errors.Is(err, domain.ErrPaymentNotFound) {
			return existing, err
		}
		s.idem.forget(idemPayment, companyID, &input.RequestID)
	}

	var payment *domain.Payment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		party, err := s.partyRepo.GetByID(ctx, companyID, input.PartyID)
		if err != nil {
			return err
		}
		if party.PartyType != input.PaymentType.PartyType() {
			return domain.ErrPartyTypeMismatch
		}
		for _, m := range methods {
			if m.AccountID == nil {
				continue
			}
			if _, err := s.accountRepo.GetByID(ctx, companyID, *m.AccountID); err != nil {
				return err
			}
		}

		alloc, err := allocate(ctx, s.invoiceRepo, companyID, party.ID, linking.ModeForPayment(input.PaymentType), input.TotalAmount, input.Allocation)
		if err != nil {
			return err
		}
		result := alloc.Result()

		number, err := s.settings.NextNumber(ctx, companyID, string(input.PaymentType))
		if err != nil {
			return err
		}

		payment = &domain.Payment{
			CompanyID:      companyID,
			PaymentNumber:  number,
			PaymentType:    input.PaymentType,
			PartyID:        party.ID,
			PartyName:      party.Name,
			PaymentDate:    dateOrToday(input.PaymentDate),
			PaymentMethods: methods,
			TotalAmount:    input.TotalAmount,
			Discount:       result.Discount,
			LinkedInvoices: result.Links,
			UnusedAmount:   result.Unused,
			RequestID:      requestIDPtr(input.RequestID),
			Notes:          sanitize.Text(input.Notes),
			CreatedBy:      userID,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		if err := applyLinks(ctx, s.invoiceRepo, companyID, payment.LinkedInvoices, 1); err != nil {
			return err
		}
		if err := s.postMethods(ctx, payment); err != nil {
			return err
		}
		recv, pay := paymentEffect(payment.PaymentType, payment.TotalAmount.Neg())
		return s.partyRepo.AdjustBalance(ctx, companyID, party.ID, recv, pay)
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyConflict) && input.RequestID != "" {
			if existing, lookupErr := s.paymentRepo.GetByRequestID(ctx, companyID, input.RequestID); lookupErr == nil {
				s.idem.remember(idemPayment, companyID, input.RequestID, existing.ID)
				return existing, nil
			}
		}
		return nil, err
	}

	s.idem.remember(idemPayment, companyID, input.RequestID, payment.ID)
	zerolog.Ctx(ctx).Info().
		Str("payment_id", payment.ID.String()).
		Str("payment_number", payment.PaymentNumber).
		Str("payment_type", string(payment.PaymentType)).
		Str("total", payment.TotalAmount.String()).
		Str("unused", payment.UnusedAmount.String()).
		Msg("payment recorded")
	return payment, nil
}

// postMethods writes one ledger line per method that names an account.
func (s *paymentService) postMethods(ctx context.Context, payment *domain.Payment) error {
	txnType := domain.TxnPaymentIn
	if payment.PaymentType == domain.PaymentTypeOut {
		txnType = domain.TxnPaymentOut
	}
	sign := decimal.NewFromInt(payment.PaymentType.Sign())
	paymentID := payment.ID

	for _, m := range payment.PaymentMethods {
		if m.AccountID == nil {
			continue
		}
		desc := payment.PaymentNumber + " via " + string(m.Method)
		if m.ReferenceNo != "" {
			desc += " ref " + m.ReferenceNo
		}
		amount := m.Amount.Mul(sign)
		txn := &domain.Transaction{
			CompanyID:       payment.CompanyID,
			AccountID:       *m.AccountID,
			TransactionType: txnType,
			Amount:          amount,
			TransactionDate: payment.PaymentDate,
			PartyName:       payment.PartyName,
			Description:     desc,
			PaymentID:       &paymentID,
			CreatedBy:       payment.CreatedBy,
		}
		if err := s.txnRepo.Create(ctx, txn); err != nil {
			return err
		}
		if err := s.accountRepo.AdjustBalance(ctx, payment.CompanyID, *m.AccountID, amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *paymentService) Get(ctx context.Context, companyID, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, companyID, paymentID)
}

func (s *paymentService) List(ctx context.Context, companyID uuid.UUID, filter port.PaymentFilter) ([]domain.Payment, int, error) {
	return s.paymentRepo.List(ctx, companyID, filter)
}

// Delete reverses the payment's invoice applications, ledger lines and party effect.
func (s *paymentService) Delete(ctx context.Context, companyID, paymentID uuid.UUID) error {
	var requestID *string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.GetByID(ctx, companyID, paymentID)
		if err != nil {
			return err
		}
		requestID = payment.RequestID
		if err := applyLinks(ctx, s.invoiceRepo, companyID, payment.LinkedInvoices, -1); err != nil {
			return err
		}

		txns, err := s.txnRepo.ListByPayment(ctx, companyID, paymentID)
		if err != nil {
			return err
		}
		for i := range txns {
			if err := s.txnRepo.Delete(ctx, companyID, txns[i].ID); err != nil {
				return err
			}
			if err := s.accountRepo.AdjustBalance(ctx, companyID, txns[i].AccountID, txns[i].Amount.Neg()); err != nil {
				return err
			}
		}

		recv, pay := paymentEffect(payment.PaymentType, payment.TotalAmount)
		if err := s.partyRepo.AdjustBalance(ctx, companyID, payment.PartyID, recv, pay); err != nil {
			return err
		}
		return s.paymentRepo.Delete(ctx, companyID, paymentID)
	})
	if err != nil {
		return err
	}
	s.idem.forget(idemPayment, companyID, requestID)
	zerolog.Ctx(ctx).Info().Str("payment_id", paymentID.String()).Msg("payment deleted")
	return nil
}

// paymentEffect routes an amount to receivable for payments in and payable for payments out.
func paymentEffect(paymentType domain.PaymentType, amount decimal.Decimal) (receivable, payable decimal.Decimal) {
	if paymentType == domain.PaymentTypeIn {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}
