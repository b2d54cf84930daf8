package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/paymentflow"
	"invoice-service/internal/render"
	"invoice-service/internal/repository"
	"invoice-service/internal/totals"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type QuotationLineInput struct {
	ItemID   uint             `json:"item_id" validate:"required"`
	Quantity int64            `json:"quantity" validate:"gte=0"`
	Tax      *decimal.Decimal `json:"tax,omitempty"`
}

// CreateQuotationInput is a new quotation. A zero Number takes the next free
// number; a missing Tax on a line captures the item's current tax.
type CreateQuotationInput struct {
	Number        int64                `json:"number" validate:"gte=0"`
	CustomerID    uint                 `json:"customer_id" validate:"required"`
	BankDetailsID uint                 `json:"bank_details_id" validate:"required"`
	Template      string               `json:"template"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	Items         []QuotationLineInput `json:"items" validate:"required,min=1,dive"`
}

// QuotationView is a quotation with its totals and the status as of now.
type QuotationView struct {
	*model.Quotation
	Status model.PaymentStatus `json:"status"`
	Totals totals.Summary      `json:"totals"`
}

// Number is a JSON number or numeric string kept as raw text.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	*n = Number(b)
	return nil
}

type PreviewLine struct {
	Quantity Number `json:"quantity"`
	Rate     Number `json:"rate"`
	Tax      Number `json:"tax"`
}

type PreviewInput struct {
	Items []PreviewLine `json:"items"`
}

// PaymentUpdateInput moves the payment of one quotation.
type PaymentUpdateInput struct {
	QuotationNumber int64               `json:"quotation_number" validate:"required,gt=0"`
	Status          model.PaymentStatus `json:"status" validate:"required"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	PaymentMethod   string              `json:"payment_method"`
}

type ReminderInput struct {
	Type    string                 `json:"type" validate:"required"`
	Status  model.ReminderStatus   `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// QuotationService creates quotations and drives their payments.
type QuotationService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewQuotationService(repo *repository.Repository) *QuotationService {
	return &QuotationService{repo: repo, now: time.Now}
}

// WithClock replaces the clock used for due dates and status changes.
func (s *QuotationService) WithClock(now func() time.Time) *QuotationService {
	s.now = now
	return s
}

// Create stores a quotation with its lines and a PENDING payment for the
// grand total. Customer, bank details and every item must belong to the owner.
func (s *QuotationService) Create(ctx context.Context, ownerID uint, in CreateQuotationInput) (*QuotationView, error) {
	log := logger.FromContext(ctx)

	if in.Number < 0 {
		return nil, apperr.Validation("number", "must be positive, got %d", in.Number)
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("items", "a quotation needs at least one line")
	}
	template := strings.TrimSpace(in.Template)
	if template == "" {
		template = render.DefaultTemplate
	}
	if !render.IsTemplate(template) {
		return nil, apperr.Validation("template", "unknown template %q", template)
	}

	customer, err := s.repo.GetCustomer(ctx, ownerID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	bank, err := s.repo.GetBankDetails(ctx, ownerID, in.BankDetailsID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(in.Items))
	for _, l := range in.Items {
		ids = append(ids, l.ItemID)
	}
	items, err := s.repo.GetItemsByID(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}

	q := &model.Quotation{
		OwnerID:       ownerID,
		Number:        in.Number,
		CustomerID:    customer.ID,
		Customer:      *customer,
		BankDetailsID: bank.ID,
		BankDetails:   *bank,
		Template:      template,
	}
	for i, l := range in.Items {
		it, ok := items[l.ItemID]
		if !ok {
			return nil, apperr.NotFound("item", l.ItemID)
		}
		tax := it.Tax
		if l.Tax != nil {
			if err := twoPlaces("tax", *l.Tax); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			tax = *l.Tax
		}
		line := totals.Line{Quantity: l.Quantity, Rate: it.Rate, TaxPercent: tax}
		if err := line.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		q.Items = append(q.Items, model.QuotationItem{ItemID: it.ID, Item: it, Quantity: l.Quantity, Tax: tax})
	}

	res, err := totals.ForQuotation(q)
	if err != nil {
		return nil, err
	}
	if err := res.CheckLimit(); err != nil {
		return nil, err
	}

	if q.Number == 0 {
		if q.Number, err = s.repo.NextQuotationNumber(ctx, ownerID); err != nil {
			return nil, err
		}
	}
	q.Payment = &model.Payment{
		Amount:     res.GrandTotal.Round(2),
		PaidAmount: decimal.Zero,
		Status:     model.PaymentPending,
		DueDate:    in.DueDate,
	}

	if err := s.repo.CreateQuotation(ctx, q); err != nil {
		prometheus.RecordQuotationOperation("create_failed")
		if errors.Is(err, apperr.ErrDuplicate) {
			log.Warn("Quotation number already used", zap.Int64("number", q.Number))
		}
		return nil, err
	}
	prometheus.RecordQuotationOperation("create")
	log.Info("Quotation created",
		zap.Int64("number", q.Number),
		zap.Int("lines", len(q.Items)),
		zap.String("grand_total", totals.Format(res.GrandTotal)))

	return &QuotationView{Quotation: q, Status: paymentflow.Effective(q.Payment, s.now()), Totals: res.Summary()}, nil
}

func (s *QuotationService) view(q *model.Quotation) (*QuotationView, error) {
	res, err := totals.ForQuotation(q)
	if err != nil {
		return nil, fmt.Errorf("quotation %d: %w", q.Number, err)
	}
	return &QuotationView{Quotation: q, Status: paymentflow.Effective(q.Payment, s.now()), Totals: res.Summary()}, nil
}

// Get loads a quotation and recomputes its totals from current item rates.
func (s *QuotationService) Get(ctx context.Context, ownerID uint, number int64) (*QuotationView, error) {
	q, err := s.repo.GetQuotationByNumber(ctx, ownerID, number)
	if err != nil {
		return nil, err
	}
	prometheus.RecordQuotationOperation("get")
	return s.view(q)
}

func (s *QuotationService) List(ctx context.Context, ownerID uint, f repository.QuotationFilter) ([]QuotationView, error) {
	qs, err := s.repo.ListQuotations(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	out := make([]QuotationView, 0, len(qs))
	for i := range qs {
		v, err := s.view(&qs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *QuotationService) NextNumber(ctx context.Context, ownerID uint) (int64, error) {
	return s.repo.NextQuotationNumber(ctx, ownerID)
}

// Preview prices raw lines without storing anything.
func (s *QuotationService) Preview(in PreviewInput) (totals.Summary, error) {
	lines := make([]totals.Line, 0, len(in.Items))
	for i, raw := range in.Items {
		l, err := totals.ParseLine(string(raw.Quantity), string(raw.Rate), string(raw.Tax))
		if err != nil {
			return totals.Summary{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		lines = append(lines, l)
	}
	res, err := totals.Compute(lines)
	if err != nil {
		return totals.Summary{}, err
	}
	return res.Summary(), nil
}

// UpdatePaymentStatus applies a status change to the stored payment. The
// transition table is checked against the persisted status.
func (s *QuotationService) UpdatePaymentStatus(ctx context.Context, ownerID uint, in PaymentUpdateInput) (*QuotationView, error) {
	log := logger.FromContext(ctx)

	q, err := s.repo.GetQuotationByNumber(ctx, ownerID, in.QuotationNumber)
	if err != nil {
		return nil, err
	}
	if q.Payment == nil {
		res, err := totals.ForQuotation(q)
		if err != nil {
			return nil, err
		}
		if q.Payment, err = s.repo.UpsertPayment(ctx, q.ID, model.PaymentPending, res.GrandTotal.Round(2), nil); err != nil {
			return nil, err
		}
	}

	p := q.Payment
	from := p.Status
	change := paymentflow.Change{To: in.Status, PaidAmount: in.PaidAmount, Method: strings.TrimSpace(in.PaymentMethod)}
	if err := paymentflow.Apply(p, change, s.now()); err != nil {
		prometheus.RecordPaymentTransition(string(from), string(in.Status), false)
		log.Warn("Payment status change rejected",
			zap.Int64("number", q.Number),
			zap.String("from", string(from)),
			zap.String("to", string(in.Status)),
			zap.Error(err))
		return nil, err
	}
	if err := s.repo.SavePaymentTransition(ctx, p, from); err != nil {
		prometheus.RecordPaymentTransition(string(from), string(in.Status), false)
		return nil, err
	}
	prometheus.RecordPaymentTransition(string(from), string(p.Status), true)
	log.Info("Payment status changed",
		zap.Int64("number", q.Number),
		zap.String("from", string(from)),
		zap.String("to", string(p.Status)))
	return s.view(q)
}

// AddReminder records a reminder against an open payment.
func (s *QuotationService) AddReminder(ctx context.Context, ownerID uint, number int64, in ReminderInput) (*model.Reminder, error) {
	q, err := s.repo.GetQuotationByNumber(ctx, ownerID, number)
	if err != nil {
		return nil, err
	}
	if q.Payment == nil || paymentflow.Terminal(q.Payment.Status) {
		return nil, apperr.Validation("status", "quotation %d has no open payment to remind about", number)
	}
	if in.Status == "" {
		in.Status = model.ReminderSent
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("status", "unknown reminder status %q", in.Status)
	}
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		return nil, apperr.Validation("type", "is required")
	}

	rem := &model.Reminder{
		PaymentID: q.Payment.ID,
		Type:      typ,
		Status:    in.Status,
		SentAt:    s.now(),
	}
	if len(in.Details) > 0 {
		raw, err := json.Marshal(in.Details)
		if err != nil {
			return nil, apperr.Validation("details", "cannot encode: %v", err)
		}
		rem.Details = datatypes.JSON(raw)
	}
	if err := s.repo.AddReminder(ctx, rem); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Reminder recorded", zap.Int64("number", number), zap.String("type", typ))
	return rem, nil
}

// RenderPDF prints a quotation. An empty template uses the one chosen at
// creation.
func (s *QuotationService) RenderPDF(ctx context.Context, ownerID uint, number int64, template string) ([]byte, error) {
	q, err := s.repo.GetQuotationByNumber(ctx, ownerID, number)
	if err != nil {
		return nil, err
	}
	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	res, err := totals.ForQuotation(q)
	if err != nil {
		return nil, err
	}
	if template == "" {
		template = q.Template
	}
	out, err := render.PDF(render.NewDocument(q, *owner, res, paymentflow.Effective(q.Payment, s.now())), template)
	if err != nil {
		return nil, err
	}
	prometheus.RecordQuotationOperation("render_pdf")
	return out, nil
}

// SweepOverdue persists OVERDUE for every PENDING payment past its due date.
func (s *QuotationService) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.SweepOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("Overdue sweep finished", zap.Int64("updated", n))
	return n, nil
}
