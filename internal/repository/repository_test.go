package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/testdb"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixtures struct {
	owner    model.Owner
	customer model.Customer
	bank     model.BankDetails
	itemA    model.Item
	itemB    model.Item
}

func seed(t *testing.T, r *Repository) fixtures {
	t.Helper()
	ctx := context.Background()
	var f fixtures

	f.owner = model.Owner{Name: "Asha", Email: "asha@example.com", CompanyName: "Asha Traders"}
	if err := r.CreateOwner(ctx, &f.owner); err != nil {
		t.Fatalf("owner: %v", err)
	}
	f.customer = model.Customer{OwnerID: f.owner.ID, Name: "Ravi", Phone: "9876543210"}
	if err := r.CreateCustomer(ctx, &f.customer); err != nil {
		t.Fatalf("customer: %v", err)
	}
	f.bank = model.BankDetails{OwnerID: f.owner.ID, BankName: "SBI", AccountNumber: "001", IFSC: "SBIN0001"}
	if err := r.CreateBankDetails(ctx, &f.bank); err != nil {
		t.Fatalf("bank: %v", err)
	}
	f.itemA = model.Item{OwnerID: f.owner.ID, Name: "Cement", Rate: decimal.NewFromInt(100), Tax: decimal.NewFromInt(18)}
	f.itemB = model.Item{OwnerID: f.owner.ID, Name: "Sand", Rate: decimal.NewFromInt(50), Tax: decimal.Zero}
	for _, it := range []*model.Item{&f.itemA, &f.itemB} {
		if err := r.CreateItem(ctx, it); err != nil {
			t.Fatalf("item: %v", err)
		}
	}
	return f
}

func newQuotation(f fixtures, number int64) *model.Quotation {
	return &model.Quotation{
		OwnerID:       f.owner.ID,
		Number:        number,
		CustomerID:    f.customer.ID,
		BankDetailsID: f.bank.ID,
		Template:      "classic",
		Items: []model.QuotationItem{
			{ItemID: f.itemA.ID, Quantity: 2, Tax: decimal.NewFromInt(18)},
			{ItemID: f.itemB.ID, Quantity: 1, Tax: decimal.Zero},
		},
		Payment: &model.Payment{Status: model.PaymentPending, Amount: decimal.NewFromInt(286), PaidAmount: decimal.Zero},
	}
}

func TestCreateAndFetchQuotation(t *testing.T) {
	r := New(testdb.Open(t))
	f := seed(t, r)
	ctx := context.Background()

	if err := r.CreateQuotation(ctx, newQuotation(f, 101)); err != nil {
		t.Fatalf("create: %v", err)
	}

	q, err := r.GetQuotationByNumber(ctx, f.owner.ID, 101)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.Customer.Phone != "9876543210" || q.BankDetails.BankName != "SBI" {
		t.Fatalf("references not preloaded: %+v", q)
	}
	if len(q.Items) != 2 || q.Items[0].Item.Name != "Cement" || q.Items[1].Position != 2 {
		t.Fatalf("items = %+v", q.Items)
	}
	if q.Payment == nil || q.Payment.Status != model.PaymentPending || !q.Payment.Amount.Equal(decimal.NewFromInt(286)) {
		t.Fatalf("payment = %+v", q.Payment)
	}

	if _, err := r.GetQuotationByNumber(ctx, f.owner.ID+1, 101); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("another owner must not see the quotation, got %v", err)
	}
}

func TestCreateQuotationDuplicateLeavesNoOrphans(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	f := seed(t, r)
	ctx := context.Background()

	if err := r.CreateQuotation(ctx, newQuotation(f, 7)); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := r.CreateQuotation(ctx, newQuotation(f, 7))
	var dErr *apperr.DuplicateError
	if !errors.As(err, &dErr) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}

	var items, payments int64
	db.Model(&model.QuotationItem{}).Count(&items)
	db.Model(&model.Payment{}).Count(&payments)
	if items != 2 || payments != 1 {
		t.Fatalf("orphans written: items=%d payments=%d", items, payments)
	}
}

func TestCreateQuotationRollsBackOnLineFailure(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	f := seed(t, r)

	q := newQuotation(f, 8)
	q.Items[1].ID = 999
	q.Items = append(q.Items, model.QuotationItem{ID: 999, ItemID: f.itemB.ID, Quantity: 1, Tax: decimal.Zero})
	if err := r.CreateQuotation(context.Background(), q); err == nil {
		t.Fatalf("expected failure on conflicting line id")
	}

	var quotations, items int64
	db.Model(&model.Quotation{}).Count(&quotations)
	db.Model(&model.QuotationItem{}).Count(&items)
	if quotations != 0 || items != 0 {
		t.Fatalf("partial write: quotations=%d items=%d", quotations, items)
	}
}

func TestNextQuotationNumber(t *testing.T) {
	r := New(testdb.Open(t))
	f := seed(t, r)
	ctx := context.Background()

	n, err := r.NextQuotationNumber(ctx, f.owner.ID)
	if err != nil || n != 1 {
		t.Fatalf("empty owner next = %d, %v", n, err)
	}
	for _, num := range []int64{3, 41, 12} {
		if err := r.CreateQuotation(ctx, newQuotation(f, num)); err != nil {
			t.Fatalf("create %d: %v", num, err)
		}
	}
	if n, _ = r.NextQuotationNumber(ctx, f.owner.ID); n != 42 {
		t.Fatalf("next = %d, want 42", n)
	}

	list, err := r.ListQuotations(ctx, f.owner.ID, QuotationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Number != 41 || len(list[0].Items) != 2 {
		t.Fatalf("list order/preload wrong: %+v", list)
	}
}

func TestItemUniquenessUpdateAndDelete(t *testing.T) {
	r := New(testdb.Open(t))
	f := seed(t, r)
	ctx := context.Background()

	dup := model.Item{OwnerID: f.owner.ID, Name: "Cement", Rate: decimal.NewFromInt(1), Tax: decimal.Zero}
	if err := r.CreateItem(ctx, &dup); !errors.Is(err, apperr.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	rate := decimal.NewFromInt(120)
	updated, err := r.UpdateItem(ctx, f.owner.ID, "Cement", ItemUpdate{Rate: &rate})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Rate.Equal(rate) || !updated.Tax.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("updated = %+v", updated)
	}
	if _, err := r.UpdateItem(ctx, f.owner.ID, "Gravel", ItemUpdate{Rate: &rate}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := r.CreateQuotation(ctx, newQuotation(f, 1)); err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if err := r.DeleteItem(ctx, f.owner.ID, "Cement"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("deleting a used item must fail, got %v", err)
	}
	unused := model.Item{OwnerID: f.owner.ID, Name: "Paint", Rate: decimal.NewFromInt(5), Tax: decimal.Zero}
	if err := r.CreateItem(ctx, &unused); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.DeleteItem(ctx, f.owner.ID, "Paint"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetItemByName(ctx, f.owner.ID, "Paint"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected deleted item to be gone, got %v", err)
	}
}

func TestCustomerPhoneUniquePerOwner(t *testing.T) {
	r := New(testdb.Open(t))
	f := seed(t, r)
	ctx := context.Background()

	dup := model.Customer{OwnerID: f.owner.ID, Name: "Other", Phone: f.customer.Phone}
	if err := r.CreateCustomer(ctx, &dup); !errors.Is(err, apperr.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	got, err := r.GetCustomerByPhone(ctx, f.owner.ID, f.customer.Phone)
	if err != nil || got.Name != "Ravi" {
		t.Fatalf("get by phone = %+v, %v", got, err)
	}
}

func TestPaymentTransitionsAndSweep(t *testing.T) {
	r := New(testdb.Open(t))
	f := seed(t, r)
	ctx := context.Background()

	q := newQuotation(f, 5)
	if err := r.CreateQuotation(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}

	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	p, err := r.UpsertPayment(ctx, q.ID, model.PaymentPending, decimal.NewFromInt(286), &due)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.ID != q.Payment.ID || p.DueDate == nil {
		t.Fatalf("upsert should update the existing payment: %+v", p)
	}

	n, err := r.SweepOverdue(ctx, due.Add(24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("sweep = %d, %v", n, err)
	}

	got, _ := r.GetQuotationByNumber(ctx, f.owner.ID, 5)
	if got.Payment.Status != model.PaymentOverdue {
		t.Fatalf("status = %s", got.Payment.Status)
	}

	// a stale writer still believing the payment is PENDING loses
	got.Payment.Status = model.PaymentPaid
	err = r.SavePaymentTransition(ctx, got.Payment, model.PaymentPending)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected stale transition to fail, got %v", err)
	}
	if err := r.SavePaymentTransition(ctx, got.Payment, model.PaymentOverdue); err != nil {
		t.Fatalf("save: %v", err)
	}

	rem := model.Reminder{PaymentID: got.Payment.ID, Type: "EMAIL", Status: model.ReminderSent, SentAt: time.Now()}
	if err := r.AddReminder(ctx, &rem); err != nil {
		t.Fatalf("reminder: %v", err)
	}
	again, _ := r.GetQuotationByNumber(ctx, f.owner.ID, 5)
	if again.Payment.Status != model.PaymentPaid || len(again.Payment.Reminders) != 1 {
		t.Fatalf("payment = %+v", again.Payment)
	}
}

func TestReadRetriesOnlyUpstreamFailures(t *testing.T) {
	r := New(testdb.Open(t), WithReadRetry(3, time.Millisecond))
	ctx := context.Background()

	calls := 0
	err := r.read(ctx, "flaky", func(tx *gorm.DB) error {
		calls++
		return errors.New("connection reset by peer")
	})
	if err == nil || calls != 3 {
		t.Fatalf("calls = %d, err = %v", calls, err)
	}

	calls = 0
	err = r.read(ctx, "missing", func(tx *gorm.DB) error {
		calls++
		return gorm.ErrRecordNotFound
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) || calls != 1 {
		t.Fatalf("not found must not retry: calls = %d", calls)
	}

	calls = 0
	err = r.read(ctx, "recovering", func(tx *gorm.DB) error {
		calls++
		if calls < 2 {
			return errors.New("temporary failure")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("calls = %d, err = %v", calls, err)
	}

	if !apperr.IsRetryable(translate("flaky", "x", 1, errors.New("boom"))) {
		t.Fatalf("unknown driver errors are upstream errors")
	}
}
