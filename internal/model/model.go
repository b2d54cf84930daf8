package model

// All returns every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&Owner{},
		&Customer{},
		&Item{},
		&BankDetails{},
		&Quotation{},
		&QuotationItem{},
		&Payment{},
		&Reminder{},
	}
}
