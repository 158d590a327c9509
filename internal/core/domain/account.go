package domain

import (
	"math"
	"time"
)

// Account is a credit card account (ACCTDAT record).
type Account struct {
	AccountID        string    `json:"accountId" bson:"account_id"`
	ActiveStatus     string    `json:"activeStatus" bson:"active_status"`
	CurrentBalance   float64   `json:"currentBalance" bson:"current_balance"`
	CreditLimit      float64   `json:"creditLimit" bson:"credit_limit"`
	CashCreditLimit  float64   `json:"cashCreditLimit" bson:"cash_credit_limit"`
	OpenDate         time.Time `json:"openDate" bson:"open_date"`
	ExpirationDate   time.Time `json:"expirationDate" bson:"expiration_date"`
	ReissueDate      time.Time `json:"reissueDate" bson:"reissue_date"`
	CurrentCycleCred float64   `json:"currentCycleCredit" bson:"curr_cyc_credit"`
	CurrentCycleDebt float64   `json:"currentCycleDebit" bson:"curr_cyc_debit"`
	GroupID          string    `json:"groupId" bson:"group_id"`
	CustomerName     string    `json:"customerName" bson:"customer_name"`
}

// HasBalanceDue reports whether a bill payment would move any money.
func (a *Account) HasBalanceDue() bool {
	return RoundCents(a.CurrentBalance) > 0
}

// AccountUpdate carries the editable fields of the account update screen.
type AccountUpdate struct {
	ActiveStatus    string  `json:"activeStatus"`
	CreditLimit     float64 `json:"creditLimit"`
	CashCreditLimit float64 `json:"cashCreditLimit"`
	GroupID         string  `json:"groupId"`
}

// Card is a credit card cross-referenced to one account.
type Card struct {
	CardNumber   string `json:"cardNumber" bson:"card_number"`
	AccountID    string `json:"accountId" bson:"account_id"`
	EmbossedName string `json:"embossedName" bson:"embossed_name"`
	ExpiryMonth  int    `json:"expiryMonth" bson:"expiry_month"`
	ExpiryYear   int    `json:"expiryYear" bson:"expiry_year"`
	ActiveStatus string `json:"activeStatus" bson:"active_status"`
	CVV          string `json:"-" bson:"cvv"`
}

// CardUpdate carries the editable fields of the card update screen.
type CardUpdate struct {
	EmbossedName string `json:"embossedName"`
	ExpiryMonth  int    `json:"expiryMonth"`
	ExpiryYear   int    `json:"expiryYear"`
	ActiveStatus string `json:"activeStatus"`
}

// Transaction is a posted card transaction (TRANSACT record).
type Transaction struct {
	TransactionID string    `json:"transactionId" bson:"transaction_id"`
	TypeCode      string    `json:"typeCode" bson:"type_code"`
	CategoryCode  int       `json:"categoryCode" bson:"category_code"`
	Source        string    `json:"source" bson:"source"`
	Description   string    `json:"description" bson:"description"`
	Amount        float64   `json:"amount" bson:"amount"`
	MerchantID    string    `json:"merchantId" bson:"merchant_id"`
	MerchantName  string    `json:"merchantName" bson:"merchant_name"`
	MerchantCity  string    `json:"merchantCity" bson:"merchant_city"`
	MerchantZip   string    `json:"merchantZip" bson:"merchant_zip"`
	CardNumber    string    `json:"cardNumber" bson:"card_number"`
	AccountID     string    `json:"accountId" bson:"account_id"`
	OriginatedAt  time.Time `json:"originatedAt" bson:"originated_at"`
	ProcessedAt   time.Time `json:"processedAt" bson:"processed_at"`
}

// Bill payment transaction attributes.
const (
	BillPaymentTypeCode     = "02"
	BillPaymentCategoryCode = 2
	BillPaymentSource       = "POS TERM"
	BillPaymentDescription  = "BILL PAYMENT - ONLINE"
	BillPaymentMerchantID   = "999999999"
	BillPaymentMerchantName = "BILL PAYMENT"
)

// Payment is the outcome of a bill payment.
type Payment struct {
	TransactionID string    `json:"transactionId"`
	AccountID     string    `json:"accountId"`
	Amount        float64   `json:"amount"`
	NewBalance    float64   `json:"newBalance"`
	ProcessedAt   time.Time `json:"processedAt"`
}

// Report types supported by the transaction report screen.
const (
	ReportMonthly = "monthly"
	ReportYearly  = "yearly"
	ReportCustom  = "custom"
)

// TransactionReport summarises transactions in a date range.
type TransactionReport struct {
	ReportType  string    `json:"reportType"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Count       int       `json:"count"`
	TotalAmount float64   `json:"totalAmount"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPage computes the page bookkeeping for a slice already cut to one page.
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// RoundCents rounds an amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
