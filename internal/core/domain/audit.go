package domain

import "time"

// AuditAction names a recorded user action.
type AuditAction string

const (
	AuditSignOn      AuditAction = "sign_on"
	AuditSignOff     AuditAction = "sign_off"
	AuditBillPayment AuditAction = "bill_payment"
)

// AuditEvent records a security or financial action taken by a user.
type AuditEvent struct {
	UserID     string
	Action     AuditAction
	Reference  string // transaction id or session id
	OccurredAt time.Time
}
