package model

import "github.com/google/uuid"

type PaymentType string

const (
	PaymentTypePayment PaymentType = "Payment"
	PaymentTypeRefund  PaymentType = "Refund"
)

// Payment records money movement against an application. Amounts are stored
// in minor units to avoid float rounding on currency.
type Payment struct {
	BaseEntity
	ApplicationID uuid.UUID    `gorm:"type:uuid;index" json:"application_id"`
	Application   *Application `gorm:"foreignKey:ApplicationID" json:"-"`
	MadeByID      uuid.UUID    `gorm:"type:uuid;index" json:"made_by_id"`
	MadeBy        *User        `gorm:"foreignKey:MadeByID" json:"-"`

	Type        PaymentType `gorm:"size:10;default:'Payment'" json:"type"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `gorm:"size:3;default:'USD'" json:"currency"`

	TxnRef            *string `gorm:"size:100;index" json:"txn_ref,omitempty"`
	OrderInfo         *string `gorm:"size:255" json:"order_info,omitempty"`
	GatewayTxnNo      *string `gorm:"size:100" json:"gateway_txn_no,omitempty"`
	BankCode          *string `gorm:"size:20" json:"bank_code,omitempty"`
	CardType          *string `gorm:"size:20" json:"card_type,omitempty"`
	ResponseCode      *string `gorm:"size:10" json:"response_code,omitempty"`
	TransactionStatus *string `gorm:"size:10" json:"transaction_status,omitempty"`
}

func (Payment) TableName() string { return "payments" }
