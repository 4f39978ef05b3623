package accounting

import (
	"strings"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType classifies a chart-of-accounts node
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// Well-known account codes. Accounts are created lazily the first time a
// posting needs them (see AccountRepository.GetOrCreate).
const (
	AccountCodeCash         = "1000"
	AccountCodeBank         = "1010"
	AccountCodeUPIClearing  = "1020"
	AccountCodeCardClearing = "1030"
	AccountCodeReceivable   = "1100"
	AccountCodeInventory    = "1200"
	AccountCodeTaxPayable   = "2100"
	AccountCodeSales        = "4000"
	AccountCodeCOGS         = "5000"
)

// Account is a chart-of-accounts node, unique per (tenant, code).
// Parents form a tree; the registry never deletes an account that has
// postings (enforced at the account-deletion entry point, not here).
type Account struct {
	shared.TenantAggregateRoot
	Code     string      `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_tenant_code,priority:2"`
	Name     string      `gorm:"type:varchar(100);not null"`
	Type     AccountType `gorm:"type:varchar(20);not null"`
	ParentID *uuid.UUID  `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "ledger_accounts"
}

// NewAccount creates a new ledger account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Unknown account type: "+string(accountType))
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
	}, nil
}

// SetParent links the account under a parent node
func (a *Account) SetParent(parentID uuid.UUID) error {
	if parentID == a.ID {
		return shared.NewDomainError("INVALID_PARENT", "Account cannot be its own parent")
	}
	a.ParentID = &parentID
	return nil
}

// SettlementAccountForMethod maps a payment method to the asset account that
// receives the settlement. Cash, bank, UPI and card each settle to a
// distinct account.
func SettlementAccountForMethod(method string) (code, name string, err error) {
	switch strings.ToLower(method) {
	case "cash":
		return AccountCodeCash, "Cash", nil
	case "bank", "bank_transfer", "cheque":
		return AccountCodeBank, "Bank", nil
	case "upi":
		return AccountCodeUPIClearing, "UPI Clearing", nil
	case "card":
		return AccountCodeCardClearing, "Card Clearing", nil
	}
	return "", "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+method)
}
