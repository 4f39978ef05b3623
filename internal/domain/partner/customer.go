package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

// Customer is the aggregate root of the partner context. Besides contact
// details it carries two running figures maintained by the invoice
// lifecycle: lifetime purchases and the receivable still outstanding.
type Customer struct {
	shared.TenantAggregateRoot
	Code               string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name               string          `gorm:"type:varchar(200);not null"`
	Type               CustomerType    `gorm:"type:varchar(20);not null;default:'individual'"`
	Status             CustomerStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName        string          `gorm:"type:varchar(100)"`
	Phone              string          `gorm:"type:varchar(50);index"`
	Email              string          `gorm:"type:varchar(200);index"`
	BillingAddress     string          `gorm:"type:text"`
	ShippingAddress    string          `gorm:"type:text"`
	GSTIN              string          `gorm:"type:varchar(20)"`
	TotalPurchases     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes              string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string, customerType CustomerType) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateCustomerType(customerType); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Type:                customerType,
		Status:              CustomerStatusActive,
		TotalPurchases:      decimal.Zero,
		OutstandingBalance:  decimal.Zero,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}

	c.Name = name
	c.touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetContact sets the customer's contact information
func (c *Customer) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.Phone = phone
	c.Email = email
	c.touch()
	return nil
}

// SetAddresses sets the billing and shipping addresses
func (c *Customer) SetAddresses(billing, shipping string) error {
	if len(billing) > 500 || len(shipping) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	c.BillingAddress = billing
	c.ShippingAddress = shipping
	c.touch()
	return nil
}

// SetGSTIN sets the customer's GST identification number
func (c *Customer) SetGSTIN(gstin string) error {
	if gstin != "" && len(gstin) > 20 {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN cannot exceed 20 characters")
	}
	c.GSTIN = strings.ToUpper(gstin)
	c.touch()
	return nil
}

// RecordPurchase registers an issued invoice against the customer: the
// grand total joins lifetime purchases and the unpaid portion joins the
// outstanding receivable.
func (c *Customer) RecordPurchase(grandTotal, outstanding decimal.Decimal) error {
	if grandTotal.IsNegative() || outstanding.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase amounts cannot be negative")
	}
	if outstanding.GreaterThan(grandTotal) {
		return shared.NewDomainError("INVALID_AMOUNT", "Outstanding portion cannot exceed the purchase total")
	}

	c.TotalPurchases = c.TotalPurchases.Add(grandTotal)
	c.OutstandingBalance = c.OutstandingBalance.Add(outstanding)
	c.touch()
	return nil
}

// ReversePurchase undoes a previously recorded purchase, used when an
// invoice is cancelled or its financials are replaced. Amounts must match
// what RecordPurchase registered for that invoice.
func (c *Customer) ReversePurchase(grandTotal, outstanding decimal.Decimal) error {
	if grandTotal.IsNegative() || outstanding.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase amounts cannot be negative")
	}
	if grandTotal.GreaterThan(c.TotalPurchases) || outstanding.GreaterThan(c.OutstandingBalance) {
		return shared.NewDomainError("INVALID_REVERSAL", "Reversal exceeds recorded purchases")
	}

	c.TotalPurchases = c.TotalPurchases.Sub(grandTotal)
	c.OutstandingBalance = c.OutstandingBalance.Sub(outstanding)
	c.touch()
	return nil
}

// RecordPayment reduces the outstanding receivable by a settled amount
func (c *Customer) RecordPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(c.OutstandingBalance) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment exceeds outstanding balance")
	}

	c.OutstandingBalance = c.OutstandingBalance.Sub(amount)
	c.touch()
	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}
	c.Status = CustomerStatusActive
	c.touch()
	return nil
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.touch()
	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// HasOutstandingBalance returns true if the customer owes anything
func (c *Customer) HasOutstandingBalance() bool {
	return c.OutstandingBalance.IsPositive()
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Customer code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateCustomerType(t CustomerType) error {
	switch t {
	case CustomerTypeIndividual, CustomerTypeBusiness:
		return nil
	default:
		return shared.NewDomainError("INVALID_TYPE", "Customer type must be 'individual' or 'business'")
	}
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
