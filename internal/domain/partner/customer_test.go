package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates a valid customer", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, "cust-001", "Sharma Traders", CustomerTypeBusiness)
		require.NoError(t, err)
		assert.Equal(t, "CUST-001", customer.Code)
		assert.Equal(t, "Sharma Traders", customer.Name)
		assert.Equal(t, CustomerTypeBusiness, customer.Type)
		assert.Equal(t, CustomerStatusActive, customer.Status)
		assert.True(t, customer.TotalPurchases.IsZero())
		assert.True(t, customer.OutstandingBalance.IsZero())
		assert.Len(t, customer.GetDomainEvents(), 1)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewCustomer(tenantID, "", "Sharma Traders", CustomerTypeBusiness)
		assert.Error(t, err)
	})

	t.Run("rejects code with invalid characters", func(t *testing.T) {
		_, err := NewCustomer(tenantID, "cust 001!", "Sharma Traders", CustomerTypeBusiness)
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCustomer(tenantID, "CUST-001", "", CustomerTypeIndividual)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewCustomer(tenantID, "CUST-001", "Sharma Traders", CustomerType("government"))
		assert.Error(t, err)
	})
}

func TestCustomerContactAndAddresses(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "CUST-001", "Sharma Traders", CustomerTypeBusiness)
	require.NoError(t, err)

	t.Run("sets valid contact", func(t *testing.T) {
		require.NoError(t, customer.SetContact("Asha Sharma", "+91 98765 43210", "asha@sharmatraders.in"))
		assert.Equal(t, "Asha Sharma", customer.ContactName)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		assert.Error(t, customer.SetContact("", "", "not-an-email"))
	})

	t.Run("rejects bad phone", func(t *testing.T) {
		assert.Error(t, customer.SetContact("", "phone#1", ""))
	})

	t.Run("sets addresses and GSTIN", func(t *testing.T) {
		require.NoError(t, customer.SetAddresses("12 MG Road, Pune", "Warehouse 4, Chakan"))
		require.NoError(t, customer.SetGSTIN("27aapfu0939f1zv"))
		assert.Equal(t, "27AAPFU0939F1ZV", customer.GSTIN)
	})
}

func TestCustomerPurchaseLifecycle(t *testing.T) {
	newCustomer := func(t *testing.T) *Customer {
		c, err := NewCustomer(uuid.New(), "CUST-001", "Sharma Traders", CustomerTypeBusiness)
		require.NoError(t, err)
		return c
	}

	t.Run("record purchase accumulates totals", func(t *testing.T) {
		c := newCustomer(t)
		require.NoError(t, c.RecordPurchase(decimal.NewFromFloat(413.00), decimal.NewFromFloat(413.00)))
		require.NoError(t, c.RecordPurchase(decimal.NewFromFloat(100.00), decimal.NewFromFloat(40.00)))

		assert.True(t, c.TotalPurchases.Equal(decimal.NewFromFloat(513.00)))
		assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromFloat(453.00)))
	})

	t.Run("outstanding portion cannot exceed the total", func(t *testing.T) {
		c := newCustomer(t)
		assert.Error(t, c.RecordPurchase(decimal.NewFromInt(100), decimal.NewFromInt(150)))
	})

	t.Run("payment reduces outstanding only", func(t *testing.T) {
		c := newCustomer(t)
		require.NoError(t, c.RecordPurchase(decimal.NewFromFloat(413.00), decimal.NewFromFloat(413.00)))
		require.NoError(t, c.RecordPayment(decimal.NewFromFloat(413.00)))

		assert.True(t, c.TotalPurchases.Equal(decimal.NewFromFloat(413.00)))
		assert.True(t, c.OutstandingBalance.IsZero())
	})

	t.Run("payment cannot exceed outstanding", func(t *testing.T) {
		c := newCustomer(t)
		require.NoError(t, c.RecordPurchase(decimal.NewFromInt(100), decimal.NewFromInt(100)))
		assert.Error(t, c.RecordPayment(decimal.NewFromInt(101)))
	})

	t.Run("reverse purchase undoes the record", func(t *testing.T) {
		c := newCustomer(t)
		require.NoError(t, c.RecordPurchase(decimal.NewFromFloat(413.00), decimal.NewFromFloat(413.00)))
		require.NoError(t, c.ReversePurchase(decimal.NewFromFloat(413.00), decimal.NewFromFloat(413.00)))

		assert.True(t, c.TotalPurchases.IsZero())
		assert.True(t, c.OutstandingBalance.IsZero())
	})

	t.Run("reversal cannot exceed recorded purchases", func(t *testing.T) {
		c := newCustomer(t)
		require.NoError(t, c.RecordPurchase(decimal.NewFromInt(100), decimal.NewFromInt(100)))
		assert.Error(t, c.ReversePurchase(decimal.NewFromInt(200), decimal.NewFromInt(100)))
	})
}

func TestCustomerStatus(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "CUST-001", "Sharma Traders", CustomerTypeIndividual)
	require.NoError(t, err)

	assert.True(t, customer.IsActive())
	assert.Error(t, customer.Activate(), "already active")

	require.NoError(t, customer.Deactivate())
	assert.False(t, customer.IsActive())
	assert.Error(t, customer.Deactivate(), "already inactive")

	require.NoError(t, customer.Activate())
	assert.True(t, customer.IsActive())
}
