package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// ID decoding
// ============================================================================

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"string", `"abc-1"`, "abc-1"},
		{"integer", `42`, "42"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
}

func TestID_MarshalsAsString(t *testing.T) {
	b, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: "7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7"}`, string(b))
}

// ============================================================================
// Product
// ============================================================================

func TestProduct_DecodesBackendPayload(t *testing.T) {
	payload := `{
		"id": 12,
		"title": "Linen Shirt",
		"brand": "Acme",
		"category": "Men's Clothing",
		"sku": "LS-12",
		"price": 19.99,
		"originalPrice": "24.50",
		"thumbnails": ["a.jpg", "b.jpg"],
		"availability": "In Stock",
		"quantity": 3
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	assert.Equal(t, ID("12"), p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("19.99")))
	require.NotNil(t, p.OriginalPrice)
	assert.True(t, p.Discounted())
	require.NotNil(t, p.Quantity)
	assert.Equal(t, 3, *p.Quantity)
	assert.Nil(t, p.Rating)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Thumbnails)
}

func numericMoney(t *testing.T, on bool) {
	t.Helper()
	prev := decimal.MarshalJSONWithoutQuotes
	decimal.MarshalJSONWithoutQuotes = on
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = prev })
}

func TestProduct_PriceMarshalling(t *testing.T) {
	p := Product{ID: "1", Price: decimal.RequireFromString("9.5")}

	numericMoney(t, false)
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":"9.5"`, "importing domain must not change decimal encoding")

	numericMoney(t, true)
	b, err = json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":9.5`)
}

func TestProduct_InStock(t *testing.T) {
	zero, five := 0, 5

	assert.True(t, (&Product{Availability: InStock}).InStock())
	assert.True(t, (&Product{Availability: InStock, Quantity: &five}).InStock())
	assert.False(t, (&Product{Availability: InStock, Quantity: &zero}).InStock())
	assert.False(t, (&Product{Availability: OutOfStock, Quantity: &five}).InStock())
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_ItemByProduct(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{Product: Product{ID: "1"}, Quantity: 2},
		{Product: Product{ID: "2"}, Quantity: 1},
	}}

	item, ok := c.ItemByProduct("2")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)

	_, ok = c.ItemByProduct("3")
	assert.False(t, ok)

	var nilCart *Cart
	_, ok = nilCart.ItemByProduct("1")
	assert.False(t, ok)
}

// ============================================================================
// Order status transitions
// ============================================================================

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(string(s)), "expected %q to be valid", s)
	}
	assert.False(t, IsValidStatus("pending"))
	assert.False(t, IsValidStatus(""))
}

func TestOrder_OwnedBy(t *testing.T) {
	o := &Order{UserID: "u1"}
	assert.True(t, o.OwnedBy("u1"))
	assert.False(t, o.OwnedBy("u2"))
	assert.False(t, (&Order{}).OwnedBy(""))
}

// ============================================================================
// Audit entries
// ============================================================================

func TestNewAuditEntry(t *testing.T) {
	e := NewAuditEntry("admin-1", "a@example.com", ActionProductDeleted, ResourceProduct, "p-9", nil)

	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.NotNil(t, e.Details)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, "UTC", e.CreatedAt.Location().String())
}
