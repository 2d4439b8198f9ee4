package customer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BizRecords/internal/customer"
	"BizRecords/internal/recordstore"
)

func newDirectory(t *testing.T, b recordstore.Backend) *customer.Directory {
	t.Helper()
	d, err := customer.Open(context.Background(), b, nil)
	require.NoError(t, err)
	return d
}

func TestDirectory_AddGeneratesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	d := newDirectory(t, recordstore.NewMemBackend())

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c, err := d.Add(ctx, customer.Customer{ID: "ignored", Name: "Asha"})
		require.NoError(t, err)
		assert.Len(t, c.ID, 8)
		assert.NotEqual(t, "ignored", c.ID)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, d.List(), 50)
}

func TestDirectory_UpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	d := newDirectory(t, recordstore.NewMemBackend())

	c, err := d.Add(ctx, customer.Customer{Name: "Asha", Address: "1 Road", Mobile: "555", Email: "a@example.com"})
	require.NoError(t, err)

	found, err := d.Update(ctx, customer.Customer{ID: c.ID, Name: "Asha K", Address: "2 Road", Mobile: "556", Email: "ak@example.com"})
	require.NoError(t, err)
	require.True(t, found)

	got, ok := d.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, customer.Customer{ID: c.ID, Name: "Asha K", Address: "2 Road", Mobile: "556", Email: "ak@example.com"}, got)
}

func TestDirectory_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newDirectory(t, recordstore.NewMemBackend())

	found, err := d.Update(ctx, customer.Customer{ID: "zzzz", Name: "x"})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = d.Delete(ctx, "zzzz")
	require.NoError(t, err)
	assert.False(t, found)

	_, ok := d.Get("zzzz")
	assert.False(t, ok)
}

func TestDirectory_PersistThenReloadIsIdentical(t *testing.T) {
	ctx := context.Background()
	b := recordstore.NewMemBackend()
	d := newDirectory(t, b)

	a, err := d.Add(ctx, customer.Customer{Name: "Asha", Email: "a@example.com"})
	require.NoError(t, err)
	bc, err := d.Add(ctx, customer.Customer{Name: "Ben"})
	require.NoError(t, err)
	_, err = d.Add(ctx, customer.Customer{Name: "Chen"})
	require.NoError(t, err)

	_, err = d.Update(ctx, customer.Customer{ID: a.ID, Name: "Asha K"})
	require.NoError(t, err)
	_, err = d.Delete(ctx, bc.ID)
	require.NoError(t, err)

	reloaded := newDirectory(t, b)
	assert.Equal(t, d.List(), reloaded.List())
	assert.Len(t, reloaded.List(), 2)
}

func TestDirectory_SecondDeleteIsNotFound(t *testing.T) {
	ctx := context.Background()
	d := newDirectory(t, recordstore.NewMemBackend())

	c, err := d.Add(ctx, customer.Customer{Name: "Asha"})
	require.NoError(t, err)

	found, err := d.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = d.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDirectory_OpenToleratesNumericIDs(t *testing.T) {
	ctx := context.Background()
	b := recordstore.NewMemBackend()
	require.NoError(t, b.Write(ctx, customer.Collection, []byte(`[{"id": 1234, "name": "Asha"}]`)))

	d, err := customer.Open(ctx, b, nil)
	require.NoError(t, err)

	got, ok := d.Get("1234")
	require.True(t, ok)
	assert.Equal(t, "Asha", got.Name)
}
