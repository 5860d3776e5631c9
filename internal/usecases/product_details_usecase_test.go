package usecases

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instadm/internal/entities"
)

func TestProductDetailsCreate(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewProductDetailsUsecase(f.stores.ProductDetails, f.stores.Companies)
	ctx := context.Background()

	d, err := uc.Create(ctx, c.InstagramID, "  Teeth whitening: 1.5M IDR  ")
	require.NoError(t, err)
	assert.Equal(t, "Teeth whitening: 1.5M IDR", d.Details)

	_, err = uc.Create(ctx, "404", "x")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	_, err = uc.Create(ctx, c.InstagramID, "   ")
	assert.Contains(t, fieldNames(t, err), "details")

	_, err = uc.Create(ctx, "", "x")
	assert.Contains(t, fieldNames(t, err), "company_instagram_id")

	// limit counts characters, not bytes
	_, err = uc.Create(ctx, c.InstagramID, strings.Repeat("é", entities.MaxProductDetailsLength))
	assert.NoError(t, err)
	_, err = uc.Create(ctx, c.InstagramID, strings.Repeat("a", entities.MaxProductDetailsLength+1))
	assert.Contains(t, fieldNames(t, err), "details")
}

func TestProductDetailsList_Pagination(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	other := f.signup(t, "Other", "owner@other.test")
	uc := NewProductDetailsUsecase(f.stores.ProductDetails, f.stores.Companies)
	ctx := context.Background()

	for i := range 25 {
		_, err := uc.Create(ctx, c.InstagramID, fmt.Sprintf("item %02d", i))
		require.NoError(t, err)
	}
	_, err := uc.Create(ctx, other.InstagramID, "not mine")
	require.NoError(t, err)

	items, p, err := uc.List(ctx, c.InstagramID, ListParams{})
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 25, TotalPages: 3}, p)
	assert.Equal(t, "item 24", items[0].Details)

	items, p, err = uc.List(ctx, c.InstagramID, ListParams{Page: 3, Limit: 10, SortOrder: "asc"})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, "item 20", items[0].Details)
	assert.Equal(t, 3, p.Page)

	_, p, err = uc.List(ctx, c.InstagramID, ListParams{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, p.Limit)

	_, _, err = uc.List(ctx, c.InstagramID, ListParams{SortBy: "details"})
	assert.True(t, entities.IsValidation(err))
	_, _, err = uc.List(ctx, c.InstagramID, ListParams{SortOrder: "sideways"})
	assert.True(t, entities.IsValidation(err))
	_, _, err = uc.List(ctx, "", ListParams{})
	assert.True(t, entities.IsValidation(err))
}

func TestNormalizePage_HugePageDoesNotOverflow(t *testing.T) {
	page, err := NormalizePage(ListParams{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.Offset(), 0)

	page, err = NormalizePage(ListParams{Page: 100000000000000001})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.Offset(), 0)
}

func TestProductDetailsImport(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewProductDetailsUsecase(f.stores.ProductDetails, f.stores.Companies)
	ctx := context.Background()

	csv := "details,price\nScaling,200000\n\n\"Braces, ceramic\",9000000\n"
	n, err := uc.Import(ctx, c, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, _, err := uc.List(ctx, c.InstagramID, ListParams{SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Scaling", items[0].Details)
	assert.Equal(t, "Braces, ceramic", items[1].Details)
}

func TestProductDetailsImport_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	c := f.signup(t, "Acme", "owner@acme.test")
	uc := NewProductDetailsUsecase(f.stores.ProductDetails, f.stores.Companies)
	ctx := context.Background()

	csv := "ok row\n" + strings.Repeat("x", entities.MaxProductDetailsLength+1) + "\n"
	_, err := uc.Import(ctx, c, strings.NewReader(csv))
	assert.Equal(t, []string{"row 2"}, fieldNames(t, err))

	_, p, err := uc.List(ctx, c.InstagramID, ListParams{})
	require.NoError(t, err)
	assert.Zero(t, p.Total)

	_, err = uc.Import(ctx, c, strings.NewReader("details\n\n"))
	assert.True(t, entities.IsValidation(err))
}
