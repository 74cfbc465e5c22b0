package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{Title: "A", Code: "S1", Price: decimal.NewFromInt(10), Stock: 5}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("no id")
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get: %v", err)
	}

	p.Price = decimal.NewFromInt(12)
	if err := store.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := domain.Product{Title: "A", Code: "DUP"}
	if err := store.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	b := domain.Product{Title: "B", Code: "DUP"}
	if err := store.Create(ctx, &b); domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStore_GetByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := domain.Product{Title: "A", Code: "A"}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}
	found, err := store.GetByIDs(ctx, []string{p.ID, "gone"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 product, got %d", len(found))
	}
	if _, ok := found["gone"]; ok {
		t.Fatalf("missing id must not be present")
	}
}

func TestMemoryStore_DecrementStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := domain.Product{Title: "A", Code: "A", Stock: 5}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	ok, err := store.DecrementStock(ctx, p.ID, 3)
	if err != nil || !ok {
		t.Fatalf("decrement: ok=%v err=%v", ok, err)
	}
	ok, err = store.DecrementStock(ctx, p.ID, 3)
	if err != nil || ok {
		t.Fatalf("decrement below zero must be refused: ok=%v err=%v", ok, err)
	}
	ok, _ = store.DecrementStock(ctx, "missing", 1)
	if ok {
		t.Fatalf("missing product must not decrement")
	}

	got, _ := store.GetByID(ctx, p.ID)
	if got.Stock != 2 {
		t.Fatalf("stock expected 2, got %v", got.Stock)
	}
}

func TestMemoryStore_DecrementStockConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := domain.Product{Title: "A", Code: "A", Stock: 10}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.DecrementStock(ctx, p.ID, 1)
			if err != nil {
				t.Errorf("decrement: %v", err)
				return
			}
			if ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 10 {
		t.Fatalf("expected 10 successful decrements, got %d", won)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.Stock != 0 {
		t.Fatalf("stock expected 0, got %v", got.Stock)
	}
}

func TestMemoryTx_CartUpdateInTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx := NewMemoryTx(store)
	carts := NewMemoryCarts(store)

	p := domain.Product{Title: "A", Code: "S1", Price: decimal.NewFromInt(10), Stock: 5}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}
	c := domain.Cart{}
	if err := carts.Create(ctx, &c); err != nil {
		t.Fatal(err)
	}

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		cur, err := carts.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		items := append(cur.Items, domain.LineItem{ProductID: p.ID, Quantity: 3})
		// вложенная транзакция не должна заблокироваться
		return tx.WithTransaction(ctx, func(ctx context.Context) error {
			return carts.ReplaceItems(ctx, c.ID, items)
		})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, _ := carts.GetByID(ctx, c.ID)
	if len(got.Items) != 1 || got.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", got.Items)
	}
}

func TestMemoryCarts_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	carts := NewMemoryCarts(store)
	c := domain.Cart{Items: []domain.LineItem{{ProductID: "p", Quantity: 1}}}
	if err := carts.Create(ctx, &c); err != nil {
		t.Fatal(err)
	}
	got, _ := carts.GetByID(ctx, c.ID)
	got.Items[0].Quantity = 99

	again, _ := carts.GetByID(ctx, c.ID)
	if again.Items[0].Quantity != 1 {
		t.Fatalf("stored cart mutated through returned copy")
	}
}

func TestMemoryTickets_CodeUnique(t *testing.T) {
	ctx := context.Background()
	tickets := NewMemoryTickets(NewMemoryStore())
	a := domain.Ticket{Code: "T-1-1", Purchaser: "a@x.io", Amount: decimal.NewFromInt(1)}
	if err := tickets.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	b := domain.Ticket{Code: "T-1-1", Purchaser: "b@x.io"}
	if err := tickets.Create(ctx, &b); domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	list, _ := tickets.ListByPurchaser(ctx, "a@x.io")
	if len(list) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(list))
	}
}

func TestList_Filtering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	add := func(n, category string, price int64, stock int) {
		p := domain.Product{Title: n, Code: n, Category: category, Price: decimal.NewFromInt(price), Stock: stock}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	add("Aspirin", "pharma", 100, 1)
	add("Paracetamol", "pharma", 50, 0)
	add("Ibuprofen", "other", 150, 1)

	page, _ := store.List(ctx, ProductFilter{Query: "a"})
	if len(page.Docs) != 2 {
		t.Fatalf("query filter: expected 2, got %d", len(page.Docs))
	}

	min := decimal.NewFromInt(100)
	page, _ = store.List(ctx, ProductFilter{MinPrice: &min})
	for _, p := range page.Docs {
		if p.Price.LessThan(min) {
			t.Fatalf("min filter fail")
		}
	}

	max := decimal.NewFromInt(100)
	page, _ = store.List(ctx, ProductFilter{MaxPrice: &max})
	for _, p := range page.Docs {
		if p.Price.GreaterThan(max) {
			t.Fatalf("max filter fail")
		}
	}

	page, _ = store.List(ctx, ProductFilter{Category: "PHARMA", AvailableOnly: true})
	if len(page.Docs) != 1 || page.Docs[0].Title != "Aspirin" {
		t.Fatalf("category/available filter fail: %+v", page.Docs)
	}

	page, _ = store.List(ctx, ProductFilter{Sort: SortPriceDesc})
	if page.Docs[0].Title != "Ibuprofen" || page.Docs[2].Title != "Paracetamol" {
		t.Fatalf("sort desc fail")
	}
}

func TestList_Paging(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, code := range []string{"a", "b", "c", "d", "e"} {
		p := domain.Product{Title: code, Code: code}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}

	page, _ := store.List(ctx, ProductFilter{Limit: 2, Page: 2})
	if page.Total != 5 || page.TotalPages != 3 {
		t.Fatalf("totals: %+v", page)
	}
	if !page.HasPrev || !page.HasNext {
		t.Fatalf("prev/next flags: %+v", page)
	}
	if len(page.Docs) != 2 || page.Docs[0].Title != "c" {
		t.Fatalf("expected creation order on page 2, got %+v", page.Docs)
	}

	page, _ = store.List(ctx, ProductFilter{Limit: 2, Page: 9})
	if len(page.Docs) != 0 || page.HasNext {
		t.Fatalf("out of range page: %+v", page)
	}
}
