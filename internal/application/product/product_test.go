package product

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/cocomart/internal/domain/product"
)

// fakeProductRepo 内存商品仓储
type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{nextID: 1, products: make(map[uint]*product.Product)}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return product.ErrSKUDuplicate
		}
	}
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[p.ID]
	if !ok {
		return product.ErrProductNotFound
	}
	// 与MySQL实现一致:Update不触碰评分派生字段
	rating, count := stored.Rating, stored.ReviewCount
	cp := *p
	cp.Rating, cp.ReviewCount = rating, count
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.Rating = rating
	p.ReviewCount = reviewCount
	return nil
}

func (r *fakeProductRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return product.ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*product.Product
	for _, p := range r.products {
		if params.OnlyOn && !p.IsActive {
			continue
		}
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

func publishRequest() PublishProductRequest {
	return PublishProductRequest{
		Name: "青皮椰青", Description: "当季采摘,现开现喝",
		Category: "coconut", Price: 1200, Stock: 30, SKU: "COCO-100", Unit: "piece",
	}
}

// TestPublishProduct 测试发布商品
func TestPublishProduct(t *testing.T) {
	t.Run("正常发布", func(t *testing.T) {
		repo := newFakeProductRepo()
		uc := NewPublishProductUseCase(repo)

		p, err := uc.Execute(context.Background(), publishRequest())
		require.NoError(t, err)

		assert.NotZero(t, p.ID)
		assert.True(t, p.IsActive, "新商品默认上架")
		assert.Equal(t, 0.0, p.Rating, "新商品评分为0")
		assert.Equal(t, 0, p.ReviewCount)
	})

	t.Run("品类不合法", func(t *testing.T) {
		uc := NewPublishProductUseCase(newFakeProductRepo())
		req := publishRequest()
		req.Category = "electronics"

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, product.ErrInvalidCategory)
	})

	t.Run("价格异常", func(t *testing.T) {
		uc := NewPublishProductUseCase(newFakeProductRepo())
		for _, price := range []int64{0, -100} {
			req := publishRequest()
			req.Price = price
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, product.ErrInvalidPrice)
		}
	})

	t.Run("SKU重复", func(t *testing.T) {
		repo := newFakeProductRepo()
		uc := NewPublishProductUseCase(repo)

		_, err := uc.Execute(context.Background(), publishRequest())
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), publishRequest())
		assert.ErrorIs(t, err, product.ErrSKUDuplicate)
	})
}

// TestUpdateProduct 测试更新商品
func TestUpdateProduct(t *testing.T) {
	setup := func(t *testing.T) (*UpdateProductUseCase, *fakeProductRepo, uint) {
		t.Helper()
		repo := newFakeProductRepo()
		p, err := NewPublishProductUseCase(repo).Execute(context.Background(), publishRequest())
		require.NoError(t, err)
		return NewUpdateProductUseCase(repo), repo, p.ID
	}

	strPtr := func(s string) *string { return &s }
	int64Ptr := func(v int64) *int64 { return &v }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("部分字段更新", func(t *testing.T) {
		uc, _, id := setup(t)

		updated, err := uc.Execute(context.Background(), UpdateProductRequest{
			ProductID: id,
			Price:     int64Ptr(1500),
			IsActive:  boolPtr(false),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1500), updated.Price)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "青皮椰青", updated.Name, "未指定的字段不应变化")
	})

	t.Run("更新不触碰评分派生字段", func(t *testing.T) {
		uc, repo, id := setup(t)
		require.NoError(t, repo.UpdateRating(context.Background(), id, 4.5, 12))

		_, err := uc.Execute(context.Background(), UpdateProductRequest{
			ProductID: id, Price: int64Ptr(1300),
		})
		require.NoError(t, err)

		p, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 4.5, p.Rating)
		assert.Equal(t, 12, p.ReviewCount)
	})

	t.Run("品类不合法", func(t *testing.T) {
		uc, _, id := setup(t)
		_, err := uc.Execute(context.Background(), UpdateProductRequest{
			ProductID: id, Category: strPtr("furniture"),
		})
		assert.ErrorIs(t, err, product.ErrInvalidCategory)
	})

	t.Run("商品不存在", func(t *testing.T) {
		uc, _, _ := setup(t)
		_, err := uc.Execute(context.Background(), UpdateProductRequest{ProductID: 404})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})
}

// TestListProducts 测试商品列表查询
func TestListProducts(t *testing.T) {
	repo := newFakeProductRepo()
	publish := NewPublishProductUseCase(repo)

	req1 := publishRequest()
	_, err := publish.Execute(context.Background(), req1)
	require.NoError(t, err)

	req2 := publishRequest()
	req2.SKU = "OIL-200"
	req2.Category = "oil"
	p2, err := publish.Execute(context.Background(), req2)
	require.NoError(t, err)

	// 下架第二个商品
	off := false
	_, err = NewUpdateProductUseCase(repo).Execute(context.Background(), UpdateProductRequest{
		ProductID: p2.ID, IsActive: &off,
	})
	require.NoError(t, err)

	uc := NewListProductsUseCase(repo)

	t.Run("公开列表只含上架商品", func(t *testing.T) {
		products, total, err := uc.Execute(context.Background(), ListProductsRequest{OnlyOn: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.True(t, products[0].IsActive)
	})

	t.Run("后台列表含下架商品", func(t *testing.T) {
		_, total, err := uc.Execute(context.Background(), ListProductsRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("品类过滤", func(t *testing.T) {
		_, total, err := uc.Execute(context.Background(), ListProductsRequest{Category: "oil"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("品类不合法", func(t *testing.T) {
		_, _, err := uc.Execute(context.Background(), ListProductsRequest{Category: "toys"})
		assert.ErrorIs(t, err, product.ErrInvalidCategory)
	})
}
