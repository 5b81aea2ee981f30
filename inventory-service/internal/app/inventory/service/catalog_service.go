package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/entity"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/logger"

	"github.com/google/uuid"
)

const categoriesCacheKey = "categories:all"

// CatalogService - справочники: категории (pgx + кеш Redis), поставщики, валюты
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	store        repository.Store
	cache        util.Cache
	categoryTTL  time.Duration
}

// NewCatalogService создает сервис справочников с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	store repository.Store,
	cache util.Cache,
	categoryTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		store:        store,
		cache:        cache,
		categoryTTL:  categoryTTL,
	}
}

// === CATEGORIES ===

func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, newValidationError("name", "required")
	}

	category := &entity.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Icon:      req.Icon,
		Color:     req.Color,
		ParentID:  req.ParentID,
		CreatedAt: time.Now(),
	}

	if err := s.checkParent(ctx, category.ID, req.ParentID); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, translate("create category", err)
	}

	s.invalidateCategories(ctx)
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get category", err)
	}
	return category, nil
}

// GetAllCategories сначала смотрит в кеш, при промахе читает БД и кеширует
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	found, err := s.cache.GetJSON(ctx, categoriesCacheKey, &categories)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read categories cache")
	}
	if found {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, translate("get categories", err)
	}

	if err := s.cache.SetJSON(ctx, categoriesCacheKey, categories, s.categoryTTL); err != nil {
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// GetCategoryTree отдаёт категории деревом
func (s *CatalogService) GetCategoryTree(ctx context.Context) ([]*entity.CategoryNode, error) {
	categories, err := s.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(categories), nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.CategoryRequest) (*entity.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, newValidationError("name", "required")
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get category", err)
	}

	if err := s.checkParent(ctx, id, req.ParentID); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Icon = req.Icon
	category.Color = req.Color
	category.ParentID = req.ParentID

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, translate("update category", err)
	}

	s.invalidateCategories(ctx)
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return translate("delete category", err)
	}

	s.invalidateCategories(ctx)
	return nil
}

// checkParent запрещает циклы: родитель не может быть самой категорией или её потомком.
// Цепочка предков родителя проходится до корня; встретить в ней id = цикл.
func (s *CatalogService) checkParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return ErrCategoryCycle
	}

	ancestors, err := s.categoryRepo.AncestorIDs(ctx, *parentID)
	if err != nil {
		return translate("walk category ancestors", err)
	}
	if len(ancestors) == 0 {
		return newValidationError("parent_id", "category does not exist")
	}

	for _, ancestor := range ancestors {
		if ancestor == id {
			return ErrCategoryCycle
		}
	}
	return nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}

// BuildCategoryTree собирает дерево по parent_id.
// Категории с несуществующим родителем становятся корнями; узлы сортируются по имени.
func BuildCategoryTree(categories []entity.Category) []*entity.CategoryNode {
	nodes := make(map[uuid.UUID]*entity.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &entity.CategoryNode{Category: c, Children: []*entity.CategoryNode{}}
	}

	roots := []*entity.CategoryNode{}
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && *c.ParentID != c.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	var sortNodes func(list []*entity.CategoryNode)
	sortNodes = func(list []*entity.CategoryNode) {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		for _, n := range list {
			sortNodes(n.Children)
		}
	}
	sortNodes(roots)

	return roots
}

// === PROVIDERS ===

func validateProvider(req *entity.ProviderRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return newValidationError("name", "required")
	}
	return nil
}

func (s *CatalogService) CreateProvider(ctx context.Context, req *entity.ProviderRequest) (*entity.Provider, error) {
	if err := validateProvider(req); err != nil {
		return nil, err
	}

	provider := &entity.Provider{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Notes:       req.Notes,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Providers().Create(ctx, provider); err != nil {
		return nil, translate("create provider", err)
	}
	return provider, nil
}

func (s *CatalogService) GetProvider(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	provider, err := s.store.Providers().GetByID(ctx, id)
	if err != nil {
		return nil, translate("get provider", err)
	}
	return provider, nil
}

func (s *CatalogService) ListProviders(ctx context.Context) ([]entity.Provider, error) {
	providers, err := s.store.Providers().GetAll(ctx)
	if err != nil {
		return nil, translate("list providers", err)
	}
	return providers, nil
}

func (s *CatalogService) UpdateProvider(ctx context.Context, id uuid.UUID, req *entity.ProviderRequest) (*entity.Provider, error) {
	if err := validateProvider(req); err != nil {
		return nil, err
	}

	provider, err := s.store.Providers().GetByID(ctx, id)
	if err != nil {
		return nil, translate("get provider", err)
	}

	provider.Name = strings.TrimSpace(req.Name)
	provider.ContactName = req.ContactName
	provider.Phone = req.Phone
	provider.Email = req.Email
	provider.Notes = req.Notes

	if err := s.store.Providers().Update(ctx, provider); err != nil {
		return nil, translate("update provider", err)
	}
	return provider, nil
}

// DeleteProvider запрещён, пока на поставщика ссылается журнал инвестиций
func (s *CatalogService) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		count, err := tx.Investments().CountByProvider(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrProviderInUse
		}
		return tx.Providers().Delete(ctx, id)
	})
	return translate("delete provider", err)
}

// === CURRENCIES ===

func (s *CatalogService) CreateCurrency(ctx context.Context, req *entity.CurrencyRequest) (*entity.Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	errs := fieldErrors{}
	if len(code) != 3 {
		errs.add("code", "must be a 3-letter ISO code")
	}
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "required")
	}
	if strings.TrimSpace(req.Symbol) == "" {
		errs.add("symbol", "required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	currency := &entity.Currency{
		ID:     uuid.New(),
		Code:   code,
		Name:   strings.TrimSpace(req.Name),
		Symbol: strings.TrimSpace(req.Symbol),
	}
	if err := s.store.Currencies().Create(ctx, currency); err != nil {
		return nil, translate("create currency", err)
	}
	return currency, nil
}

func (s *CatalogService) ListCurrencies(ctx context.Context) ([]entity.Currency, error) {
	currencies, err := s.store.Currencies().GetAll(ctx)
	if err != nil {
		return nil, translate("list currencies", err)
	}
	return currencies, nil
}

// DeleteCurrency запрещён, пока валюта используется товарами (включая архивные)
func (s *CatalogService) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		count, err := tx.Products().CountByCurrency(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCurrencyInUse
		}
		return tx.Currencies().Delete(ctx, id)
	})
	return translate("delete currency", err)
}
