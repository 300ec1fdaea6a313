package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"
)

// Service runs every catalog operation inside its own unit of work.
type Service struct {
	NewUoW func() UnitOfWork
	Now    func() civil.Date
	Log    *zap.Logger
}

func NewService(newUoW func() UnitOfWork, log *zap.Logger) *Service {
	return &Service{
		NewUoW: newUoW,
		Now:    today,
		Log:    orNop(log),
	}
}

func today() civil.Date { return civil.DateOf(time.Now()) }

func (s *Service) AddProduct(ctx context.Context, in NewProduct) (Product, error) {
	if err := validateNew(in); err != nil {
		return Product{}, err
	}

	var out Product
	uow := s.NewUoW()
	err := Run(ctx, uow, func(repo Repository) error {
		if _, exists := repo.Get(in.SKU); exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, in.SKU)
		}

		p := Product{
			SKU:         in.SKU,
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Brand:       in.Brand,
			Category:    in.Category,
			Stock:       in.Stock,
			CreatedAt:   s.now(),
		}
		repo.Add(p)
		if err := uow.Commit(ctx); err != nil {
			return err
		}

		out = p
		return nil
	})
	if err != nil {
		return Product{}, err
	}

	s.log().Info("product added", zap.String("sku", out.SKU))
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, sku string) (Product, error) {
	var out Product
	err := Run(ctx, s.NewUoW(), func(repo Repository) error {
		p, ok := repo.Get(sku)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, sku)
		}
		out = p
		return nil
	})
	return out, err
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := Run(ctx, s.NewUoW(), func(repo Repository) error {
		out = repo.List()
		return nil
	})
	return out, err
}

func (s *Service) EditProduct(ctx context.Context, sku string, patch ProductPatch) (Product, error) {
	if err := validatePatch(patch); err != nil {
		return Product{}, err
	}

	var out Product
	uow := s.NewUoW()
	err := Run(ctx, uow, func(repo Repository) error {
		p, ok := repo.Get(sku)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, sku)
		}

		p = patch.apply(p)
		updated := s.now()
		p.UpdatedAt = &updated

		repo.Add(p)
		if err := uow.Commit(ctx); err != nil {
			return err
		}

		out = p
		return nil
	})
	if err != nil {
		return Product{}, err
	}

	s.log().Info("product edited", zap.String("sku", sku))
	return out, nil
}

func (s *Service) RemoveProduct(ctx context.Context, sku string) error {
	uow := s.NewUoW()
	err := Run(ctx, uow, func(repo Repository) error {
		p, ok := repo.Get(sku)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, sku)
		}
		repo.Remove(p)
		return uow.Commit(ctx)
	})
	if err != nil {
		return err
	}

	s.log().Info("product removed", zap.String("sku", sku))
	return nil
}

func (s *Service) now() civil.Date {
	if s.Now == nil {
		return today()
	}
	return s.Now()
}

func (s *Service) log() *zap.Logger { return orNop(s.Log) }

func validateNew(in NewProduct) error {
	if strings.TrimSpace(in.SKU) == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if err := validateText(in.SKU, in.Name, in.Description, in.Brand, in.Category); err != nil {
		return err
	}
	if err := validatePrice(in.Price); err != nil {
		return err
	}
	return validateStock(in.Stock)
}

func validatePatch(p ProductPatch) error {
	for _, v := range []*string{p.Name, p.Description, p.Brand, p.Category} {
		if v == nil {
			continue
		}
		if err := validateText(*v); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Stock != nil {
		return validateStock(*p.Stock)
	}
	return nil
}

// validateText refuses carriage returns, which the catalog file cannot
// store. Line breaks must be sent as "\n".
func validateText(vs ...string) error {
	for _, v := range vs {
		if strings.ContainsRune(v, '\r') {
			return fmt.Errorf("%w: text must not contain carriage returns", ErrInvalidInput)
		}
	}
	return nil
}

func validatePrice(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
	}
	return nil
}

func validateStock(v int) error {
	if v < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return nil
}
