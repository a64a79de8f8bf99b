package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/mapper"
	"github.com/IGDevX/marche-conclu-shop-service/internal/relay"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/pagination"
)

// ProductRepositories groups the repositories the product service reads.
type ProductRepositories struct {
	Products       repository.ProductRepository
	Currencies     repository.CurrencyRepository
	Units          repository.UnitRepository
	Shelves        repository.ShelfRepository
	Categories     repository.CategoryRepository
	Certifications repository.CertificationRepository
}

// ProductService implements the product write path. Every mutation runs in
// a transaction and records a product event, which the relay hands to the
// indexer once the transaction commits.
type ProductService struct {
	repos  ProductRepositories
	tx     Transactor
	images storage.Store
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repos ProductRepositories, tx Transactor, images storage.Store, logger *slog.Logger) *ProductService {
	return &ProductService{repos: repos, tx: tx, images: images, logger: logger}
}

// List returns one page of live or soft-deleted products from the store.
func (s *ProductService) List(ctx context.Context, deleted bool, p pagination.Params) (pagination.Page[domain.ProductResponse], error) {
	products, total, err := s.repos.Products.List(ctx, repository.ProductFilter{Deleted: &deleted, Page: p.Page, Size: p.Size})
	if err != nil {
		return pagination.Page[domain.ProductResponse]{}, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *mapper.ProductResponse(&products[i]))
	}
	return pagination.NewPage(out, total, p), nil
}

// Get returns a live product.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.ProductResponse, error) {
	p, err := s.repos.Products.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return mapper.ProductResponse(p), nil
}

// Create validates every reference, inserts the product and its
// certifications, and records the change.
func (s *ProductService) Create(ctx context.Context, in *domain.ProductInput) (*domain.ProductResponse, error) {
	var created *domain.Product
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, in); err != nil {
			return err
		}
		p := &domain.Product{}
		applyInput(p, in)
		if err := s.repos.Products.Create(ctx, p); err != nil {
			return err
		}
		if err := s.repos.Products.SetCertifications(ctx, p.ID, uniqueIDs(in.CertificationIDs)); err != nil {
			return err
		}
		var err error
		if created, err = s.repos.Products.GetByID(ctx, p.ID, false); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Updated(p.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", created.ID),
		slog.Int64("producer_id", created.ProducerID),
	)
	return mapper.ProductResponse(created), nil
}

// Update replaces a live product. Certifications are replaced only when
// in.CertificationIDs is not nil.
func (s *ProductService) Update(ctx context.Context, id int64, in *domain.ProductInput) (*domain.ProductResponse, error) {
	var updated *domain.Product
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repos.Products.GetByID(ctx, id, false)
		if err != nil {
			return err
		}
		if err := s.checkReferences(ctx, in); err != nil {
			return err
		}
		applyInput(p, in)
		if err := s.repos.Products.Update(ctx, p); err != nil {
			return err
		}
		if in.CertificationIDs != nil {
			if err := s.repos.Products.SetCertifications(ctx, id, uniqueIDs(in.CertificationIDs)); err != nil {
				return err
			}
		}
		if updated, err = s.repos.Products.GetByID(ctx, id, false); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Updated(id))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product updated", slog.Int64("product_id", id))
	return mapper.ProductResponse(updated), nil
}

// Delete soft-deletes a product. Its document stays in the index, flagged.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := softDelete(ctx, s.repos.Products, id); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Updated(id))
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product soft deleted", slog.Int64("product_id", id))
	return nil
}

// Restore brings back a soft-deleted product.
func (s *ProductService) Restore(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := restore(ctx, s.repos.Products, "product", id, func(p *domain.Product) bool { return p.IsDeleted }); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Updated(id))
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "product restored", slog.Int64("product_id", id))
	return nil
}

// HardDelete removes the product row, then its document and its image.
func (s *ProductService) HardDelete(ctx context.Context, id int64) error {
	var imageURL *string
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repos.Products.GetByID(ctx, id, true)
		if err != nil {
			return err
		}
		imageURL = p.MainImageURL
		if err := s.repos.Products.HardDelete(ctx, id); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Deleted(id))
	})
	if err != nil {
		return err
	}

	s.removeImage(ctx, id, imageURL)
	s.logger.InfoContext(ctx, "product hard deleted", slog.Int64("product_id", id))
	return nil
}

// UploadImage stores a new main image for a live product and replaces the
// previous one.
func (s *ProductService) UploadImage(ctx context.Context, id int64, in *storage.UploadInput) (*domain.ProductResponse, error) {
	if _, err := s.repos.Products.GetByID(ctx, id, false); err != nil {
		return nil, err
	}
	res, err := s.images.Upload(ctx, in)
	if err != nil {
		return nil, err
	}

	var previous *string
	var updated *domain.Product
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repos.Products.GetByID(ctx, id, false)
		if err != nil {
			return err
		}
		previous = p.MainImageURL
		if err := s.repos.Products.SetImage(ctx, id, &res.ID, &res.URL); err != nil {
			return err
		}
		if updated, err = s.repos.Products.GetByID(ctx, id, false); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Updated(id))
	})
	if err != nil {
		s.removeImage(ctx, id, &res.URL)
		return nil, err
	}

	s.removeImage(ctx, id, previous)
	s.logger.InfoContext(ctx, "product image uploaded",
		slog.Int64("product_id", id),
		slog.String("key", res.Key),
	)
	return mapper.ProductResponse(updated), nil
}

// DeleteImage clears the main image of a live product.
func (s *ProductService) DeleteImage(ctx context.Context, id int64) error {
	var previous *string
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repos.Products.GetByID(ctx, id, false)
		if err != nil {
			return err
		}
		previous = p.MainImageURL
		if err := s.repos.Products.SetImage(ctx, id, nil, nil); err != nil {
			return err
		}
		return relay.Record(ctx, relay.Updated(id))
	})
	if err != nil {
		return err
	}
	s.removeImage(ctx, id, previous)
	return nil
}

// removeImage deletes a stored image. Failures leave an orphaned blob and are
// only logged.
func (s *ProductService) removeImage(ctx context.Context, productID int64, url *string) {
	if url == nil || s.images == nil {
		return
	}
	key, ok := storage.KeyFromURL(*url)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete product image",
			slog.Int64("product_id", productID),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// checkReferences verifies that every referenced row exists and is live.
func (s *ProductService) checkReferences(ctx context.Context, in *domain.ProductInput) error {
	if _, err := s.repos.Currencies.GetByID(ctx, in.CurrencyID, false); err != nil {
		return err
	}
	if _, err := s.repos.Units.GetByID(ctx, in.UnitID, false); err != nil {
		return err
	}
	if _, err := s.repos.Shelves.GetByID(ctx, in.ShelfID, false); err != nil {
		return err
	}
	if in.CategoryID != nil {
		if _, err := s.repos.Categories.GetByID(ctx, *in.CategoryID, false); err != nil {
			return err
		}
	}

	ids := uniqueIDs(in.CertificationIDs)
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repos.Certifications.GetLiveByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	for _, id := range ids {
		if !slices.ContainsFunc(found, func(c domain.Certification) bool { return c.ID == id }) {
			return apperrors.NotFound("certification", id)
		}
	}
	return nil
}

func applyInput(p *domain.Product, in *domain.ProductInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.CurrencyID = in.CurrencyID
	p.UnitID = in.UnitID
	p.ShelfID = in.ShelfID
	p.CategoryID = in.CategoryID
	p.IsFresh = in.IsFresh
	p.ProducerID = in.ProducerID
}

// uniqueIDs returns ids sorted without duplicates, never nil.
func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	if out == nil {
		out = []int64{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
