package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

// productColumns selects a product row plus the display fields of its relations.
const productColumns = `p.id, p.title, p.description, p.price, p.currency_id, p.unit_id, p.shelf_id,
	p.category_id, p.is_fresh, p.producer_id, p.main_image_id, p.main_image_url,
	p.is_deleted, p.created_at, p.updated_at,
	cu.code, un.label, sh.label, ca.name`

const productJoins = `products p
	LEFT JOIN currencies cu ON cu.id = p.currency_id
	LEFT JOIN units un ON un.id = p.unit_id
	LEFT JOIN shelves sh ON sh.id = p.shelf_id
	LEFT JOIN categories ca ON ca.id = p.category_id`

// ProductRepository implements product persistence using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

type productRow struct {
	product      domain.Product
	currencyCode *string
	unitLabel    *string
	shelfLabel   *string
	categoryName *string
	totalCount   int64
}

func (row *productRow) dest() []any {
	p := &row.product
	return []any{
		&p.ID, &p.Title, &p.Description, &p.Price, &p.CurrencyID, &p.UnitID, &p.ShelfID,
		&p.CategoryID, &p.IsFresh, &p.ProducerID, &p.MainImageID, &p.MainImageURL,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
		&row.currencyCode, &row.unitLabel, &row.shelfLabel, &row.categoryName,
	}
}

func scanProductRow(s scanner, row *productRow) error {
	return s.Scan(row.dest()...)
}

func scanProductRowWithCount(s scanner, row *productRow) error {
	return s.Scan(append(row.dest(), &row.totalCount)...)
}

// graph attaches the joined relations to the scanned product.
func (row *productRow) graph() domain.Product {
	p := row.product
	if row.currencyCode != nil {
		p.Currency = &domain.Currency{ID: p.CurrencyID, Code: *row.currencyCode}
	}
	if row.unitLabel != nil {
		p.Unit = &domain.Unit{ID: p.UnitID, Label: *row.unitLabel}
	}
	if row.shelfLabel != nil {
		p.Shelf = &domain.Shelf{ID: p.ShelfID, Label: *row.shelfLabel, ProducerID: p.ProducerID}
	}
	if p.CategoryID != nil && row.categoryName != nil {
		p.Category = &domain.Category{ID: *p.CategoryID, Name: *row.categoryName}
	}
	return p
}

// Create inserts p and fills in its generated fields. Certifications are
// stored separately with SetCertifications.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (title, description, price, currency_id, unit_id, shelf_id,
			category_id, is_fresh, producer_id, main_image_id, main_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, is_deleted, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "products.Create", query)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, query,
		p.Title, p.Description, p.Price, p.CurrencyID, p.UnitID, p.ShelfID,
		p.CategoryID, p.IsFresh, p.ProducerID, p.MainImageID, p.MainImageURL,
	).Scan(&p.ID, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("product references a missing currency, unit, shelf or category")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a live product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, currency_id = $4, unit_id = $5,
		    shelf_id = $6, category_id = $7, is_fresh = $8, producer_id = $9, updated_at = NOW()
		WHERE id = $10 AND is_deleted = FALSE`

	ctx, end := database.TraceQuery(ctx, "products.Update", query)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, r.db).Exec(ctx, query,
		p.Title, p.Description, p.Price, p.CurrencyID, p.UnitID,
		p.ShelfID, p.CategoryID, p.IsFresh, p.ProducerID, p.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("product references a missing currency, unit, shelf or category")
		}
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// GetByID returns the product graph with id.
func (r *ProductRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE p.id = $1 AND %s`, productColumns, productJoins, liveFilter("p", includeDeleted))

	row, err := queryOne(ctx, r.db, "products.GetByID", query, scanProductRow, apperrors.NotFound("product", id), id)
	if err != nil {
		return nil, err
	}
	products := []domain.Product{row.graph()}
	if err := r.loadCertifications(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// List returns one page of product graphs ordered by id and the total count
// of rows matching the filter.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE ($1::boolean IS NULL OR p.is_deleted = $1)
		ORDER BY p.id
		LIMIT $2 OFFSET $3`, productColumns, productJoins)

	rows, err := queryAll(ctx, r.db, "products.List", query, scanProductRowWithCount,
		filter.Deleted, filter.Size, filter.Page*filter.Size)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	products := make([]domain.Product, 0, len(rows))
	for i := range rows {
		total = rows[i].totalCount
		products = append(products, rows[i].graph())
	}
	if err := r.loadCertifications(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListAll returns every product graph, soft-deleted ones included.
func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY p.id`, productColumns, productJoins)

	rows, err := queryAll(ctx, r.db, "products.ListAll", query, scanProductRow)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].graph())
	}
	if err := r.loadCertifications(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

var referenceColumns = map[repository.Reference]string{
	repository.RefCurrency: "currency_id",
	repository.RefUnit:     "unit_id",
	repository.RefShelf:    "shelf_id",
	repository.RefCategory: "category_id",
}

// IDsReferencing returns the products pointing at a reference row.
func (r *ProductRepository) IDsReferencing(ctx context.Context, ref repository.Reference, id int64) ([]int64, error) {
	var query string
	if ref == repository.RefCertification {
		query = `SELECT product_id FROM product_certifications WHERE certification_id = $1 ORDER BY product_id`
	} else {
		col, ok := referenceColumns[ref]
		if !ok {
			return nil, fmt.Errorf("unknown product reference %q", ref)
		}
		query = fmt.Sprintf(`SELECT id FROM products WHERE %s = $1 ORDER BY id`, col)
	}
	return queryAll(ctx, r.db, "products.IDsReferencing", query,
		func(s scanner, v *int64) error { return s.Scan(v) }, id)
}

type certificationLink struct {
	productID int64
	cert      domain.Certification
}

// loadCertifications fills in Certifications for every product. Products
// without links get an empty, non-nil slice.
func (r *ProductRepository) loadCertifications(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
	}

	query := `
		SELECT pc.product_id, c.id, c.label
		FROM product_certifications pc
		JOIN certifications c ON c.id = pc.certification_id
		WHERE pc.product_id = ANY($1) AND c.is_deleted = FALSE
		ORDER BY pc.product_id, c.id`

	links, err := queryAll(ctx, r.db, "products.loadCertifications", query,
		func(s scanner, l *certificationLink) error {
			return s.Scan(&l.productID, &l.cert.ID, &l.cert.Label)
		}, ids)
	if err != nil {
		return err
	}

	byProduct := make(map[int64][]domain.Certification, len(products))
	for _, l := range links {
		byProduct[l.productID] = append(byProduct[l.productID], l.cert)
	}
	for i := range products {
		certs := byProduct[products[i].ID]
		if certs == nil {
			certs = []domain.Certification{}
		}
		products[i].Certifications = certs
	}
	return nil
}

// SetCertifications replaces the certification links of a product.
func (r *ProductRepository) SetCertifications(ctx context.Context, productID int64, certificationIDs []int64) (err error) {
	ctx, end := database.TraceQuery(ctx, "products.SetCertifications", "DELETE/INSERT product_certifications")
	defer func() { end(err) }()

	db := database.Conn(ctx, r.db)
	if _, err = db.Exec(ctx, `DELETE FROM product_certifications WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("clear product certifications: %w", err)
	}
	if len(certificationIDs) == 0 {
		return nil
	}
	_, err = db.Exec(ctx, `
		INSERT INTO product_certifications (product_id, certification_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, productID, certificationIDs)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("product references a missing certification")
		}
		return fmt.Errorf("link product certifications: %w", err)
	}
	return nil
}

// SetImage sets or clears the main image of a live product.
func (r *ProductRepository) SetImage(ctx context.Context, productID int64, imageID *uuid.UUID, imageURL *string) (err error) {
	query := `
		UPDATE products SET main_image_id = $1, main_image_url = $2, updated_at = NOW()
		WHERE id = $3 AND is_deleted = FALSE`

	ctx, end := database.TraceQuery(ctx, "products.SetImage", query)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, r.db).Exec(ctx, query, imageID, imageURL, productID)
	if err != nil {
		return fmt.Errorf("set product image: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", productID)
	}
	return nil
}

// SetDeleted flips the soft-delete flag.
func (r *ProductRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return setDeleted(ctx, r.db, "products", "product", id, deleted)
}

// HardDelete removes the product row. Certification links cascade.
func (r *ProductRepository) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "products", "product", id)
}
