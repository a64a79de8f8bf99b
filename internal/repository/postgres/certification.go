package postgres

import (
	"context"
	"fmt"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

const certificationColumns = `id, label, is_deleted, created_at, updated_at`

// CertificationRepository implements certification persistence using PostgreSQL.
type CertificationRepository struct {
	db database.DBTX
}

// NewCertificationRepository creates a new PostgreSQL-backed certification repository.
func NewCertificationRepository(db database.DBTX) *CertificationRepository {
	return &CertificationRepository{db: db}
}

func scanCertification(s scanner, c *domain.Certification) error {
	return s.Scan(&c.ID, &c.Label, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts c and fills in its generated fields.
func (r *CertificationRepository) Create(ctx context.Context, c *domain.Certification) error {
	query := fmt.Sprintf(`INSERT INTO certifications (label) VALUES ($1) RETURNING %s`, certificationColumns)

	created, err := queryOne(ctx, r.db, "certifications.Create", query, scanCertification, errNoRow, c.Label)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("certification", "label", c.Label)
		}
		return err
	}
	*c = *created
	return nil
}

// Update replaces the label of a live certification.
func (r *CertificationRepository) Update(ctx context.Context, c *domain.Certification) error {
	query := fmt.Sprintf(`
		UPDATE certifications SET label = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE
		RETURNING %s`, certificationColumns)

	updated, err := queryOne(ctx, r.db, "certifications.Update", query, scanCertification,
		apperrors.NotFound("certification", c.ID), c.Label, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("certification", "label", c.Label)
		}
		return err
	}
	*c = *updated
	return nil
}

// GetByID returns the certification with id.
func (r *CertificationRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Certification, error) {
	query := fmt.Sprintf(`SELECT %s FROM certifications WHERE id = $1 AND %s`, certificationColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "certifications.GetByID", query, scanCertification, apperrors.NotFound("certification", id), id)
}

// GetByLabel returns the certification with label.
func (r *CertificationRepository) GetByLabel(ctx context.Context, label string, includeDeleted bool) (*domain.Certification, error) {
	query := fmt.Sprintf(`SELECT %s FROM certifications WHERE label = $1 AND %s`, certificationColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "certifications.GetByLabel", query, scanCertification,
		apperrors.NotFoundBy("certification", "label", label), label)
}

// GetLiveByIDs returns the live certifications among ids, ordered by id.
func (r *CertificationRepository) GetLiveByIDs(ctx context.Context, ids []int64) ([]domain.Certification, error) {
	if len(ids) == 0 {
		return []domain.Certification{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM certifications WHERE id = ANY($1) AND is_deleted = FALSE ORDER BY id`, certificationColumns)
	return queryAll(ctx, r.db, "certifications.GetLiveByIDs", query, scanCertification, ids)
}

// List returns the live or the soft-deleted certifications ordered by label.
func (r *CertificationRepository) List(ctx context.Context, deleted bool) ([]domain.Certification, error) {
	query := fmt.Sprintf(`SELECT %s FROM certifications WHERE is_deleted = $1 ORDER BY label`, certificationColumns)
	return queryAll(ctx, r.db, "certifications.List", query, scanCertification, deleted)
}

// SetDeleted flips the soft-delete flag.
func (r *CertificationRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return setDeleted(ctx, r.db, "certifications", "certification", id, deleted)
}

// HardDelete removes the certification row. Product links cascade.
func (r *CertificationRepository) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "certifications", "certification", id)
}
