// Package mapper converts between catalog entities, search documents and API
// responses. All functions are pure.
package mapper

import (
	"slices"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

// ToDocument flattens a product graph into its search document.
// A nil product yields nil. Relations that are not loaded produce null
// denormalized fields. A nil certification slice produces null certification
// fields and an empty slice produces empty arrays.
func ToDocument(p *domain.Product) *domain.ProductDocument {
	if p == nil {
		return nil
	}

	doc := &domain.ProductDocument{
		ID:           p.ID,
		Title:        p.Title,
		Description:  clone(p.Description),
		Price:        p.Price,
		MainImageURL: clone(p.MainImageURL),
		IsFresh:      p.IsFresh,
		ProducerID:   p.ProducerID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		IsDeleted:    p.IsDeleted,
	}

	if c := p.Currency; c != nil {
		doc.CurrencyID = ptr(c.ID)
		doc.CurrencyCode = ptr(c.Code)
	}
	if u := p.Unit; u != nil {
		doc.UnitID = ptr(u.ID)
		doc.UnitName = ptr(u.Label)
	}
	if s := p.Shelf; s != nil {
		doc.ShelfID = ptr(s.ID)
		doc.ShelfName = ptr(s.Label)
	}
	if c := p.Category; c != nil {
		doc.CategoryID = ptr(c.ID)
		doc.CategoryName = ptr(c.Name)
	}
	if p.MainImageID != nil {
		doc.MainImageID = ptr(p.MainImageID.String())
	}

	if p.Certifications != nil {
		doc.Certifications, doc.CertificationIDs, doc.CertificationNames = certifications(p.Certifications)
	}

	return doc
}

// certifications returns the id/label pairs sorted by id, the id set and the
// label set. Duplicates are collapsed so equal inputs give equal documents.
func certifications(certs []domain.Certification) ([]domain.CertificationInfo, []int64, []string) {
	infos := make([]domain.CertificationInfo, 0, len(certs))
	seen := make(map[int64]struct{}, len(certs))
	for _, c := range certs {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		infos = append(infos, domain.CertificationInfo{ID: c.ID, Label: c.Label})
	}
	slices.SortFunc(infos, func(a, b domain.CertificationInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	ids := make([]int64, 0, len(infos))
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
		names = append(names, info.Label)
	}
	slices.Sort(names)
	names = slices.Compact(names)

	return infos, ids, names
}

func ptr[T any](v T) *T { return &v }

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
