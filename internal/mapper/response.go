package mapper

import (
	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

// ToResponse projects a search document onto the API response shape.
func ToResponse(doc *domain.ProductDocument) *domain.ProductResponse {
	if doc == nil {
		return nil
	}

	resp := &domain.ProductResponse{
		ID:             doc.ID,
		Title:          doc.Title,
		Description:    clone(doc.Description),
		Price:          doc.Price,
		Certifications: certificationRefs(doc),
		MainImageID:    clone(doc.MainImageID),
		MainImageURL:   clone(doc.MainImageURL),
		IsFresh:        doc.IsFresh,
		ProducerID:     doc.ProducerID,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		IsDeleted:      doc.IsDeleted,
	}

	if doc.CurrencyID != nil {
		resp.Currency = &domain.CurrencyRef{ID: *doc.CurrencyID, Code: clone(doc.CurrencyCode)}
	}
	if doc.UnitID != nil {
		resp.Unit = &domain.UnitRef{ID: *doc.UnitID, Label: clone(doc.UnitName)}
	}
	if doc.ShelfID != nil {
		resp.Shelf = &domain.ShelfRef{ID: *doc.ShelfID, Label: clone(doc.ShelfName)}
	}
	if doc.CategoryID != nil {
		resp.Category = &domain.CategoryRef{ID: *doc.CategoryID, Name: clone(doc.CategoryName)}
	}

	return resp
}

// ToResponses projects a slice of documents, preserving order.
func ToResponses(docs []domain.ProductDocument) []domain.ProductResponse {
	out := make([]domain.ProductResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *ToResponse(&docs[i]))
	}
	return out
}

// ProductResponse maps a loaded product graph straight to its API shape,
// going through the document so reads from the store and from the index agree.
func ProductResponse(p *domain.Product) *domain.ProductResponse {
	return ToResponse(ToDocument(p))
}

// certificationRefs resolves certification labels from the document's id/label
// pairs. Documents without pairs fall back to pairing ids and names by position.
func certificationRefs(doc *domain.ProductDocument) []domain.CertificationRef {
	if doc.Certifications != nil {
		refs := make([]domain.CertificationRef, 0, len(doc.Certifications))
		for _, c := range doc.Certifications {
			refs = append(refs, domain.CertificationRef{ID: c.ID, Label: c.Label})
		}
		return refs
	}
	if doc.CertificationIDs == nil || doc.CertificationNames == nil {
		return nil
	}
	refs := make([]domain.CertificationRef, 0, len(doc.CertificationIDs))
	for i, id := range doc.CertificationIDs {
		ref := domain.CertificationRef{ID: id}
		if i < len(doc.CertificationNames) {
			ref.Label = doc.CertificationNames[i]
		}
		refs = append(refs, ref)
	}
	return refs
}
