package requirement

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/rastreio/core"
)

// UploadDocument stores content in the documents directory and attaches it to a requirement.
func (svc *Service) UploadDocument(ctx context.Context, requirementID string, data DocumentData, content io.Reader) (Document, error) {
	data.Filename = core.CleanString(data.Filename)
	data.Description = core.CleanString(data.Description)
	if err := core.Validate.Struct(data); err != nil {
		return Document{}, err
	}
	if _, err := svc.repo.GetRequirement(ctx, requirementID); err != nil {
		return Document{}, err
	}

	id, err := core.NewID()
	if err != nil {
		return Document{}, err
	}
	path, err := svc.files.Save(ctx, DocumentsDir, data.Filename, content)
	if err != nil {
		return Document{}, errors.Wrap(err, "saving document file")
	}

	doc, err := svc.repo.CreateDocument(ctx, Document{
		ID:            id,
		RequirementID: requirementID,
		File:          path,
		Description:   data.Description,
	})
	if err != nil {
		svc.removeFiles(Document{File: path})
		return Document{}, errors.Wrap(err, "creating document")
	}
	return doc, nil
}

func (svc *Service) GetDocument(ctx context.Context, requirementID, id string) (Document, error) {
	doc, err := svc.repo.GetDocument(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if doc.RequirementID != requirementID {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

func (svc *Service) QueryDocuments(ctx context.Context, requirementID string) ([]Document, error) {
	if _, err := svc.repo.GetRequirement(ctx, requirementID); err != nil {
		return nil, err
	}
	return svc.repo.QueryDocuments(ctx, requirementID)
}

// UpdateDocumentDescription only changes the description, the stored file is kept.
func (svc *Service) UpdateDocumentDescription(ctx context.Context, requirementID, id, description string) (Document, error) {
	doc, err := svc.GetDocument(ctx, requirementID, id)
	if err != nil {
		return Document{}, err
	}
	data := DocumentData{Filename: doc.File, Description: core.CleanString(description)}
	if err = core.Validate.StructPartial(data, "Description"); err != nil {
		return Document{}, err
	}
	doc.Description = data.Description

	if doc, err = svc.repo.UpdateDocument(ctx, doc); err != nil {
		return Document{}, errors.Wrap(err, "updating document")
	}
	return doc, nil
}

// OpenDocument returns the document's content. The caller must close it.
func (svc *Service) OpenDocument(ctx context.Context, requirementID, id string) (Document, io.ReadCloser, error) {
	doc, err := svc.GetDocument(ctx, requirementID, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := svc.files.Open(doc.File)
	if err != nil {
		return Document{}, nil, errors.Wrap(err, "opening document file")
	}
	return doc, rc, nil
}

func (svc *Service) DeleteDocument(ctx context.Context, requirementID, id string) error {
	doc, err := svc.GetDocument(ctx, requirementID, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteDocument(ctx, id); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	svc.removeFiles(doc)
	return nil
}

// removeFiles deletes stored files once their rows are gone. Failures leave orphan files behind, and are only logged.
func (svc *Service) removeFiles(docs ...Document) {
	for _, doc := range docs {
		if doc.File == "" {
			continue
		}
		if err := svc.files.Delete(doc.File); err != nil {
			svc.log.Warn("could not delete document file", err, map[string]interface{}{"file": doc.File})
		}
	}
}
