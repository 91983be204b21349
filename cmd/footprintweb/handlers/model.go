package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/footprintweb/pkg/api/errors"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository"
)

// GetDocumentHandler responds the graph document of the session.
//
// A session without graph responds an empty document.
func GetDocumentHandler(m *Model) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := run(c, m, func(store *graph.Store) (*graph.Document, error) {
			return store.Document(), nil
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	}
}

// PutDocumentHandler replaces the graph of the session with the uploaded document.
//
// The revision in the uploaded document is ignored.
func PutDocumentHandler(m *Model) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := Repository(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return binderr.BadRequest("can not read the request body", err)
		}
		uploaded, err := graph.Decode(body)
		if err != nil {
			return binderr.BadRequest("can not understand the requested json", err)
		}
		store, err := graph.Load(m.Catalog, uploaded, m.GraphOptions...)
		if errors.Is(err, graph.ErrIncompatibleDocument) {
			return binderr.BadRequest("the document is made by an incompatible version", err)
		} else if err != nil {
			return binderr.BadRequest("the document is broken", err)
		}

		current, err := repo.Get(ctx)
		if err != nil {
			return binderr.FromDomain(err)
		}
		base := int64(0)
		if current != nil {
			base = current.Revision
		}
		revision, err := repo.Save(ctx, repository.Stamp(store.Document(), base))
		if err != nil {
			return binderr.FromDomain(err)
		}
		c.Logger().Infof("graph is replaced: %d objects, revision %d", len(store.Objects()), revision)

		return c.JSON(http.StatusOK, repository.Stamp(store.Document(), revision))
	}
}

// ClearDocumentHandler removes the graph of the session.
func ClearDocumentHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := Repository(c)
		if err != nil {
			return err
		}
		if err := repo.Clear(c.Request().Context()); err != nil {
			return binderr.FromDomain(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
