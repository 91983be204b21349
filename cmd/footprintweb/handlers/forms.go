package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
)

// CreationFormHandler responds the creation form of the class in path.
func CreationFormHandler(m *Model, classParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		class := c.Param(classParam)
		req := forms.ContextRequest{ParentID: c.QueryParam("parent")}
		fc, err := run(c, m, func(store *graph.Store) (*forms.FormContext, error) {
			return m.Forms.CreationContext(class, req, store)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, fc)
	}
}

// EditionFormHandler responds the edition form of the object in path.
func EditionFormHandler(m *Model, idParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param(idParam)
		fc, err := run(c, m, func(store *graph.Store) (*forms.FormContext, error) {
			return m.Forms.EditionContext(id, store)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, fc)
	}
}
