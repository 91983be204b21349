package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	binderr "github.com/opst/footprintweb/pkg/api/errors"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/lifecycle"
	"github.com/opst/footprintweb/pkg/session"
)

// Model is what handlers use to work on session graphs.
type Model struct {
	Catalog      *catalog.Catalog
	Forms        *forms.Builder
	Orchestrator *lifecycle.Orchestrator
	GraphOptions []graph.Option
}

// run f in the scope of the session graph of c.
func run[T any](c echo.Context, m *Model, f func(*graph.Store) (T, error)) (T, error) {
	repo, err := Repository(c)
	if err != nil {
		return *new(T), err
	}
	ret, err := session.Run(c.Request().Context(), repo, m.Catalog, f, m.GraphOptions...)
	if err != nil {
		return *new(T), binderr.FromDomain(err)
	}
	return ret, nil
}

// readPayload reads a JSON body as a parsed payload, and anything else as a form.
func readPayload(c echo.Context) (lifecycle.Payload, error) {
	req := c.Request()
	if strings.HasPrefix(strings.ToLower(req.Header.Get(echo.HeaderContentType)), echo.MIMEApplicationJSON) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return lifecycle.Payload{}, binderr.BadRequest("can not read the request body", err)
		}
		p, err := lifecycle.FromJSON(body)
		if err != nil {
			return lifecycle.Payload{}, binderr.BadRequest("can not understand the requested json. it should be an object", err)
		}
		return p, nil
	}

	form, err := c.FormParams()
	if err != nil {
		return lifecycle.Payload{}, binderr.BadRequest("can not understand the requested form", err)
	}
	return lifecycle.FromForm(form), nil
}

// ListObjectsHandler lists every object of the session graph.
func ListObjectsHandler(m *Model) echo.HandlerFunc {
	return func(c echo.Context) error {
		summaries, err := run(c, m, func(store *graph.Store) ([]lifecycle.Summary, error) {
			ret := []lifecycle.Summary{}
			for _, o := range store.Objects() {
				w := store.Wrap(o)
				ret = append(ret, lifecycle.Summary{
					ID: w.ID(), Name: w.Name(), Class: w.Class(), WebIDs: w.MirroredWebIDs(),
				})
			}
			return ret, nil
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, summaries)
	}
}

type entry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// InventoryHandler lists objects and seeds of a class, which can be referred.
func InventoryHandler(m *Model, classParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		class := c.Param(classParam)
		if _, err := m.Catalog.Type(class); err != nil {
			return binderr.FromDomain(err)
		}
		entries, err := run(c, m, func(store *graph.Store) ([]entry, error) {
			ret := []entry{}
			for _, e := range store.Inventory(class) {
				ret = append(ret, entry{ID: e.ID, Name: e.Name, Class: e.Class})
			}
			return ret, nil
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, entries)
	}
}

// CreateHandler creates an object of the class in path.
//
// The query parameter "parent" is the known parent or the container of it.
func CreateHandler(m *Model, classParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload, err := readPayload(c)
		if err != nil {
			return err
		}
		req := lifecycle.CreateRequest{
			Class:    c.Param(classParam),
			ParentID: c.QueryParam("parent"),
			Payload:  payload,
		}
		result, err := run(c, m, func(store *graph.Store) (*lifecycle.Result, error) {
			return m.Orchestrator.Create(store, req)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, result)
	}
}

func EditHandler(m *Model, idParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload, err := readPayload(c)
		if err != nil {
			return err
		}
		req := lifecycle.EditRequest{ID: c.Param(idParam), Payload: payload}
		result, err := run(c, m, func(store *graph.Store) (*lifecycle.Result, error) {
			return m.Orchestrator.Edit(store, req)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}

// DeleteHandler deletes an object, or unlinks it from the container in query "from".
//
// Blocked deletions respond 409 with the result naming blockers.
func DeleteHandler(m *Model, idParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := lifecycle.DeleteRequest{
			ID:              c.Param(idParam),
			FromContainerID: c.QueryParam("from"),
		}
		result, err := run(c, m, func(store *graph.Store) (*lifecycle.Result, error) {
			return m.Orchestrator.Delete(store, req)
		})
		if err != nil {
			return err
		}
		if result.Action == lifecycle.Blocked {
			return c.JSON(http.StatusConflict, result)
		}
		return c.JSON(http.StatusOK, result)
	}
}
