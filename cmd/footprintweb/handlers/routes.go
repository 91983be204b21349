package handlers

import "github.com/labstack/echo/v4"

// Register routes of the model API on g.
//
// Paths end with "/"; the server adds trailing slashes to requests.
func Register(g *echo.Group, m *Model) {
	g.GET("/model/", GetDocumentHandler(m))
	g.PUT("/model/", PutDocumentHandler(m))
	g.DELETE("/model/", ClearDocumentHandler())

	g.GET("/objects/", ListObjectsHandler(m))
	g.GET("/objects/:id/form/", EditionFormHandler(m, "id"))
	g.PUT("/objects/:id/", EditHandler(m, "id"))
	g.DELETE("/objects/:id/", DeleteHandler(m, "id"))

	g.GET("/classes/:class/form/", CreationFormHandler(m, "class"))
	g.GET("/classes/:class/inventory/", InventoryHandler(m, "class"))
	g.POST("/classes/:class/objects/", CreateHandler(m, "class"))
}
