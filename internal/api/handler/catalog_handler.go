package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
	"github.com/handmade-gallery/storefront/internal/infrastructure/export"
)

// CatalogHandler exposes the catalog repository. Writes are mounted behind an
// admin/seller guard by the router.
type CatalogHandler struct {
	catalog ports.CatalogRepository
	log     zerolog.Logger
}

func NewCatalogHandler(catalog ports.CatalogRepository, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// List returns every product in insertion order.
//
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  productListResponse
// @Router       /catalog/products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(http.StatusOK, productListResponse{Products: products, Count: len(products)})
}

// Get returns one product.
//
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	p, err := h.catalog.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a product; the catalog assigns id and timestamp.
//
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProductDraft  true  "Product fields"
// @Success      201   {object}  domain.Product
// @Failure      422   {object}  map[string]string
// @Router       /catalog/products [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var draft domain.ProductDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	p, err := h.catalog.AddProduct(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update replaces a product's fields, keeping its id and creation time.
//
// @Summary      Update a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Product id"
// @Param        body  body      domain.ProductDraft  true  "Product fields"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /catalog/products/{id} [put]
func (h *CatalogHandler) Update(c echo.Context) error {
	var draft domain.ProductDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	p, err := h.catalog.UpdateProduct(c.Request().Context(), c.Param("id"), draft)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product. Unknown ids succeed.
//
// @Summary      Delete a product
// @Tags         catalog
// @Param        id  path  string  true  "Product id"
// @Success      204
// @Router       /catalog/products/{id} [delete]
func (h *CatalogHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Export streams the catalog as an xlsx workbook.
//
// @Summary      Export catalog
// @Tags         catalog
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /catalog/export.xlsx [get]
func (h *CatalogHandler) Export(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, export.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	res.WriteHeader(http.StatusOK)
	if err := export.WriteCatalog(res, products); err != nil {
		h.log.Error().Err(err).Msg("catalog export failed mid-stream")
		return nil
	}
	return nil
}

// Import adds every valid row of an uploaded workbook as a new product.
//
// @Summary      Import catalog
// @Tags         catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Workbook in export layout"
// @Success      200   {object}  importResponse
// @Failure      400   {object}  map[string]string
// @Router       /catalog/import.xlsx [post]
func (h *CatalogHandler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()

	drafts, skipped, err := export.ReadCatalog(f, fh.Size)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	imported := 0
	for _, d := range drafts {
		if _, err := h.catalog.AddProduct(ctx, d); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				skipped++
				continue
			}
			return err
		}
		imported++
	}

	h.log.Info().Int("imported", imported).Int("skipped", skipped).Msg("catalog import finished")
	return c.JSON(http.StatusOK, importResponse{Imported: imported, Skipped: skipped})
}
