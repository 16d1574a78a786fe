package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"travelbook_app/internal/models"
	"travelbook_app/internal/services"
)

// CatalogHandler serves the public destination/package catalog and the
// admin endpoints that maintain it
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListDestinations returns all active destinations
func (h *CatalogHandler) ListDestinations(c echo.Context) error {
	destinations, err := h.catalogService.ListDestinations(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, destinations)
}

// GetDestination returns one destination with its packages
func (h *CatalogHandler) GetDestination(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid destination id")
	}
	destination, err := h.catalogService.GetDestination(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, destination)
}

// ListPackages returns active packages, optionally filtered by destination
func (h *CatalogHandler) ListPackages(c echo.Context) error {
	var destinationID *uint
	if raw := c.QueryParam("destination_id"); raw != "" {
		val, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid destination_id")
		}
		id := uint(val)
		destinationID = &id
	}

	packages, err := h.catalogService.ListPackages(c.Request().Context(), destinationID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, packages)
}

// GetPackage returns one package with destination and itinerary
func (h *CatalogHandler) GetPackage(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid package id")
	}
	pkg, err := h.catalogService.GetPackage(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// CreateDestination adds a destination (admin)
func (h *CatalogHandler) CreateDestination(c echo.Context) error {
	var destination models.Destination
	if err := c.Bind(&destination); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.catalogService.CreateDestination(c.Request().Context(), &destination); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, destination)
}

// UpdateDestination saves changes to a destination (admin)
func (h *CatalogHandler) UpdateDestination(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid destination id")
	}
	var destination models.Destination
	if err := c.Bind(&destination); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	destination.ID = id
	if err := h.catalogService.UpdateDestination(c.Request().Context(), &destination); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, destination)
}

// DeleteDestination removes a destination from the catalog (admin)
func (h *CatalogHandler) DeleteDestination(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid destination id")
	}
	if err := h.catalogService.DeleteDestination(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}

// CreatePackage adds a tour package (admin)
func (h *CatalogHandler) CreatePackage(c echo.Context) error {
	var pkg models.TourPackage
	if err := c.Bind(&pkg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.catalogService.CreatePackage(c.Request().Context(), &pkg); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pkg)
}

// UpdatePackage saves changes to a tour package (admin)
func (h *CatalogHandler) UpdatePackage(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid package id")
	}
	var pkg models.TourPackage
	if err := c.Bind(&pkg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pkg.ID = id
	if err := h.catalogService.UpdatePackage(c.Request().Context(), &pkg); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// DeletePackage removes a tour package from the catalog (admin)
func (h *CatalogHandler) DeletePackage(c echo.Context) error {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid package id")
	}
	if err := h.catalogService.DeletePackage(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}
