package handler

import (
	"github.com/gofiber/fiber/v2"

	"datasync/internal/http/middleware"
	"datasync/internal/model"
	"datasync/internal/provider"
	"datasync/internal/service"
)

// ItemListResult is the response body of GET /items.
type ItemListResult struct {
	Items []model.Item `json:"data"`
	Total int          `json:"total"`
}

// putItemRequest is the body of PUT /items. An empty id asks the network store to assign one.
type putItemRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// policyOf returns the policy resolved by middleware.Policy, or StorageSync
// when the route was mounted without it.
func policyOf(c *fiber.Ctx) provider.Policy {
	if p, ok := middleware.PolicyFromCtx(c); ok {
		return p
	}
	return provider.StorageSync
}

// ListItems godoc
// @Summary List items
// @Param policy query string false "network, network_sync, storage or storage_sync"
// @Success 200 {object} ItemListResult
// @Router /items [get]
func ListItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), policyOf(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(ItemListResult{Items: items, Total: len(items)})
	}
}

// GetItem godoc
// @Summary Get an item
// @Param id path string true "Item ID"
// @Param policy query string false "network, network_sync, storage or storage_sync"
// @Success 200 {object} model.Item
// @Router /items/{id} [get]
func GetItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := svc.Get(c.UserContext(), c.Params("id"), policyOf(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// PutItem godoc
// @Summary Create or replace an item
// @Accept json
// @Param policy query string false "network, network_sync, storage or storage_sync"
// @Success 200 {object} model.Item
// @Router /items [put]
func PutItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req putItemRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON item")
		}
		item, err := svc.Save(c.UserContext(), model.Item{ID: req.ID, Name: req.Name}, policyOf(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// DeleteItem godoc
// @Summary Delete an item
// @Param id path string true "Item ID"
// @Param policy query string false "network, network_sync, storage or storage_sync"
// @Success 204
// @Router /items/{id} [delete]
func DeleteItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id"), policyOf(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
