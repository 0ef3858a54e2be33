// Package testutil provides shared test helpers for the quarry project.
package testutil

import "github.com/bawdo/quarry/schema"

// ShopCatalog returns a small catalog used across package tests.
func ShopCatalog() *schema.Catalog {
	c := schema.NewCatalog()
	c.Define("users", "id", "name", "age", "vip", "manager_id", "deleted_at")
	c.Define("orders", "id", "user_id", "total", "status", "deleted_at")
	c.Define("order_items", "id", "order_id", "sku", "qty")
	c.Define("tags", "id", "name")
	return c
}
