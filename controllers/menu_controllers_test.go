package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestMenuManagement(t *testing.T) {
	app := newApp(t)
	_, admin := app.user("+79990000080", models.RoleAdmin, "secret1")

	w, env := app.do(http.MethodPost, "/admin/menu/categories", admin, map[string]interface{}{"name": "Desserts", "sort_order": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var desserts models.MenuCategory
	decode(t, env.Data, &desserts)

	w, env = app.do(http.MethodPost, "/admin/menu/categories", admin, map[string]interface{}{"name": "Salads", "sort_order": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var salads models.MenuCategory
	decode(t, env.Data, &salads)

	w, env = app.do(http.MethodPost, "/admin/menu/categories", admin, map[string]interface{}{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_field", env.Code)

	w, _ = app.do(http.MethodPost, "/admin/menu/items", admin, map[string]interface{}{
		"category_id": desserts.ID, "name": "Tiramisu", "price": 380,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = app.do(http.MethodPost, "/admin/menu/items", admin, map[string]interface{}{
		"category_id": salads.ID, "name": "Greek salad", "price": 420, "is_available": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = app.do(http.MethodPost, "/admin/menu/items", admin, map[string]interface{}{
		"category_id": desserts.ID, "name": "Mystery", "price": 1, "dish_type": "snack",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_field", env.Code)

	w, env = app.do(http.MethodPost, "/admin/menu/items", admin, map[string]interface{}{
		"category_id": 999, "name": "Ghost", "price": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = app.do(http.MethodGet, "/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var menu []models.MenuCategory
	decode(t, env.Data, &menu)
	require.Len(t, menu, 2)
	assert.Equal(t, "Salads", menu[0].Name)
	assert.Empty(t, menu[0].Items)
	require.Len(t, menu[1].Items, 1)
	assert.Equal(t, "Tiramisu", menu[1].Items[0].Name)

	w, _ = app.do(http.MethodDelete, "/admin/menu/categories/"+itoa(desserts.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items int64
	require.NoError(t, app.db.Model(&models.MenuItem{}).Count(&items).Error)
	assert.EqualValues(t, 1, items)
}
