package cart

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// addLine agrega qty unidades del producto. Si la línea ya existe solo suma la
// cantidad y conserva el precio con el que se agregó la primera vez.
func addLine(c *models.Cart, product *models.Product, qty int, now time.Time) {
	if i := c.FindItem(product.ID); i >= 0 {
		c.Items[i].Quantity += qty
		return
	}

	item := models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  qty,
		AddedAt:   now,
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	c.Items = append(c.Items, item)
}

// setQuantity fija la cantidad de una línea; qty <= 0 la elimina
func setQuantity(c *models.Cart, productID primitive.ObjectID, qty int) error {
	i := c.FindItem(productID)
	if i < 0 {
		return apperr.NotFound("cart item")
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return nil
	}
	c.Items[i].Quantity = qty
	return nil
}

func removeLine(c *models.Cart, productID primitive.ObjectID) error {
	return setQuantity(c, productID, 0)
}

// quantityOf devuelve las unidades del producto que ya están en el carrito
func quantityOf(c *models.Cart, productID primitive.ObjectID) int {
	if i := c.FindItem(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func clearLines(c *models.Cart) {
	c.Items = []models.CartItem{}
	c.Coupon = nil
}
