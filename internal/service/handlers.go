package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	cartpb "github.com/fjod/go_cart/cart-service/pkg/proto"
	"github.com/fjod/go_cart/pickup-service/internal/domain"
)

type CartHandler struct {
	cartClient cartpb.CartServiceClient
	timeout    time.Duration
}

func NewCartHandler(cartClient cartpb.CartServiceClient, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cartClient: cartClient,
		timeout:    timeout,
	}
}

// cartProducts loads the cart of the user and sums the quantities per product
func (h *CartHandler) cartProducts(ctx context.Context, userID int64) (map[string]domain.ProductRequestItem, error) {
	cartContext, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp, err := h.cartClient.GetCart(cartContext, &cartpb.GetCartRequest{UserId: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	products := make(map[string]domain.ProductRequestItem)
	for _, item := range resp.GetCart().GetCart() {
		id := strconv.FormatInt(item.GetProductId(), 10)
		entry := products[id]
		entry.ProductID = id
		entry.Quantity += int64(item.GetQuantity())
		products[id] = entry
	}
	return products, nil
}
