package converter

import (
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
	JoinedToEntity(model *JoinedProductModel) *domain.Product
}

// CartConverter собирает корзину из записи carts и её позиций.
type CartConverter interface {
	ToEntity(model *CartModel, items []CartItemModel) *domain.Cart
}

// OrderConverter преобразует заказ и его позиции между domain и моделями PostgreSQL.
type OrderConverter interface {
	ToModel(entity *domain.Order) (*OrderModel, []OrderItemModel)
	ToEntity(model *OrderModel, items []OrderItemModel) *domain.Order
}

// UserConverter преобразует сущности User между domain и моделью PostgreSQL.
type UserConverter interface {
	ToModel(entity *domain.User) *UserModel
	ToEntity(model *UserModel) *domain.User
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}
	return &ProductModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		Price:       entity.Price,
		Stock:       entity.Stock,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Stock:       model.Stock,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func (ProductConverterImpl) JoinedToEntity(model *JoinedProductModel) *domain.Product {
	if model == nil || !model.ID.Valid {
		return nil
	}
	product := &domain.Product{
		ID:        model.ID.UUID,
		Price:     model.Price.Decimal,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Name != nil {
		product.Name = *model.Name
	}
	if model.Description != nil {
		product.Description = *model.Description
	}
	if model.Stock != nil {
		product.Stock = *model.Stock
	}
	if model.CreatedAt != nil {
		product.CreatedAt = *model.CreatedAt
	}
	return product
}

type CartConverterImpl struct{}

func (CartConverterImpl) ToEntity(model *CartModel, items []CartItemModel) *domain.Cart {
	if model == nil {
		return nil
	}
	cart := &domain.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Lines:     make([]domain.CartLine, 0, len(items)),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	for _, item := range items {
		cart.Lines = append(cart.Lines, domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return cart
}

type OrderConverterImpl struct{}

func (OrderConverterImpl) ToModel(entity *domain.Order) (*OrderModel, []OrderItemModel) {
	if entity == nil {
		return nil, nil
	}
	model := &OrderModel{
		ID:              entity.ID,
		UserID:          entity.UserID,
		Status:          string(entity.Status),
		TotalAmount:     entity.TotalAmount,
		ShippingStreet:  entity.ShippingAddress.Street,
		ShippingCity:    entity.ShippingAddress.City,
		ShippingState:   entity.ShippingAddress.State,
		ShippingZip:     entity.ShippingAddress.Zip,
		ShippingCountry: entity.ShippingAddress.Country,
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}
	items := make([]OrderItemModel, 0, len(entity.Lines))
	for i, line := range entity.Lines {
		items = append(items, OrderItemModel{
			OrderID:   entity.ID,
			Position:  i,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return model, items
}

func (OrderConverterImpl) ToEntity(model *OrderModel, items []OrderItemModel) *domain.Order {
	if model == nil {
		return nil
	}
	order := &domain.Order{
		ID:          model.ID,
		UserID:      model.UserID,
		Lines:       make([]domain.OrderLine, 0, len(items)),
		TotalAmount: model.TotalAmount,
		Status:      domain.OrderStatus(model.Status),
		ShippingAddress: domain.ShippingAddress{
			Street:  model.ShippingStreet,
			City:    model.ShippingCity,
			State:   model.ShippingState,
			Zip:     model.ShippingZip,
			Country: model.ShippingCountry,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	for _, item := range items {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}

type UserConverterImpl struct{}

func (UserConverterImpl) ToModel(entity *domain.User) *UserModel {
	if entity == nil {
		return nil
	}
	return &UserModel{
		ID:           entity.ID,
		Username:     entity.Username,
		PasswordHash: entity.PasswordHash,
		Role:         string(entity.Role),
		CreatedAt:    entity.CreatedAt,
	}
}

func (UserConverterImpl) ToEntity(model *UserModel) *domain.User {
	if model == nil {
		return nil
	}
	return &domain.User{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		Role:         domain.Role(model.Role),
		CreatedAt:    model.CreatedAt,
	}
}

type OutboxEventConverterImpl struct{}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	if models == nil {
		return nil
	}
	events := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		events = append(events, c.ToEntity(model))
	}
	return events
}
