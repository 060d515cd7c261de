package domain

import "strings"

// ShippingAddress - адрес доставки заказа. Все поля обязательны.
type ShippingAddress struct {
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

// Normalize возвращает адрес без пробелов по краям полей.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Zip:     strings.TrimSpace(a.Zip),
		Country: strings.TrimSpace(a.Country),
	}
}

// IsComplete сообщает, заполнены ли все пять полей.
func (a ShippingAddress) IsComplete() bool {
	n := a.Normalize()
	return n.Street != "" && n.City != "" && n.State != "" && n.Zip != "" && n.Country != ""
}
