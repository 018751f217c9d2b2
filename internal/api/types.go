package api

import "time"

type Article struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Community string `json:"community,omitempty"`
}

type Member struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Location is a GeoJSON point, coordinates ordered [longitude, latitude].
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

type Community struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Location     Location `json:"location"`
	Members      []Member `json:"members"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	DeliveryTime string   `json:"deliveryTime,omitempty"`
}

type OrderItem struct {
	Article  string `json:"article"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID           string      `json:"_id"`
	Items        []OrderItem `json:"items"`
	Status       string      `json:"status"`
	DeliveryDate time.Time   `json:"deliveryDate"`
	TotalAmount  float64     `json:"totalAmount"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// OrderDraft is what the client submits; the server owns ids and lifecycle.
type OrderDraft struct {
	Items        []OrderItem `json:"items"`
	Community    string      `json:"community,omitempty"`
	DeliveryDate time.Time   `json:"deliveryDate"`
	Status       string      `json:"status"`
	TotalAmount  float64     `json:"totalAmount"`
}

// OrderLine is an order item joined with its catalog article.
type OrderLine struct {
	Article  Article
	Quantity int
}

// OrderDetails is an order with its items resolved against the catalog.
type OrderDetails struct {
	ID           string
	Lines        []OrderLine
	Status       string
	DeliveryDate time.Time
	TotalAmount  float64
	CreatedAt    time.Time
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
