package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product represents a stocked warehouse item
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Stock        int64              `bson:"stock" json:"stock"` // quantity on hand
	SupplierName string             `bson:"supplierName" json:"supplierName"`
	Image        string             `bson:"image" json:"image"` // URL to product image
	Quote        string             `bson:"quote" json:"quote"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"` // owner tag, optional
}

// ProductEvent is published on the event bus after a write
type ProductEvent struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Stock  *int64 `json:"stock,omitempty"`
}

const (
	ProductCreated = "product:created"
	ProductUpdated = "product:updated"
	ProductDeleted = "product:deleted"
)

// StockUpdate is the body of the stock overwrite routes; Stock may be a
// JSON number or a numeric string.
type StockUpdate struct {
	Stock interface{} `json:"stock"`
}
