package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceToken holds the structure for the device_tokens collection. A token
// belongs to exactly one user at a time.
type DeviceToken struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"userId"`
	Token      string             `json:"-" bson:"token"`
	Platform   string             `json:"platform,omitempty" bson:"platform,omitempty"` // android, ios, web
	LastActive time.Time          `json:"lastActive" bson:"lastActive"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// RegisterDeviceRequest is the request body for registering a push token.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform,omitempty" validate:"omitempty,oneof=android ios web"`
}
