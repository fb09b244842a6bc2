package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusOverdue   SubscriptionStatus = "overdue"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusRefunded  SubscriptionStatus = "refunded"
)

// Subscription mirrors the customer's subscription row in the hosted database.
type Subscription struct {
	ID                    string
	UserID                string
	PlanID                string
	GatewaySubscriptionID *string
	Status                SubscriptionStatus
	CurrentPeriodEnd      *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SubscriptionUpdate is the status/period change requested by one gateway event.
type SubscriptionUpdate struct {
	Status           SubscriptionStatus
	CurrentPeriodEnd *time.Time
}
