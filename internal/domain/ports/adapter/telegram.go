package adapter

import "context"

// OpsNotifier pushes short operational alerts (chargebacks, refunds) to staff.
type OpsNotifier interface {
	Notify(ctx context.Context, text string) error
}
