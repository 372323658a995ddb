package services

// Event names published after a state change has been committed.
const (
	EventTableUpdated         = "table_updated"
	EventTablesUpdated        = "tables_updated"
	EventOrderChanged         = "order_changed"
	EventOrdersCleared        = "orders_cleared"
	EventTransactionCompleted = "transaction_completed"
	EventInventoryChanged     = "inventory_changed"
	EventSessionTimeUp        = "session_time_up"
)

// Notifier delivers change events to live subscribers. Delivery is best effort:
// implementations must not block and a failed delivery never undoes the change.
type Notifier interface {
	Publish(event string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, interface{}) {}
