package orders

// DefaultTopic carries every order lifecycle event; consumers switch on
// the x-event-type header.
const DefaultTopic = "order.events"

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
