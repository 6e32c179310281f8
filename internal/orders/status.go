package orders

import "strings"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled,
}

// cancellable: status yang boleh di-cancel.
var cancellable = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
}

// holdsReservation: stok sudah dikurangi untuk order di status ini.
var holdsReservation = map[Status]bool{
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
}

// rank orders the reserved states along the fulfilment path.
var rank = map[Status]int{
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range allStatuses {
		if v == st {
			return st, true
		}
	}
	return "", false
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

func (s Status) Terminal() bool { return s == StatusCancelled }

// CanCancel reports whether an order in s may move to CANCELLED.
func CanCancel(s Status) bool { return cancellable[s] }

// HoldsReservation reports whether an order in s owns a stock decrement
// that cancellation has to give back.
func HoldsReservation(s Status) bool { return holdsReservation[s] }

// CanTransition is the rule for status changes requested from outside the
// coordinator. CONFIRMED and PROCESSING may move either way; SHIPPED and
// DELIVERED only move forward. Nothing leaves CANCELLED, nothing re-enters
// PENDING, and PENDING only moves through the coordinator (confirm) or
// cancellation.
func CanTransition(from, to Status) bool {
	switch {
	case !from.Valid() || !to.Valid():
		return false
	case from.Terminal():
		return false
	case to == StatusPending:
		return from == StatusPending
	case to == StatusCancelled:
		return CanCancel(from)
	case from == StatusPending:
		return false
	case from == StatusShipped || from == StatusDelivered:
		// barang sudah keluar: tidak boleh mundur ke status yang masih bisa di-cancel
		return rank[to] >= rank[from]
	default:
		return true
	}
}
