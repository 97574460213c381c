package quotations

import "github.com/lucasmoraes/clinicore-backend/pkg/enums"

// allowedTransitions is the quotation state machine. Terminal states have no
// outgoing edges; expiry only applies before conversion.
var allowedTransitions = map[enums.QuotationStatus][]enums.QuotationStatus{
	enums.QuotationStatusPending: {
		enums.QuotationStatusApproved,
		enums.QuotationStatusRejected,
		enums.QuotationStatusConverted,
		enums.QuotationStatusExpired,
		enums.QuotationStatusCancelled,
	},
	enums.QuotationStatusApproved: {
		enums.QuotationStatusConverted,
		enums.QuotationStatusExpired,
		enums.QuotationStatusCancelled,
	},
}

func canTransition(from, to enums.QuotationStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
