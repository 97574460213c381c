package enums

// OutboxEventType identifies the domain event stored in the outbox.
type OutboxEventType string

const (
	EventQuotationCreated   OutboxEventType = "quotation.created"
	EventQuotationApproved  OutboxEventType = "quotation.approved"
	EventQuotationRejected  OutboxEventType = "quotation.rejected"
	EventQuotationConverted OutboxEventType = "quotation.converted"
	EventQuotationExpired   OutboxEventType = "quotation.expired"
	EventQuotationCancelled OutboxEventType = "quotation.cancelled"
)

// OutboxAggregateType identifies the aggregate an event belongs to.
type OutboxAggregateType string

const (
	AggregateQuotation  OutboxAggregateType = "quotation"
	AggregatePriceTable OutboxAggregateType = "price_table"
)
