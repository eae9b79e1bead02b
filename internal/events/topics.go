package events

// Topic constants for voucher domain events.
const (
	TopicVoucherClaimed  = "voucher.claimed"
	TopicVoucherRedeemed = "voucher.redeemed"
	TopicVoucherUsed     = "voucher.used"

	// Admin changes to voucher definitions. Payloads carry the acting user id.
	TopicVoucherCreated     = "voucher.created"
	TopicVoucherUpdated     = "voucher.updated"
	TopicVoucherDeleted     = "voucher.deleted"
	TopicVoucherActivated = "voucher.active_changed"
)

// DefaultTopics returns the topics the log notifier reports by default.
func DefaultTopics() []string {
	return []string{
		TopicVoucherClaimed,
		TopicVoucherRedeemed,
		TopicVoucherUsed,
		TopicVoucherCreated,
		TopicVoucherUpdated,
		TopicVoucherDeleted,
		TopicVoucherActivated,
	}
}
