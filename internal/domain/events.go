package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
)

const (
	EventReferralLinkCreated = "affiliate.referral_link.created"
	EventReferralClicked     = "affiliate.referral.clicked"
	EventConversionRecorded  = "affiliate.conversion.recorded"
	EventCommissionReviewed  = "affiliate.commission.reviewed"
	EventApplicationReviewed = "affiliate.application.reviewed"
	EventOrderCompleted      = "order.completed"
)

func IsCanonicalInputEvent(eventType string) bool {
	return eventType == EventOrderCompleted
}

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventReferralLinkCreated, EventReferralClicked, EventConversionRecorded, EventCommissionReviewed, EventApplicationReviewed:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	switch eventType {
	case EventReferralClicked:
		return CanonicalEventClassAnalyticsOnly
	default:
		if IsCanonicalEmittedEvent(eventType) {
			return CanonicalEventClassDomain
		}
		return ""
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	if IsCanonicalEmittedEvent(eventType) {
		return "data.affiliate_id"
	}
	return ""
}
