package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes.
const (
	// TopicPrefix is the base for all FleetAuth topics.
	TopicPrefix = "fleetauth"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixMail is the base for outbound mail requests.
	TopicPrefixMail = TopicPrefix + "/mail"

	// TopicPrefixEvents is the base for domain events.
	TopicPrefixEvents = TopicPrefix + "/events"
)

// Topics provides builders for FleetAuth MQTT topics.
//
//	topic := mqtt.Topics{}.TeamEvents("Acme Haulage")
//	// Returns: "fleetauth/events/team/acme_haulage"
type Topics struct{}

// SystemStatus returns the retained system status topic.
//
// Example: fleetauth/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// MailVerification returns the topic the mailer consumes verification
// requests from.
//
// Example: fleetauth/mail/verification
func (Topics) MailVerification() string {
	return TopicPrefixMail + "/verification"
}

// TeamEvents returns the membership event topic for one company.
//
// Example: fleetauth/events/team/acme_haulage
func (Topics) TeamEvents(company string) string {
	return fmt.Sprintf("%s/team/%s", TopicPrefixEvents, Segment(company))
}

// AuthEvents returns the topic for session events of one kind.
//
// Example: fleetauth/events/auth/login
func (Topics) AuthEvents(kind string) string {
	return fmt.Sprintf("%s/auth/%s", TopicPrefixEvents, Segment(kind))
}

// Segment turns a free-form name into a single topic level: lowercased,
// with separators, wildcards and whitespace replaced by underscores.
func Segment(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '+' || r == '#' || r == 0:
			return '_'
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return '_'
		default:
			return r
		}
	}, name)
}
