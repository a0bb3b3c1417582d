// Package notify delivers verification requests and membership events to
// downstream consumers.
//
// FleetAuth never talks SMTP. A verification request is published to
// fleetauth/mail/verification and a mailer service turns it into an
// email; membership changes go to fleetauth/events/team/{company}.
// When MQTT is disabled, the Log notifier writes the same payloads to the
// service log so a developer can pick the link up by hand.
package notify
