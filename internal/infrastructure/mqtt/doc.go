// Package mqtt provides MQTT publishing for FleetAuth.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// FleetAuth does not send mail or push notifications itself. It publishes
// requests and events to the broker and downstream workers act on them:
//
//	FleetAuth → MQTT Broker → mailer, dashboard, analytics
//
// Topics live under "fleetauth/". See Topics for the builders.
//
// # Security Considerations
//
//   - TLS should be enabled for any non-local broker (cfg.Broker.TLS=true)
//   - Verification payloads carry single-use tokens; restrict the
//     fleetauth/mail/# ACL to the mailer
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.TeamEvents("Acme"), event)
package mqtt
