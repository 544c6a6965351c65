// Package mqtt provides MQTT client connectivity for the Shelley verifier.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing verification verdicts as retained messages
//   - Receiving manifests submitted for verification
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// The bus is optional. When enabled, tools that generate device manifests
// publish them on shelley/verify/request and watch
// shelley/verify/{device}/result for the verdict:
//
//	Manifest producers -> MQTT Broker -> Verifier -> MQTT Broker -> Result consumers
//
// # Security Considerations
//
//   - TLS should be enabled outside local development (cfg.Broker.TLS=true)
//   - Credentials are validated against the broker ACL
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.VerifyRequest(), 1,
//	    func(topic string, payload []byte) error {
//	        return handleManifest(payload)
//	    })
//
//	client.PublishVerification("DeskLamp", verdictJSON)
package mqtt
