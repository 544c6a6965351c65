package mqtt

import "fmt"

// Topic prefixes for the verifier's MQTT hierarchy.
//
//	shelley/system/status            retained online/offline status (LWT)
//	shelley/verify/request           manifests submitted for verification
//	shelley/verify/{device}/result   retained verdict per device
const (
	// TopicPrefix is the base of every verifier topic.
	TopicPrefix = "shelley"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixVerify is the base for verification topics.
	TopicPrefixVerify = TopicPrefix + "/verify"
)

// Topics provides builders for verifier MQTT topics.
//
//	topic := mqtt.Topics{}.VerifyResult("DeskLamp")
//	// Returns: "shelley/verify/DeskLamp/result"
type Topics struct{}

// SystemStatus returns the system status topic.
//
// Example: shelley/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// VerifyRequest returns the topic manifests are submitted on.
//
// Example: shelley/verify/request
func (Topics) VerifyRequest() string {
	return TopicPrefixVerify + "/request"
}

// VerifyResult returns the topic carrying the latest verdict for a device.
//
// Example: shelley/verify/DeskLamp/result
func (Topics) VerifyResult(device string) string {
	return fmt.Sprintf("%s/%s/result", TopicPrefixVerify, device)
}

// AllVerifyResults returns a pattern matching every device verdict.
//
// Pattern: shelley/verify/+/result
func (Topics) AllVerifyResults() string {
	return TopicPrefixVerify + "/+/result"
}

// AllTopics returns a pattern matching all verifier topics.
//
// Pattern: shelley/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
