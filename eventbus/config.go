package eventbus

import (
	"os"
	"strconv"
	"strings"

	"poemas-versos/config"
)

// GetBrokers returns Kafka bootstrap servers from env KAFKA_BOOTSTRAP_SERVERS.
// Panics when unset; use LookupBrokers where Kafka is optional.
func GetBrokers() string {
	v, ok := LookupBrokers()
	if !ok {
		panic("KAFKA_BOOTSTRAP_SERVERS environment variable is required")
	}
	return v
}

// LookupBrokers reports whether KAFKA_BOOTSTRAP_SERVERS is set.
func LookupBrokers() (string, bool) {
	v := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS"))
	return v, v != ""
}

// GetGroupID returns consumer group id from env KAFKA_GROUP_ID
func GetGroupID() string {
	v := os.Getenv("KAFKA_GROUP_ID")
	if v == "" {
		panic("KAFKA_GROUP_ID environment variable is required")
	}
	return v
}

// envPositiveInt 는 양의 정수 환경변수를 읽는다. 없거나 잘못되면 0.
func envPositiveInt(key string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		config.Logger.Warnf("%s 환경변수 값이 올바르지 않습니다(%q). 기본값 사용.", key, raw)
		return 0
	}
	return v
}

// EmbeddedReinjectorEnabled reports whether consumers should run their own
// retry reinjector. Set EVENTBUS_EMBEDDED_REINJECTOR=false when cmd/retryworker
// is deployed so retry topics are drained only once.
func EmbeddedReinjectorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("EVENTBUS_EMBEDDED_REINJECTOR"))) {
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}
