package eventbus

import (
	"strconv"
	"strings"
	"time"
)

// ParseRetryCountFromTopicName 은 "<base>.retry.<n>" 에서 n 을 꺼낸다.
func ParseRetryCountFromTopicName(name string) (int, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[idx+7:])
	if err != nil || n <= 0 || n > len(RetryDelays) {
		return 0, false
	}
	return n, true
}

// ParseRetryDelayFromTopicName 은 재시도 토픽 이름에 대응하는 지연 시간을 반환한다.
func ParseRetryDelayFromTopicName(name string) (time.Duration, bool) {
	n, ok := ParseRetryCountFromTopicName(name)
	if !ok {
		return 0, false
	}
	return RetryDelays[n-1], true
}
