package eventbus

// 기능별 기본 토픽. 필요시 환경설정으로 교체할 수 있도록 한 곳에서 관리한다.
var (
	TopicPoemEvents = NewTopic("poemas.poem.events")
)

var AllTopics = []Topic{
	TopicPoemEvents,
}
