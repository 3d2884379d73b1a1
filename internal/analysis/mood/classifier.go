package mood

import "strings"

// Mood 表示从用户话语中推断出的情绪标签，只在单次请求内有效。
type Mood string

const (
	Neutral Mood = "neutral"
	Sad     Mood = "sad"
	Tired   Mood = "tired"
)

type bucket struct {
	mood     Mood
	keywords []string
}

// buckets 按顺序检查，命中第一个即返回。
var buckets = []bucket{
	{
		mood: Sad,
		keywords: []string{
			"sad", "depressed", "lonely", "unhappy", "crying", "broken", "pain", "hurt", "grief", "hopeless",
		},
	},
	{
		mood: Tired,
		keywords: []string{
			"tired", "exhausted", "sleepy", "drained", "burnout", "fatigue", "no energy",
			"need sleep", "need some sleep", "want to sleep", "worn out",
		},
	},
}

// Classify 根据关键词推断情绪，没有命中时返回 Neutral。
func Classify(text string) Mood {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Neutral
	}

	for _, b := range buckets {
		for _, word := range b.keywords {
			if strings.Contains(normalized, word) {
				return b.mood
			}
		}
	}
	return Neutral
}

// Guidance 返回附加到系统提示词中的情绪上下文。
func (m Mood) Guidance() string {
	switch m {
	case Sad:
		return "CURRENT CONTEXT: The user is feeling SAD. Respond gently, warmly, and offer emotional support. " +
			"Avoid being too technical or robotic. Be a comforting friend."
	case Tired:
		return "CURRENT CONTEXT: The user is feeling TIRED. Keep your response brief. " +
			"Gently suggest they get some rest or sleep. Ask if they want you to set a sleep reminder."
	default:
		return ""
	}
}
