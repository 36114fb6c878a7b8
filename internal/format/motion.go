package format

import "fmt"

// TopicArea 辯題領域
type TopicArea string

const (
	TopicPolitics    TopicArea = "politics"
	TopicEthics      TopicArea = "ethics"
	TopicTechnology  TopicArea = "technology"
	TopicEconomics   TopicArea = "economics"
	TopicSocial      TopicArea = "social"
	TopicEnvironment TopicArea = "environment"
	TopicEducation   TopicArea = "education"
	TopicHealth      TopicArea = "health"
)

var topicLabels = map[TopicArea]string{
	TopicPolitics:    "Politics & Governance",
	TopicEthics:      "Ethics & Philosophy",
	TopicTechnology:  "Technology & Innovation",
	TopicEconomics:   "Economics & Business",
	TopicSocial:      "Social Issues",
	TopicEnvironment: "Environment & Climate",
	TopicEducation:   "Education",
	TopicHealth:      "Health & Medicine",
}

func ParseTopicArea(s string) (TopicArea, error) {
	t := TopicArea(s)
	if _, ok := topicLabels[t]; !ok {
		return "", fmt.Errorf("unknown topic area %q", s)
	}
	return t, nil
}

func (t TopicArea) Label() string {
	if l, ok := topicLabels[t]; ok {
		return l
	}
	return string(t)
}

// Difficulty 辯題難度
type Difficulty string

const (
	DifficultyNovice       Difficulty = "novice"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var difficultyDescriptions = map[Difficulty]string{
	DifficultyNovice:       "Simple, clear-cut issues with obvious stakeholders",
	DifficultyIntermediate: "Nuanced topics requiring balanced analysis",
	DifficultyAdvanced:     "Complex issues with multiple competing interests",
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if _, ok := difficultyDescriptions[d]; !ok {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

func (d Difficulty) Description() string {
	return difficultyDescriptions[d]
}

// ExperienceLevel 使用者的辯論經驗
type ExperienceLevel string

const (
	ExperienceNovice       ExperienceLevel = "novice"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch e := ExperienceLevel(s); e {
	case ExperienceNovice, ExperienceIntermediate, ExperienceAdvanced, ExperienceExpert:
		return e, nil
	default:
		return "", fmt.Errorf("unknown experience level %q", s)
	}
}
