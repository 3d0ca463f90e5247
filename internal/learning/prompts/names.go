package prompts

type PromptName string

const (
	// Video
	PromptVideoScript     PromptName = "video_script"
	PromptVideoStoryboard PromptName = "video_storyboard"

	// Quiz
	PromptQuizQuestions PromptName = "quiz_questions"
	PromptQuizFeedback  PromptName = "quiz_feedback"
)

type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)
