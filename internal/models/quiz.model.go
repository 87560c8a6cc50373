package models

type QuizAttempt struct {
	BaseUUIDModel
	UserID string `gorm:"type:varchar(64);not null;index" json:"userId"`
	Score  int    `gorm:"not null"                        json:"score"`
	Total  int    `gorm:"not null"                        json:"total"`
}

type QuizAttemptRequest struct {
	Answers []string `json:"answers"`
}

// QuizQuestion is served to clients without its answer.
type QuizQuestion struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

type QuizFeedback struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type QuizAnswerResult struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

type QuizResult struct {
	AttemptID  string             `json:"attemptId"`
	Score      int                `json:"score"`
	Total      int                `json:"total"`
	Percentage int                `json:"percentage"`
	Feedback   QuizFeedback       `json:"feedback"`
	Results    []QuizAnswerResult `json:"results"`
}
