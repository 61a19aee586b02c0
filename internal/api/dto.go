package api

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

// Requests

type setTierRequest struct {
	Tier        string `json:"tier" binding:"required"`
	DisplayName string `json:"displayName"`
}

type quizRequest struct {
	Sport    string `json:"sport" binding:"required"`
	Position string `json:"position" binding:"required"`
}

type generateRequest struct {
	Sport    string `json:"sport" binding:"required"`
	Position string `json:"position" binding:"required"`
	UseAI    bool   `json:"useAI"`
}

type answerRequest struct {
	QuestionID     int64  `json:"questionId" binding:"required"`
	SelectedAnswer string `json:"selectedAnswer"`
	TimeTaken      *int   `json:"timeTaken"`
}

type submitRequest struct {
	Answers        []answerRequest `json:"answers" binding:"required"`
	TotalTimeTaken *int            `json:"totalTimeTaken"`
}

func (r submitRequest) submission() quiz.Submission {
	sub := quiz.Submission{TotalTimeTaken: r.TotalTimeTaken}
	for _, a := range r.Answers {
		sub.Answers = append(sub.Answers, quiz.Answer{
			QuestionID:     a.QuestionID,
			SelectedAnswer: a.SelectedAnswer,
			TimeTaken:      a.TimeTaken,
		})
	}
	return sub
}

type coachRequest struct {
	Sport    string `json:"sport"`
	Position string `json:"position"`
	Message  string `json:"message" binding:"required"`
}

// Responses

type userResponse struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName,omitempty"`
	Tier        store.Tier `json:"tier"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type sessionResponse struct {
	ID            string            `json:"id"`
	Kind          store.SessionKind `json:"kind"`
	Sport         string            `json:"sport"`
	Position      string            `json:"position"`
	Sequence      int               `json:"sequence"`
	Name          string            `json:"name"`
	QuestionIDs   []int64           `json:"questionIds"`
	IsCompleted   bool              `json:"isCompleted"`
	BestScore     int               `json:"bestScore"`
	BestAttemptID string            `json:"bestAttemptId,omitempty"`
	TotalAttempts int               `json:"totalAttempts"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type attemptResponse struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	AttemptNumber  int       `json:"attemptNumber"`
	TotalScore     int       `json:"totalScore"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	TotalTimeTaken *int      `json:"totalTimeTaken,omitempty"`
	CompletedAt    time.Time `json:"completedAt"`
	Passed         bool      `json:"passed"`
}

type sessionSummaryResponse struct {
	Session       sessionResponse   `json:"session"`
	Attempts      []attemptResponse `json:"attempts"`
	TotalAttempts int               `json:"totalAttempts"`
	BestScore     int               `json:"bestScore"`
	LatestScore   int               `json:"latestScore"`
	Passed        bool              `json:"passed"`
}

// questionView is a question as shown while answering: no correct option
// and no explanation.
type questionView struct {
	ID         int64          `json:"id"`
	CategoryID int64          `json:"categoryId"`
	Scenario   string         `json:"scenario"`
	Question   string         `json:"question"`
	Options    []store.Option `json:"options"`
	Difficulty string         `json:"difficulty"`
	Tags       []string       `json:"tags"`
}

type startResponse struct {
	Session           sessionResponse `json:"session"`
	Questions         []questionView  `json:"questions"`
	NextAttemptNumber int             `json:"nextAttemptNumber"`
}

type resultResponse struct {
	QuestionID     int64          `json:"questionId"`
	Position       int            `json:"position"`
	Scenario       string         `json:"scenario"`
	Question       string         `json:"question"`
	Options        []store.Option `json:"options"`
	SelectedAnswer string         `json:"selectedAnswer"`
	CorrectOption  string         `json:"correctOption"`
	IsCorrect      bool           `json:"isCorrect"`
	Explanation    string         `json:"explanation"`
	TimeTaken      *int           `json:"timeTaken,omitempty"`
}

type attemptDetailResponse struct {
	Attempt attemptResponse  `json:"attempt"`
	Results []resultResponse `json:"results"`
}

type canGenerateResponse struct {
	CanGenerate bool          `json:"canGenerate"`
	Progress    quiz.Progress `json:"progress"`
	Message     string        `json:"message"`
}

type errorResponse struct {
	Kind           string `json:"kind"`
	Code           string `json:"code,omitempty"`
	Message        string `json:"message"`
	SpentCents     *int64 `json:"spentCents,omitempty"`
	CapCents       *int64 `json:"capCents,omitempty"`
	RemainingCents *int64 `json:"remainingCents,omitempty"`
}

func toUser(u *store.User) (userResponse, error) {
	var out userResponse
	err := copier.Copy(&out, u)
	return out, err
}

func toSession(s *store.Session) (sessionResponse, error) {
	var out sessionResponse
	if err := copier.Copy(&out, s); err != nil {
		return out, err
	}
	if out.QuestionIDs == nil {
		out.QuestionIDs = []int64{}
	}
	return out, nil
}

func toAttempt(a *store.Attempt) (attemptResponse, error) {
	var out attemptResponse
	if err := copier.Copy(&out, a); err != nil {
		return out, err
	}
	out.Passed = quiz.Passed(a.TotalScore)
	return out, nil
}

func toSummaries(in []quiz.SessionSummary) ([]sessionSummaryResponse, error) {
	out := make([]sessionSummaryResponse, 0, len(in))
	for i := range in {
		sess, err := toSession(&in[i].Session)
		if err != nil {
			return nil, err
		}
		attempts := make([]attemptResponse, 0, len(in[i].Attempts))
		for j := range in[i].Attempts {
			a, err := toAttempt(&in[i].Attempts[j])
			if err != nil {
				return nil, err
			}
			attempts = append(attempts, a)
		}
		out = append(out, sessionSummaryResponse{
			Session:       sess,
			Attempts:      attempts,
			TotalAttempts: in[i].TotalAttempts,
			BestScore:     in[i].BestScore,
			LatestScore:   in[i].LatestScore,
			Passed:        in[i].Passed,
		})
	}
	return out, nil
}

func toStart(st *quiz.AttemptStart) (startResponse, error) {
	sess, err := toSession(&st.Session)
	if err != nil {
		return startResponse{}, err
	}
	views := []questionView{}
	if err := copier.Copy(&views, &st.Questions); err != nil {
		return startResponse{}, err
	}
	return startResponse{Session: sess, Questions: views, NextAttemptNumber: st.NextAttemptNumber}, nil
}

func toAttemptDetail(d *quiz.AttemptDetail) (attemptDetailResponse, error) {
	a, err := toAttempt(&d.Attempt)
	if err != nil {
		return attemptDetailResponse{}, err
	}
	out := attemptDetailResponse{Attempt: a, Results: make([]resultResponse, 0, len(d.Results))}
	for i, r := range d.Results {
		rr := resultResponse{
			QuestionID:     r.QuestionID,
			Position:       r.Position,
			SelectedAnswer: r.SelectedAnswer,
			IsCorrect:      r.IsCorrect,
			TimeTaken:      r.TimeTaken,
		}
		if i < len(d.Questions) {
			q := d.Questions[i]
			rr.Scenario = q.Scenario
			rr.Question = q.Question
			rr.Options = q.Options
			rr.CorrectOption = q.CorrectOption
			rr.Explanation = q.Explanation
		}
		out.Results = append(out.Results, rr)
	}
	return out, nil
}
