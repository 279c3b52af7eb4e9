package session

import (
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// QuestionView is a question as the learner sees it: answer keys and
// alternates are removed and shuffled columns are in session order.
type QuestionView struct {
	ID           string               `json:"id"`
	Type         models.QuestionType  `json:"type"`
	Question     string               `json:"question"`
	Images       []string             `json:"images,omitempty"`
	TTSAudio     string               `json:"ttsAudio,omitempty"`
	Hint         string               `json:"hint,omitempty"`
	Options      []string             `json:"options,omitempty"`
	MultiAnswer  bool                 `json:"multiAnswer,omitempty"`
	Blanks       int                  `json:"blanks,omitempty"`
	Left         []string             `json:"left,omitempty"`
	Right        []string             `json:"right,omitempty"`
	ReorderItems []models.ReorderItem `json:"reorderItems,omitempty"`
	Passage      string               `json:"passage,omitempty"`
	SubQuestions []QuestionView       `json:"subQuestions,omitempty"`
}

// Present builds the learner-facing view of q.
func (c *Context) Present(q *models.Question) QuestionView {
	view := QuestionView{
		ID:       q.ID,
		Type:     q.Type,
		Question: q.Question,
		Images:   q.Images,
		TTSAudio: q.TTSAudio,
		Hint:     q.Settings().Hint,
	}

	switch q.Type {
	case models.MultipleChoice:
		view.Options = q.Options
		view.MultiAnswer = q.MultiAnswer
	case models.Identification:
		if q.Answer != nil && q.Answer.List && len(q.Answer.Values) > 1 {
			view.Blanks = len(q.Answer.Values)
		}
	case models.Matching:
		perm := c.Arrangement(q.ID+"/right", len(q.Pairs))
		view.Left = make([]string, len(q.Pairs))
		view.Right = make([]string, len(q.Pairs))
		for i, pair := range q.Pairs {
			view.Left[i] = pair.Left
			view.Right[i] = q.Pairs[perm[i]].Right
		}
	case models.ReOrder:
		perm := c.Arrangement(q.ID+"/items", len(q.ReorderItems))
		view.ReorderItems = make([]models.ReorderItem, len(q.ReorderItems))
		for i, p := range perm {
			view.ReorderItems[i] = q.ReorderItems[p]
		}
	case models.ReadingPassage:
		view.Passage = q.Passage
		view.SubQuestions = make([]QuestionView, len(q.SubQuestions))
		for i := range q.SubQuestions {
			view.SubQuestions[i] = c.Present(&q.SubQuestions[i])
		}
	}
	return view
}
