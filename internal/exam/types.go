// Package exam holds the canonical exam records, their generation prompts
// and the normalization that repairs AI output into printable exams.
package exam

// Question types an exam may contain. Unknown types normalize to TypeLongAnswer.
const (
	TypeQCM         = "QCM"
	TypeTrueFalse   = "Vrai-Faux"
	TypeFillBlanks  = "Textes à trous"
	TypeLabel       = "Légender"
	TypeMatch       = "Relier par flèche"
	TypeDefinitions = "Définitions"
	TypeDocAnalysis = "Analyse de documents"
	TypeLongAnswer  = "Réponse longue"
	TypeProblem     = "Problème"
)

// DefaultTotalPoints is the point total every exam is corrected to.
const DefaultTotalPoints = 30

// Exam is a canonical, printable exam.
type Exam struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	Semester    string `json:"semester"`
	TeacherName string `json:"teacherName"`
	ClassName   string `json:"className"`
	Duration    string `json:"duration"`
	Difficulty  string `json:"difficulty"`
	Style       string `json:"style"`
	TotalPoints int    `json:"totalPoints"`

	Resources []Resource `json:"resources"`
	Questions []Question `json:"questions"`
}

// Resource is supporting material attached to an exam or one of its
// questions: a text extract, a table, or a placeholder for an image or
// graph to insert by hand.
type Resource struct {
	Title            string `json:"title"`
	Type             string `json:"type"`
	Content          string `json:"content"`
	ImageDescription string `json:"imageDescription,omitempty"`
}

// Question is one exam question. Fields beyond the common set are only
// meaningful for some types: Options for QCM, Statements for Vrai-Faux,
// ExpectedLines for written answers.
type Question struct {
	ID                 string      `json:"id"`
	Section            string      `json:"section"`
	Type               string      `json:"type"`
	Title              string      `json:"title"`
	Content            string      `json:"content"`
	Resource           *Resource   `json:"resource,omitempty"`
	Points             int         `json:"points"`
	PointsPerStatement float64     `json:"pointsPerStatement,omitempty"`
	Options            []string    `json:"options"`
	CorrectAnswer      string      `json:"correctAnswer"`
	Statements         []Statement `json:"statements"`
	ExpectedLines      int         `json:"expectedLines"`
	Answer             string      `json:"answer"`
	IsDifferentiation  bool        `json:"isDifferentiation"`
}

// Statement is one Vrai-Faux item.
type Statement struct {
	Statement string `json:"statement"`
	IsTrue    bool   `json:"isTrue"`
}

// PointsSum returns the sum of question points.
func (e *Exam) PointsSum() int {
	sum := 0
	for _, q := range e.Questions {
		sum += q.Points
	}
	return sum
}

var knownTypes = map[string]bool{
	TypeQCM: true, TypeTrueFalse: true, TypeFillBlanks: true,
	TypeLabel: true, TypeMatch: true, TypeDefinitions: true,
	TypeDocAnalysis: true, TypeLongAnswer: true, TypeProblem: true,
}
