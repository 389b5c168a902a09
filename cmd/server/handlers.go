package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/medch24/planpei/internal/exam"
	"github.com/medch24/planpei/internal/export"
	"github.com/medch24/planpei/internal/fetch"
	"github.com/medch24/planpei/internal/plan"
	"github.com/medch24/planpei/internal/platform/cache"
	"github.com/medch24/planpei/internal/platform/config"
	"github.com/medch24/planpei/internal/platform/database"
	"github.com/medch24/planpei/internal/reference"
	"github.com/medch24/planpei/internal/store"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    store.Store
	db       *database.DB
	cache    *cache.Cache
	ref      *reference.Data
	planGen  *plan.Generator
	examGen  *exam.Generator
	loader   *fetch.Loader
	exporter *export.Exporter
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/plans/generate", s.handleGeneratePlan)
	mux.HandleFunc("POST /api/plans/generate-course", s.handleGenerateCourse)
	mux.HandleFunc("POST /api/plans", s.handleSavePlan)
	mux.HandleFunc("GET /api/plans", s.handleListPlans)
	mux.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)
	mux.HandleFunc("DELETE /api/plans/{id}", s.handleDeletePlan)
	mux.HandleFunc("POST /api/plans/{id}/export", s.handleExportPlan)
	mux.HandleFunc("POST /api/plans/{id}/export-assessments", s.handleExportAssessments)
	mux.HandleFunc("POST /api/plans/export-consolidated", s.handleExportConsolidated)

	mux.HandleFunc("POST /api/suggest/statement", s.handleSuggestStatement)
	mux.HandleFunc("POST /api/suggest/questions", s.handleSuggestQuestions)

	mux.HandleFunc("POST /api/exams/generate", s.handleGenerateExam)
	mux.HandleFunc("POST /api/exams", s.handleSaveExam)
	mux.HandleFunc("GET /api/exams", s.handleListExams)
	mux.HandleFunc("GET /api/exams/{id}", s.handleGetExam)
	mux.HandleFunc("DELETE /api/exams/{id}", s.handleDeleteExam)
	mux.HandleFunc("POST /api/exams/{id}/export", s.handleExportExam)

	return mux
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
	}
	if s.cache != nil {
		if err := s.cache.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "cache unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type generateRequest struct {
	Subject  string `json:"subject"`
	Grade    string `json:"grade"`
	Chapters string `json:"chapters"`
}

func (r generateRequest) validate() error {
	if r.Subject == "" || r.Grade == "" {
		return fmt.Errorf("subject and grade are required")
	}
	return nil
}

func (s *server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.ref.HasSubject(req.Subject) {
		s.logger.Warn("subject not in reference catalogue", "subject", req.Subject)
	}

	p, err := s.planGen.GeneratePlan(r.Context(), req.Subject, req.Grade, req.Chapters)
	if err != nil {
		s.logger.Error("plan generation failed", "subject", req.Subject, "grade", req.Grade, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleGenerateCourse(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	plans, err := s.planGen.GenerateCourse(r.Context(), req.Subject, req.Grade, req.Chapters)
	if err != nil {
		s.logger.Error("course generation failed", "subject", req.Subject, "grade", req.Grade, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

type savePlanRequest struct {
	Subject string         `json:"subject"`
	Grade   string         `json:"grade"`
	Data    map[string]any `json:"data"`
}

func (s *server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var req savePlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Subject == "" || req.Grade == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("subject and grade are required"))
		return
	}

	p := plan.Normalize(req.Data, req.Subject, req.Grade)
	if err := s.store.SavePlan(r.Context(), &p); err != nil {
		if errors.Is(err, store.ErrNotSaveable) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.logger.Error("plan save failed", "id", p.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context(), r.URL.Query().Get("subject"), r.URL.Query().Get("grade"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if plans == nil {
		plans = []*plan.UnitPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeletePlan(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleExportPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}

	tpl, err := s.loader.Fetch(r.Context(), s.cfg.Templates.PlanURL)
	if err != nil {
		s.logger.Error("plan template fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	doc, err := s.exporter.PlanDocument(tpl, p)
	if err != nil {
		s.logger.Error("plan export failed", "id", p.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeFile(w, export.PlanFilename(p.Title), docxContentType, doc)
}

func (s *server) handleExportAssessments(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPlan(w, r)
	if !ok {
		return
	}

	tpl, err := s.loader.Fetch(r.Context(), s.cfg.Templates.AssessmentURL)
	if err != nil {
		s.logger.Error("assessment template fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	archive, err := s.exporter.AssessmentArchive(tpl, p)
	if err != nil {
		s.logger.Error("assessment archive failed", "id", p.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeFile(w, export.ArchiveFilename(p.Title), "application/zip", archive)
}

func (s *server) handleExportConsolidated(w http.ResponseWriter, r *http.Request) {
	grade := r.URL.Query().Get("grade")
	if grade == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("grade is required"))
		return
	}

	plans, err := s.store.ListPlans(r.Context(), "", grade)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	doc, err := s.exporter.ConsolidatedDocument(plans, grade)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeFile(w, export.PlanFilename("Consolidation_"+grade), docxContentType, doc)
}

type suggestStatementRequest struct {
	Subject         string   `json:"subject"`
	KeyConcept      string   `json:"keyConcept"`
	RelatedConcepts []string `json:"relatedConcepts"`
	GlobalContext   string   `json:"globalContext"`
}

func (s *server) handleSuggestStatement(w http.ResponseWriter, r *http.Request) {
	var req suggestStatementRequest
	if !s.decode(w, r, &req) {
		return
	}

	soi, err := s.planGen.SuggestStatement(r.Context(), req.Subject, req.KeyConcept, req.RelatedConcepts, req.GlobalContext)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"statementOfInquiry": soi})
}

type suggestQuestionsRequest struct {
	Subject   string `json:"subject"`
	Statement string `json:"statement"`
}

func (s *server) handleSuggestQuestions(w http.ResponseWriter, r *http.Request) {
	var req suggestQuestionsRequest
	if !s.decode(w, r, &req) {
		return
	}

	iq, err := s.planGen.SuggestInquiryQuestions(r.Context(), req.Subject, req.Statement)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, iq)
}

type generateExamRequest struct {
	Subject       string `json:"subject"`
	Grade         string `json:"grade"`
	Semester      string `json:"semester"`
	TeacherName   string `json:"teacherName"`
	ClassName     string `json:"className"`
	Difficulty    string `json:"difficulty"`
	Chapters      string `json:"chapters"`
	TotalPoints   int    `json:"totalPoints"`
	BothSemesters bool   `json:"bothSemesters"`
}

func (s *server) handleGenerateExam(w http.ResponseWriter, r *http.Request) {
	var req generateExamRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Subject == "" || req.Grade == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("subject and grade are required"))
		return
	}

	genReq := exam.Request{
		Subject:     req.Subject,
		Grade:       req.Grade,
		Semester:    req.Semester,
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		Difficulty:  req.Difficulty,
		Chapters:    req.Chapters,
		TotalPoints: req.TotalPoints,
	}

	if req.BothSemesters {
		first, second, err := s.examGen.GenerateSemesterPair(r.Context(), genReq)
		if err != nil {
			s.logger.Error("exam pair generation failed", "subject", req.Subject, "error", err)
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, []exam.Exam{first, second})
		return
	}

	e, err := s.examGen.Generate(r.Context(), genReq)
	if err != nil {
		s.logger.Error("exam generation failed", "subject", req.Subject, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type saveExamRequest struct {
	Subject     string         `json:"subject"`
	Grade       string         `json:"grade"`
	Semester    string         `json:"semester"`
	TeacherName string         `json:"teacherName"`
	ClassName   string         `json:"className"`
	Data        map[string]any `json:"data"`
}

func (s *server) handleSaveExam(w http.ResponseWriter, r *http.Request) {
	var req saveExamRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Subject == "" || req.Grade == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("subject and grade are required"))
		return
	}

	e := exam.Normalize(req.Data, exam.Context{
		Subject:     req.Subject,
		Grade:       req.Grade,
		Semester:    req.Semester,
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
	})
	if err := s.store.SaveExam(r.Context(), &e); err != nil {
		s.logger.Error("exam save failed", "id", e.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := s.store.ListExams(r.Context(), r.URL.Query().Get("subject"), r.URL.Query().Get("grade"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if exams == nil {
		exams = []*exam.Exam{}
	}
	writeJSON(w, http.StatusOK, exams)
}

func (s *server) handleGetExam(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadExam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteExam(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleExportExam(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadExam(w, r)
	if !ok {
		return
	}
	withAnswers := r.URL.Query().Get("answers") == "1"

	doc, err := s.exporter.ExamDocument(e, withAnswers)
	if err != nil {
		s.logger.Error("exam export failed", "id", e.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	name := export.ExamFilename(e.Subject, e.Grade, e.Semester)
	if withAnswers {
		name = export.CorrectionFilename(e.Subject, e.Grade, e.Semester)
	}
	writeFile(w, name, docxContentType, doc)
}

func (s *server) loadPlan(w http.ResponseWriter, r *http.Request) (*plan.UnitPlan, bool) {
	p, err := s.store.GetPlan(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return p, true
}

func (s *server) loadExam(w http.ResponseWriter, r *http.Request) (*exam.Exam, bool) {
	e, err := s.store.GetExam(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return e, true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeFile(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
