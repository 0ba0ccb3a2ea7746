package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/HyunjoonKwak/page-maker/internal/store"
)

// Input kinds for interview questions. The fixed flow only uses text, select,
// image_upload and complete; multiselect is a wire value that AI-proposed
// followup questions may carry in their input_type.
const (
	InputText        = "text"
	InputSelect      = "select"
	InputMultiSelect = "multiselect"
	InputImageUpload = "image_upload"
	InputComplete    = "complete"
)

// Question is one step of the interview, fixed or AI-proposed.
type Question struct {
	Question  string   `json:"question"`
	Options   []string `json:"options,omitempty"`
	InputType string   `json:"input_type"`
	FieldName string   `json:"field_name"`
	Optional  bool     `json:"optional,omitempty"`
}

// InterviewFlow is the fixed, ordered question list. Optional fields are
// still asked in order; only an answered key (any value) skips a question.
var InterviewFlow = []Question{
	{
		FieldName: "reference_url",
		Question:  "참고할 상세페이지 URL이 있나요? (선택사항)",
		InputType: InputText,
		Optional:  true,
	},
	{
		FieldName: "product_name",
		Question:  "어떤 상품의 상세페이지를 만들까요?",
		InputType: InputText,
	},
	{
		FieldName: "category",
		Question:  "이 상품은 어떤 카테고리에 속하나요?",
		InputType: InputSelect,
		Options:   []string{"패션/의류", "뷰티/화장품", "식품", "전자기기", "생활용품", "기타"},
	},
	{
		FieldName: "target_customer",
		Question:  "주요 구매 고객은 누구인가요?",
		InputType: InputText,
	},
	{
		FieldName: "usp",
		Question:  "이 상품만의 차별점은 무엇인가요?",
		InputType: InputText,
	},
	{
		FieldName: "price_info",
		Question:  "가격대와 프로모션 정보가 있나요?",
		InputType: InputText,
	},
	{
		FieldName: "product_images",
		Question:  "상품 이미지를 업로드해주세요 (선택사항)",
		InputType: InputImageUpload,
		Optional:  true,
	},
	{
		FieldName: "mood",
		Question:  "어떤 느낌의 디자인을 원하시나요?",
		InputType: InputSelect,
		Options:   []string{"고급스러운", "캐주얼한", "귀여운", "심플한", "전문적인"},
	},
}

// CompleteQuestion is the terminal marker returned once the interview is
// exhausted.
var CompleteQuestion = Question{
	Question:  "모든 정보가 수집되었습니다. 상세페이지를 생성할 준비가 되었습니다!",
	InputType: InputComplete,
	FieldName: "complete",
}

// InterviewService walks a session through the fixed flow, delegates to the
// text generator for adaptive followups, and marks completion.
type InterviewService struct {
	dbStore *store.SQLiteStore
	textGen TextGenerator // nil when no credential is configured
}

func NewInterviewService(db *store.SQLiteStore, textGen TextGenerator) *InterviewService {
	return &InterviewService{dbStore: db, textGen: textGen}
}

// CreateSession starts a new interview run, optionally seeded with a
// reference URL.
func (s *InterviewService) CreateSession(referenceURL string) (*store.Session, error) {
	contextMap := store.Context{}
	if referenceURL != "" {
		contextMap["reference_url"] = store.StringValue(referenceURL)
	}
	return s.dbStore.CreateSession(contextMap)
}

func (s *InterviewService) GetSession(sessionID string) (*store.Session, error) {
	session, err := s.dbStore.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// NextQuestion returns the first unanswered fixed question, then at most one
// adaptive followup per call, then the completion marker. Only the terminal
// path mutates the session; everything before it is a pure read.
func (s *InterviewService) NextQuestion(ctx context.Context, sessionID string) (*Question, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	for _, q := range InterviewFlow {
		if !session.Context.Has(q.FieldName) {
			question := q
			return &question, nil
		}
	}

	// All fixed questions answered - ask the AI for a followup. The followup
	// is transient: it is re-evaluated fresh on every call and never joins
	// the fixed list.
	followup := s.generateFollowupQuestion(ctx, session.Context)
	if followup != nil {
		return followup, nil
	}

	if session.Status != store.StatusCompleted {
		if err := s.dbStore.UpdateSessionStatus(sessionID, store.StatusCompleted); err != nil {
			return nil, fmt.Errorf("failed to mark session completed: %w", err)
		}
	}

	complete := CompleteQuestion
	return &complete, nil
}

// SubmitAnswer merges one answer into the context, last write wins. Any
// field name is accepted, including AI-proposed ones. The merge goes through
// a fresh copy so the stored mapping is replaced rather than mutated.
func (s *InterviewService) SubmitAnswer(sessionID string, fieldName string, value store.Value) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}

	updated := session.Context.Clone()
	updated[fieldName] = value
	return s.dbStore.UpdateSessionContext(sessionID, updated)
}

const followupPromptFormat = `
현재까지 수집된 상품 정보:
%s

위 정보를 바탕으로, 상세페이지 생성에 필요한 추가 정보가 있다면
1개의 후속 질문을 생성하세요.

충분한 정보가 수집되었다면 "COMPLETE"라고만 응답하세요.

후속 질문이 필요하다면 다음 JSON 형식으로 응답하세요:
{
    "question": "질문 내용",
    "field_name": "필드명 (영문, snake_case)",
    "input_type": "text 또는 select",
    "options": ["옵션1", "옵션2"]  // select인 경우만
}
`

// generateFollowupQuestion asks the text generator for one more question.
// nil means the interview is sufficient: no generator configured, an
// explicit COMPLETE, a transport error, or an unparseable response all end
// the interview rather than block it.
func (s *InterviewService) generateFollowupQuestion(ctx context.Context, contextMap store.Context) *Question {
	if s.textGen == nil {
		return nil
	}

	contextJSON, err := json.Marshal(contextMap)
	if err != nil {
		log.Printf("Failed to marshal context for followup prompt: %v", err)
		return nil
	}

	response, err := s.textGen.GenerateText(ctx, fmt.Sprintf(followupPromptFormat, contextJSON))
	if err != nil {
		log.Printf("Followup question generation failed, completing interview: %v", err)
		return nil
	}

	response = stripJSONFences(strings.TrimSpace(response))
	if response == "COMPLETE" {
		return nil
	}

	var q Question
	if err := json.Unmarshal([]byte(response), &q); err != nil {
		log.Printf("Could not parse followup question, completing interview: %v", err)
		return nil
	}
	if q.Question == "" || q.FieldName == "" {
		return nil
	}
	if q.InputType == "" {
		q.InputType = InputText
	}
	return &q
}

// stripJSONFences removes a markdown code fence wrapping, which the model
// adds despite the prompt asking for bare JSON.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
