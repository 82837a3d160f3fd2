package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"thingmadurinn/internal/domain"
	"thingmadurinn/internal/infra/memory"
	"thingmadurinn/internal/quiz"
	"thingmadurinn/internal/token"
)

func TestQuestionGuessRoundtrip(t *testing.T) {
	server, codec := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/question?mode=identity&difficulty=4")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("question status %d", resp.StatusCode)
	}

	var q domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	if len(q.Options) != 4 || q.Token == "" || q.Mode != domain.ModeIdentity || q.Difficulty != 4 {
		t.Fatalf("unexpected question %+v", q)
	}

	correctKey, _, err := codec.Verify(q.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	// A numeric answer JSON value must compare like its string form.
	verdict := postGuessRequest(t, server.URL, []byte(`{"token":"`+q.Token+`","answer":`+correctKey+`}`), http.StatusOK)
	if !verdict.Correct || verdict.AnswerKey != correctKey {
		t.Fatalf("expected correct verdict, got %+v", verdict)
	}

	for _, opt := range q.Options {
		if opt.Key == correctKey {
			continue
		}
		verdict := postGuessRequest(t, server.URL, []byte(`{"token":"`+q.Token+`","answer":"`+opt.Key+`"}`), http.StatusOK)
		if verdict.Correct {
			t.Fatalf("wrong option %q judged correct", opt.Key)
		}
	}
}

func TestGuessValidation(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	for name, body := range map[string]string{
		"missing answer": `{"token":"whatever"}`,
		"missing token":  `{"answer":"42"}`,
		"not json":       `{{{`,
		"null answer":    `{"token":"whatever","answer":null}`,
	} {
		resp, err := http.Post(server.URL+"/api/guess", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", name, resp.StatusCode)
		}
	}
}

func TestGuessRejectsTamperedToken(t *testing.T) {
	server, codec := newTestServer(t)
	defer server.Close()

	tok, err := codec.Mint("1", domain.QuestionIdentity)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	tampered := tok[:len(tok)-2] + "xx"

	resp, err := http.Post(server.URL+"/api/guess", "application/json",
		bytes.NewBufferString(`{"token":"`+tampered+`","answer":"1"}`))
	if err != nil {
		t.Fatalf("post guess: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestHighScoreWriteAndScopedRead(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/highscores", "application/json",
		bytes.NewBufferString(`{"initials":"abcdef","score":10,"gameMode":"party","difficulty":3}`))
	if err != nil {
		t.Fatalf("post score: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var board boardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if len(board.Scores) != 1 || board.Scores[0].Initials != "abc" || board.Scores[0].Score != 10 {
		t.Fatalf("unexpected board %+v", board)
	}

	if got := fetchBoard(t, server.URL, "party", 3); len(got.Scores) != 1 {
		t.Fatalf("scope party/3 should contain the entry: %+v", got)
	}
	if got := fetchBoard(t, server.URL, "identity", 3); len(got.Scores) != 0 {
		t.Fatalf("scope identity/3 should be empty: %+v", got)
	}
}

func TestHighScoreRejectsBadScores(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	for name, body := range map[string]string{
		"zero":        `{"initials":"abc","score":0,"gameMode":"party","difficulty":3}`,
		"negative":    `{"initials":"abc","score":-1,"gameMode":"party","difficulty":3}`,
		"non-numeric": `{"initials":"abc","score":"ten","gameMode":"party","difficulty":3}`,
		"missing":     `{"initials":"abc","gameMode":"party","difficulty":3}`,
	} {
		resp, err := http.Post(server.URL+"/api/highscores", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", name, resp.StatusCode)
		}
	}
}

func TestQuestionOnEmptyCorpusIsUnavailable(t *testing.T) {
	hub := quiz.NewScoreHub()
	codec := token.NewCodec("test-secret")
	handler := NewHandler(
		quiz.NewService(memory.NewMemberRepository(nil, nil), codec),
		quiz.NewScoreService(memory.NewScoreStore(), hub),
		hub,
	)
	server := httptest.NewServer(handler.Routes(nil))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/question")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", resp.StatusCode)
	}
}

func postGuessRequest(t *testing.T, baseURL string, body []byte, wantStatus int) domain.Verdict {
	t.Helper()
	resp, err := http.Post(baseURL+"/api/guess", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("post guess: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("guess status %d, want %d", resp.StatusCode, wantStatus)
	}
	var verdict domain.Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	return verdict
}

func fetchBoard(t *testing.T, baseURL, mode string, difficulty int) boardResponse {
	t.Helper()
	resp, err := http.Get(baseURL + "/api/highscores?mode=" + mode + "&difficulty=" + strconv.Itoa(difficulty))
	if err != nil {
		t.Fatalf("get highscores: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("highscores status %d", resp.StatusCode)
	}
	var board boardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	return board
}

func newTestServer(t *testing.T) (*httptest.Server, *token.Codec) {
	t.Helper()
	codec := token.NewCodec("test-secret")
	hub := quiz.NewScoreHub()
	handler := NewHandler(
		quiz.NewService(testRepo(), codec),
		quiz.NewScoreService(memory.NewScoreStore(), hub),
		hub,
	)
	return httptest.NewServer(handler.Routes(nil)), codec
}

func testRepo() *memory.MemberRepository {
	id := func(v int64) *int64 { return &v }
	return memory.NewMemberRepository(
		[]domain.Member{
			{ID: 1, Name: "Jón Jónsson", ImageURL: "https://img.test/1.jpg"},
			{ID: 2, Name: "Einar Gunnarsson", ImageURL: "https://img.test/2.jpg"},
			{ID: 3, Name: "Ólafur Þórsson", ImageURL: "https://img.test/3.jpg"},
			{ID: 4, Name: "Guðrún Jónsdóttir", ImageURL: "https://img.test/4.jpg"},
			{ID: 5, Name: "Sigríður Einarsdóttir", ImageURL: "https://img.test/5.jpg"},
		},
		map[int64][]domain.Affiliation{
			1: {{MemberID: 1, PartyID: id(35), Party: "Sjálfstæðisflokkur"}},
			2: {{MemberID: 2, PartyID: id(23), Party: "Framsóknarflokkur"}},
			3: {{MemberID: 3, Party: "Alþýðuflokkur"}},
			4: {{MemberID: 4, PartyID: id(38), Party: "Samfylkingin"}},
			5: {{MemberID: 5, PartyID: id(52), Party: "Píratar"}},
		},
	)
}
