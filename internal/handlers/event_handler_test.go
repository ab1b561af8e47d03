package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitrader/auth/internal/models"
	"github.com/bitrader/auth/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memRepo struct {
	byID map[primitive.ObjectID]*models.Event
	off  bool
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[primitive.ObjectID]*models.Event{}}
}

func (m *memRepo) gate() error {
	if m.off {
		return models.ErrStorageUnavailable
	}
	return nil
}

func (m *memRepo) FindByTitle(ctx context.Context, title string) (*models.Event, error) {
	if err := m.gate(); err != nil {
		return nil, err
	}
	for _, e := range m.byID {
		if e.Title == title {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if err := m.gate(); err != nil {
		return nil, err
	}
	if e, ok := m.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepo) ListActive(ctx context.Context) ([]models.Event, error) {
	if err := m.gate(); err != nil {
		return nil, err
	}
	events := []models.Event{}
	for _, e := range m.byID {
		if !e.IsExpired {
			events = append(events, *e)
		}
	}
	return events, nil
}

func (m *memRepo) Insert(ctx context.Context, event *models.Event) (primitive.ObjectID, error) {
	if err := m.gate(); err != nil {
		return primitive.NilObjectID, err
	}
	cp := *event
	cp.ID = primitive.NewObjectID()
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) UpdateVotes(ctx context.Context, id primitive.ObjectID, voters []models.Voter, upvotes, downvotes uint16) (bool, error) {
	if err := m.gate(); err != nil {
		return false, err
	}
	e, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	e.Voters = voters
	e.Upvotes = upvotes
	e.Downvotes = downvotes
	return true, nil
}

func (m *memRepo) Expire(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if err := m.gate(); err != nil {
		return nil, err
	}
	e, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	e.IsExpired = true
	cp := *e
	return &cp, nil
}

func (m *memRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if err := m.gate(); err != nil {
		return nil, err
	}
	e, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	delete(m.byID, id)
	cp := *e
	return &cp, nil
}

const testDeleteKey = "delete-me"

func newTestRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	es := services.NewEventService(repo, 86400, testDeleteKey, false)

	r := gin.New()
	auth := r.Group("/auth")
	auth.POST("/add", AddEvent(es))
	auth.GET("/get/availables", GetAvailableEvents(es))
	auth.POST("/cast-vote", CastVote(es))
	auth.POST("/set-expire", SetExpire(es))
	auth.POST("/delete/:id/:api_key", DeleteEvent(es))
	return r
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (%s)", err, w.Body.String())
	}
	return w, env
}

func TestAddEventCreatesAndReports302OnRepeat(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)
	body := models.EventAddRequest{Title: "t1", Content: "c", CreatorWalletAddress: "w"}

	w, env := do(t, r, http.MethodPost, "/auth/add", body)
	if w.Code != http.StatusCreated || env.Status != 201 || env.Message != models.MsgInserted {
		t.Fatalf("first add: code=%d envelope=%+v", w.Code, env)
	}
	var inserted models.InsertedID
	if err := json.Unmarshal(env.Data, &inserted); err != nil || inserted.OID == "" {
		t.Fatalf("insert payload missing $oid: %s", env.Data)
	}

	w, env = do(t, r, http.MethodPost, "/auth/add", body)
	if w.Code != http.StatusFound || env.Message != models.MsgFoundDocument {
		t.Fatalf("repeat add: code=%d envelope=%+v", w.Code, env)
	}
	var existing models.Event
	if err := json.Unmarshal(env.Data, &existing); err != nil {
		t.Fatalf("302 data is not the existing event: %v", err)
	}
	if existing.ID.Hex() != inserted.OID {
		t.Errorf("302 returned id %s, want original %s", existing.ID.Hex(), inserted.OID)
	}
	if len(repo.byID) != 1 {
		t.Errorf("stored %d documents, want 1", len(repo.byID))
	}
}

func TestGetAvailables(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)
	do(t, r, http.MethodPost, "/auth/add", models.EventAddRequest{Title: "t1"})

	w, env := do(t, r, http.MethodGet, "/auth/get/availables", nil)
	if w.Code != http.StatusOK || env.Message != models.MsgFetched {
		t.Fatalf("code=%d envelope=%+v", w.Code, env)
	}
	var available models.AvailableEvents
	if err := json.Unmarshal(env.Data, &available); err != nil {
		t.Fatalf("data is not AvailableEvents: %v", err)
	}
	if len(available.Events) != 1 {
		t.Errorf("got %d events, want 1", len(available.Events))
	}
}

func TestCastVoteRoundTrip(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)
	_, env := do(t, r, http.MethodPost, "/auth/add", models.EventAddRequest{Title: "t1"})
	var inserted models.InsertedID
	if err := json.Unmarshal(env.Data, &inserted); err != nil {
		t.Fatal(err)
	}

	w, env := do(t, r, http.MethodPost, "/auth/cast-vote", models.CastVoteRequest{
		EventID: inserted.OID,
		Voter:   models.Voter{EventOwnerWalletAddress: "wA", IsUpvote: true, Score: 3},
	})
	if w.Code != http.StatusOK || env.Message != models.MsgUpdated {
		t.Fatalf("code=%d envelope=%+v", w.Code, env)
	}
	if string(env.Data) != "[]" {
		t.Errorf("cast-vote data = %s, want []", env.Data)
	}

	id, _ := primitive.ObjectIDFromHex(inserted.OID)
	stored := repo.byID[id]
	if stored.Upvotes != 1 || stored.Downvotes != 0 || len(stored.Voters) != 1 {
		t.Errorf("stored event after vote: %+v", stored)
	}
}

func TestCastVoteMalformedIDIsClean400(t *testing.T) {
	r := newTestRouter(newMemRepo())

	w, env := do(t, r, http.MethodPost, "/auth/cast-vote", models.CastVoteRequest{
		EventID: "zzz",
		Voter:   models.Voter{EventOwnerWalletAddress: "wA"},
	})
	if w.Code != http.StatusBadRequest || env.Status != 400 {
		t.Fatalf("code=%d envelope=%+v", w.Code, env)
	}
}

func TestCastVoteUnknownEvent404(t *testing.T) {
	r := newTestRouter(newMemRepo())

	w, env := do(t, r, http.MethodPost, "/auth/cast-vote", models.CastVoteRequest{
		EventID: primitive.NewObjectID().Hex(),
		Voter:   models.Voter{EventOwnerWalletAddress: "wA"},
	})
	if w.Code != http.StatusNotFound || env.Message != models.MsgNotFoundDocument {
		t.Fatalf("code=%d envelope=%+v", w.Code, env)
	}
}

func TestSetExpireReturnsUpdatedDocument(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)
	_, env := do(t, r, http.MethodPost, "/auth/add", models.EventAddRequest{Title: "t1"})
	var inserted models.InsertedID
	if err := json.Unmarshal(env.Data, &inserted); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		w, env := do(t, r, http.MethodPost, "/auth/set-expire", models.ExpireEventRequest{EventID: inserted.OID})
		if w.Code != http.StatusOK || env.Message != models.MsgUpdated {
			t.Fatalf("set-expire #%d: code=%d envelope=%+v", i+1, w.Code, env)
		}
		var event models.Event
		if err := json.Unmarshal(env.Data, &event); err != nil || !event.IsExpired {
			t.Fatalf("set-expire #%d data: %s", i+1, env.Data)
		}
	}

	w, env := do(t, r, http.MethodGet, "/auth/get/availables", nil)
	if w.Code != http.StatusOK {
		t.Fatal("availables after expire failed")
	}
	var available models.AvailableEvents
	if err := json.Unmarshal(env.Data, &available); err != nil {
		t.Fatal(err)
	}
	if len(available.Events) != 0 {
		t.Errorf("expired event still listed: %+v", available.Events)
	}
}

func TestDeleteEventKeyCheck(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)
	_, env := do(t, r, http.MethodPost, "/auth/add", models.EventAddRequest{Title: "t1"})
	var inserted models.InsertedID
	if err := json.Unmarshal(env.Data, &inserted); err != nil {
		t.Fatal(err)
	}

	w, env := do(t, r, http.MethodPost, "/auth/delete/"+inserted.OID+"/wrong-key", nil)
	if w.Code != http.StatusForbidden || env.Message != models.MsgWrongAPIKey {
		t.Fatalf("wrong key: code=%d envelope=%+v", w.Code, env)
	}
	if len(repo.byID) != 1 {
		t.Fatal("rejected delete touched storage")
	}

	w, env = do(t, r, http.MethodPost, "/auth/delete/"+inserted.OID+"/"+testDeleteKey, nil)
	if w.Code != http.StatusOK || env.Message != models.MsgDeleted {
		t.Fatalf("correct key: code=%d envelope=%+v", w.Code, env)
	}
	var deleted models.Event
	if err := json.Unmarshal(env.Data, &deleted); err != nil || deleted.Title != "t1" {
		t.Fatalf("deleted document not returned: %s", env.Data)
	}
	if len(repo.byID) != 0 {
		t.Error("document still stored after delete")
	}
}

func TestStorageOffAnswers503(t *testing.T) {
	repo := newMemRepo()
	repo.off = true
	r := newTestRouter(repo)

	w, env := do(t, r, http.MethodPost, "/auth/add", models.EventAddRequest{Title: "t1"})
	if w.Code != http.StatusServiceUnavailable || env.Status != 503 {
		t.Fatalf("add: code=%d envelope=%+v", w.Code, env)
	}

	w, env = do(t, r, http.MethodGet, "/auth/get/availables", nil)
	if w.Code != http.StatusServiceUnavailable || env.Status != 503 {
		t.Fatalf("availables: code=%d envelope=%+v", w.Code, env)
	}
}

func TestAddEventMalformedBody400(t *testing.T) {
	r := newTestRouter(newMemRepo())

	req := httptest.NewRequest(http.MethodPost, "/auth/add", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d, want 400", w.Code)
	}
}
