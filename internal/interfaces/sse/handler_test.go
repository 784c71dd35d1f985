package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*hub.Hub, *gin.Engine) {
	t.Helper()

	h := hub.New(hub.Config{}, logger.NewNop())
	router := gin.New()
	InitSSERouter(logger.NewNop(), h, &router.RouterGroup)
	return h, router
}

type eventReader struct {
	r *bufio.Reader
}

func (e *eventReader) next(t *testing.T) map[string]any {
	t.Helper()

	line, err := e.r.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "), "line %q", line)

	blank, err := e.r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "\n", blank)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSuffix(line, "\n"), "data: ")), &ev))
	return ev
}

func openStream(t *testing.T, srv *httptest.Server, query string) (*eventReader, *http.Response, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse/events"+query, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = resp.Body.Close()
	})
	return &eventReader{r: bufio.NewReader(resp.Body)}, resp, cancel
}

func TestConnect_StreamsEventsForSubscribedTopics(t *testing.T) {
	h, router := setupRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	events, resp, cancel := openStream(t, srv, "?topics=comments")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	connected := events.next(t)
	assert.Equal(t, "connected", connected["type"])
	clientID, _ := connected["clientId"].(string)
	require.NotEmpty(t, clientID)

	topics, ok := h.Topics(clientID)
	require.True(t, ok)
	assert.Equal(t, []string{"comments"}, topics)

	// Not subscribed to movies yet.
	assert.Equal(t, 0, h.Broadcast(map[string]string{"type": "movie"}, "movies"))

	subResp, err := srv.Client().Post(srv.URL+"/sse/subscribe/"+clientID+"/movies", "application/json", nil)
	require.NoError(t, err)
	_ = subResp.Body.Close()
	assert.Equal(t, http.StatusOK, subResp.StatusCode)

	assert.Equal(t, 1, h.Broadcast(map[string]string{"type": "movie"}, "movies"))
	assert.Equal(t, "movie", events.next(t)["type"])

	assert.Equal(t, 1, h.Broadcast(map[string]string{"type": "comment"}, "comments"))
	assert.Equal(t, "comment", events.next(t)["type"])

	cancel()
	require.Eventually(t, func() bool {
		return h.ActiveClientsCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnect_DefaultTopicIsAll(t *testing.T) {
	h, router := setupRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	events, _, _ := openStream(t, srv, "")
	clientID := events.next(t)["clientId"].(string)

	topics, ok := h.Topics(clientID)
	require.True(t, ok)
	assert.Equal(t, []string{"all"}, topics)

	assert.Equal(t, 1, h.Broadcast(map[string]string{"type": "anything"}, "movies"))
	assert.Equal(t, "anything", events.next(t)["type"])
}

func TestStats(t *testing.T) {
	h, router := setupRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	openStream(t, srv, "")
	require.Eventually(t, func() bool { return h.ActiveClientsCount() == 1 }, time.Second, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"activeConnections":1}`, rec.Body.String())
}

func TestSubscribeUnsubscribe_StaleClient(t *testing.T) {
	h, router := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sse/subscribe/ghost/movies", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Subscribed to topic: movies"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sse/unsubscribe/ghost/movies", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Unsubscribed from topic: movies"}`, rec.Body.String())

	assert.Equal(t, 0, h.ActiveClientsCount())
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"all"}, parseTopics(""))
	assert.Equal(t, []string{"comments", "movies"}, parseTopics("comments,movies"))
}
