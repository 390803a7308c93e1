package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"minisocial/internal/media"
	"minisocial/internal/session"
	"minisocial/internal/social"
	"minisocial/internal/store"
)

// Setup a test server with a fresh temp database and upload dir
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(context.Background(), filepath.Join(dir, "social-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mediaStore, err := media.NewDiskStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := social.NewService(st, session.NewMemoryStore(),
		social.WithLogger(log),
		social.WithMedia(mediaStore),
		social.WithPasswordCost(bcrypt.MinCost),
	)
	a, err := newApp(svc, mediaStore, "test-secret", 1<<20, log)
	require.NoError(t, err)

	ts := httptest.NewServer(a.setupRouter())
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns a client with its own cookie jar; it follows redirects.
func newClient(t *testing.T, ts *httptest.Server) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := *ts.Client()
	client.Jar = jar
	return &client
}

// Helper: read response body as string
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func postForm(t *testing.T, ts *httptest.Server, client *http.Client, path string, values url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(ts.URL+path, values)
	require.NoError(t, err)
	return resp
}

func signup(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) string {
	t.Helper()
	return readBody(t, postForm(t, ts, client, "/signup", url.Values{
		"username": {username},
		"password": {password},
	}))
}

func login(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) string {
	t.Helper()
	return readBody(t, postForm(t, ts, client, "/login", url.Values{
		"username": {username},
		"password": {password},
	}))
}

func signupAndLogin(t *testing.T, ts *httptest.Server, client *http.Client, username string) string {
	t.Helper()
	signup(t, ts, client, username, "default")
	return login(t, ts, client, username, "default")
}

func getBody(t *testing.T, ts *httptest.Server, client *http.Client, path string) string {
	t.Helper()
	resp, err := client.Get(ts.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

// upload posts a multipart form with one file field.
func upload(t *testing.T, ts *httptest.Server, client *http.Client, path string, fields map[string]string, fileField, filename, content string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := client.Post(ts.URL+path, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return readBody(t, resp)
}

var likeAction = regexp.MustCompile(`/posts/(\d+)/like`)

func firstPostID(t *testing.T, body string) string {
	t.Helper()
	m := likeAction.FindStringSubmatch(body)
	require.NotNil(t, m, "no post on page")
	return m[1]
}

func TestSignup(t *testing.T) {
	ts := setupTestServer(t)
	client := newClient(t, ts)

	body := signup(t, ts, client, "user1", "default")
	assert.Contains(t, body, "Sign-up successful! Please log in.")

	body = signup(t, ts, client, "user1", "default")
	assert.Contains(t, body, "Username already exists!")

	body = signup(t, ts, client, "", "default")
	assert.Contains(t, body, "Please check the form and try again.")
}

func TestLoginLogout(t *testing.T) {
	ts := setupTestServer(t)
	client := newClient(t, ts)

	body := signupAndLogin(t, ts, client, "user1")
	assert.Contains(t, body, "Welcome back!")

	body = getBody(t, ts, client, "/logout")
	assert.Contains(t, body, "You have been logged out.")

	resp, err := client.Get(ts.URL + "/feed")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)

	body = login(t, ts, client, "user1", "wrongpassword")
	assert.Contains(t, body, "Invalid username or password!")

	body = login(t, ts, client, "user2", "default")
	assert.Contains(t, body, "Invalid username or password!")
}

func TestLikeToggleScenario(t *testing.T) {
	ts := setupTestServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)

	signupAndLogin(t, ts, alice, "alice")
	body := readBody(t, postForm(t, ts, alice, "/posts", url.Values{"content": {"hello"}}))
	assert.Contains(t, body, "hello")
	assert.Contains(t, body, "0 likes")
	postID := firstPostID(t, body)

	signupAndLogin(t, ts, bob, "bob")
	body = readBody(t, postForm(t, ts, bob, "/posts/"+postID+"/like", nil))
	assert.Contains(t, body, "1 likes")
	assert.Contains(t, body, "Unlike")

	body = getBody(t, ts, alice, "/feed")
	assert.Contains(t, body, "1 likes")

	body = readBody(t, postForm(t, ts, bob, "/posts/"+postID+"/like", nil))
	assert.Contains(t, body, "0 likes")
	assert.NotContains(t, body, "Unlike")
}

func TestPostValidationAndEscaping(t *testing.T) {
	ts := setupTestServer(t)
	client := newClient(t, ts)
	signupAndLogin(t, ts, client, "foo")

	body := readBody(t, postForm(t, ts, client, "/posts", url.Values{"content": {"   "}}))
	assert.Contains(t, body, "Your post needs some text or a file.")

	body = readBody(t, postForm(t, ts, client, "/posts", url.Values{"content": {"<b>bold</b>"}}))
	assert.Contains(t, body, "&lt;b&gt;bold&lt;/b&gt;")
	assert.NotContains(t, body, "<b>bold</b>")
}

func TestDeletePost(t *testing.T) {
	ts := setupTestServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)

	signupAndLogin(t, ts, alice, "alice")
	body := readBody(t, postForm(t, ts, alice, "/posts", url.Values{"content": {"mine"}}))
	postID := firstPostID(t, body)

	signupAndLogin(t, ts, bob, "bob")
	resp := postForm(t, ts, bob, "/posts/"+postID+"/delete", nil)
	readBody(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, getBody(t, ts, bob, "/feed"), "mine")

	body = readBody(t, postForm(t, ts, alice, "/posts/"+postID+"/delete", nil))
	assert.Contains(t, body, "Post deleted.")
	assert.NotContains(t, getBody(t, ts, bob, "/feed"), "mine")

	resp = postForm(t, ts, alice, "/posts/"+postID+"/delete", nil)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSavedPosts(t *testing.T) {
	ts := setupTestServer(t)
	client := newClient(t, ts)
	signupAndLogin(t, ts, client, "foo")

	body := readBody(t, postForm(t, ts, client, "/posts", url.Values{"content": {"keep this"}}))
	postID := firstPostID(t, body)

	assert.NotContains(t, getBody(t, ts, client, "/saved"), "keep this")
	body = readBody(t, postForm(t, ts, client, "/posts/"+postID+"/save", nil))
	assert.Contains(t, body, "Unsave")
	assert.Contains(t, body, "0 likes")
	assert.Contains(t, getBody(t, ts, client, "/saved"), "keep this")
}

func TestStoriesAndUploads(t *testing.T) {
	ts := setupTestServer(t)
	client := newClient(t, ts)
	signupAndLogin(t, ts, client, "foo")

	body := upload(t, ts, client, "/stories", nil, "media", "", "")
	assert.Contains(t, body, "Please choose a photo or video for your story.")

	body = upload(t, ts, client, "/stories", nil, "media", "evil.exe", "MZ")
	assert.Contains(t, body, "File type not allowed!")

	body = upload(t, ts, client, "/stories", nil, "media", "sunset.png", "pixels")
	assert.Contains(t, body, "Story posted!")

	ref := regexp.MustCompile(`/uploads/([^"]+_sunset\.png)`).FindStringSubmatch(body)
	require.NotNil(t, ref)
	assert.Equal(t, "pixels", getBody(t, ts, client, "/uploads/"+ref[1]))

	body = upload(t, ts, client, "/posts", map[string]string{"content": "clip"}, "media", "clip.mp4", "frames")
	assert.Contains(t, body, "<video")
	assert.Contains(t, body, "clip")
}

func TestProfile(t *testing.T) {
	ts := setupTestServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	signupAndLogin(t, ts, alice, "alice")
	signupAndLogin(t, ts, bob, "bob")

	postForm(t, ts, alice, "/posts", url.Values{"content": {"alice was here"}}).Body.Close()

	body := upload(t, ts, alice, "/profile", map[string]string{"bio": "I like cats", "theme": "dark"}, "profile_picture", "me.jpg", "face")
	assert.Contains(t, body, "Profile updated!")
	assert.Contains(t, body, "I like cats")
	assert.Contains(t, body, "theme-dark")
	assert.Contains(t, body, "_me.jpg")

	body = readBody(t, postForm(t, ts, alice, "/profile", url.Values{"theme": {"neon"}}))
	assert.Contains(t, body, "Please check the form and try again.")

	body = getBody(t, ts, bob, "/users/alice")
	assert.Contains(t, body, "I like cats")
	assert.Contains(t, body, "alice was here")
	assert.Contains(t, body, "Send message")
	assert.Contains(t, body, "theme-light")

	resp, err := bob.Get(ts.URL + "/users/nobody")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProfileSavedPosts(t *testing.T) {
	ts := setupTestServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	signupAndLogin(t, ts, alice, "alice")
	signupAndLogin(t, ts, bob, "bob")

	body := readBody(t, postForm(t, ts, bob, "/posts", url.Values{"content": {"gem from bob"}}))
	postID := firstPostID(t, body)
	postForm(t, ts, alice, "/posts/"+postID+"/save", nil).Body.Close()

	body = getBody(t, ts, alice, "/users/alice")
	assert.Contains(t, body, "Saved posts")
	assert.Contains(t, body, "gem from bob")
	assert.Contains(t, body, "Unsave")

	body = getBody(t, ts, bob, "/users/alice")
	assert.NotContains(t, body, "Saved posts")
	assert.NotContains(t, body, "gem from bob")
}

func TestMessages(t *testing.T) {
	ts := setupTestServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	signupAndLogin(t, ts, alice, "alice")
	signupAndLogin(t, ts, bob, "bob")

	body := readBody(t, postForm(t, ts, alice, "/messages", url.Values{"recipient": {"ghost"}, "content": {"boo"}}))
	assert.Contains(t, body, "User not found!")

	body = readBody(t, postForm(t, ts, alice, "/messages", url.Values{"recipient": {"bob"}, "content": {"hi bob"}}))
	assert.Contains(t, body, "Chat with bob")
	assert.Contains(t, body, "hi bob")

	body = readBody(t, postForm(t, ts, bob, "/messages/alice", url.Values{"content": {"hi alice"}}))
	assert.Contains(t, body, "hi bob")
	assert.Contains(t, body, "hi alice")

	body = readBody(t, postForm(t, ts, bob, "/messages/alice", url.Values{"content": {"  "}}))
	assert.Contains(t, body, "Message cannot be empty.")

	assert.Contains(t, getBody(t, ts, bob, "/messages"), `/messages/alice`)
	assert.Contains(t, getBody(t, ts, alice, "/messages"), `/messages/bob`)
}

func TestFlashSaveFailureIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	a, err := newApp(nil, nil, "test-secret", 1<<20, log)
	require.NoError(t, err)

	// Too large for a cookie, so the session cannot be saved.
	a.addFlash(httptest.NewRecorder(), httptest.NewRequest("POST", "/posts", nil), strings.Repeat("x", 8192))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "could not save session cookie", entry.Message)
}
