package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"minisocial/internal/social"
)

// GET /: feed when logged in, login page otherwise
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	if a.getCurrentUser(r) != nil {
		http.Redirect(w, r, "/feed", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// GET + POST /signup
func (a *app) signupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		_, err := a.svc.Signup(r.Context(), r.FormValue("username"), r.FormValue("password"))
		if err != nil {
			a.fail(w, r, err, "/signup")
			return
		}
		a.addFlash(w, r, "Sign-up successful! Please log in.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	a.renderTemplate(w, r, nil, "signup.html", map[string]interface{}{})
}

// GET + POST /login
func (a *app) loginHandler(w http.ResponseWriter, r *http.Request) {
	if user := a.getCurrentUser(r); user != nil {
		http.Redirect(w, r, "/feed", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		token, _, err := a.svc.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
		if err != nil {
			a.fail(w, r, err, "/login")
			return
		}
		a.setSessionToken(w, r, token)
		a.addFlash(w, r, "Welcome back!")
		http.Redirect(w, r, "/feed", http.StatusFound)
		return
	}
	a.renderTemplate(w, r, nil, "login.html", map[string]interface{}{})
}

// GET /logout
func (a *app) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Logout(r.Context(), a.sessionToken(r)); err != nil {
		a.log.WithError(err).Warn("could not drop session")
	}
	a.setSessionToken(w, r, "")
	a.addFlash(w, r, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// GET /feed
func (a *app) feedHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	feed, err := a.svc.Feed(r.Context(), user.ID)
	if err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	a.renderTemplate(w, r, user, "feed.html", map[string]interface{}{
		"Stories": newStoryViews(feed.Stories),
		"Posts":   newPostViews(feed.Posts, user.ID),
	})
}

// POST /posts
func (a *app) createPostHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	ref, err := a.saveUpload(w, r, "media")
	if err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	if _, err := a.svc.CreatePost(r.Context(), user.ID, r.FormValue("content"), ref); err != nil {
		a.discardUpload(r, ref)
		a.fail(w, r, err, "/feed")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusFound)
}

// POST /posts/{id}/delete
func (a *app) deletePostHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	postID, ok := postIDVar(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeletePost(r.Context(), user.ID, postID); err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	a.addFlash(w, r, "Post deleted.")
	http.Redirect(w, r, backTo(r, "/feed"), http.StatusFound)
}

// POST /posts/{id}/like
func (a *app) toggleLikeHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	postID, ok := postIDVar(w, r)
	if !ok {
		return
	}
	if _, err := a.svc.ToggleLike(r.Context(), user.ID, postID); err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	http.Redirect(w, r, backTo(r, "/feed"), http.StatusFound)
}

// POST /posts/{id}/save
func (a *app) toggleSaveHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	postID, ok := postIDVar(w, r)
	if !ok {
		return
	}
	if _, err := a.svc.ToggleSave(r.Context(), user.ID, postID); err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	http.Redirect(w, r, backTo(r, "/feed"), http.StatusFound)
}

// POST /stories
func (a *app) createStoryHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	ref, err := a.saveUpload(w, r, "media")
	if err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	if _, err := a.svc.CreateStory(r.Context(), user.ID, ref); err != nil {
		a.discardUpload(r, ref)
		a.fail(w, r, err, "/feed")
		return
	}
	a.addFlash(w, r, "Story posted!")
	http.Redirect(w, r, "/feed", http.StatusFound)
}

// GET /saved
func (a *app) savedHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	posts, err := a.svc.SavedPosts(r.Context(), user.ID)
	if err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	a.renderTemplate(w, r, user, "saved.html", map[string]interface{}{
		"Posts": newPostViews(posts, user.ID),
	})
}

// GET /users/{username}
func (a *app) profileHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	profile, err := a.svc.Profile(r.Context(), user.ID, mux.Vars(r)["username"])
	if err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	a.renderTemplate(w, r, user, "profile.html", map[string]interface{}{
		"ProfileUser": newUserView(profile.User),
		"IsOwner":     profile.IsOwner,
		"Posts":       newPostViews(profile.Posts, user.ID),
		"SavedPosts":  newPostViews(profile.SavedPosts, user.ID),
	})
}

// POST /profile
func (a *app) updateProfileHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	back := "/users/" + url.PathEscape(user.Username)

	ref, err := a.saveUpload(w, r, "profile_picture")
	if err != nil {
		a.fail(w, r, err, back)
		return
	}

	var upd social.ProfileUpdate
	if _, ok := r.Form["bio"]; ok {
		bio := r.FormValue("bio")
		upd.Bio = &bio
	}
	if theme := r.FormValue("theme"); theme != "" {
		upd.Theme = &theme
	}
	if ref != "" {
		upd.ProfilePicture = &ref
	}

	if _, err := a.svc.UpdateProfile(r.Context(), user.ID, upd); err != nil {
		a.discardUpload(r, ref)
		a.fail(w, r, err, back)
		return
	}
	a.addFlash(w, r, "Profile updated!")
	http.Redirect(w, r, back, http.StatusFound)
}

// GET /messages
func (a *app) messagesHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	partners, err := a.svc.ConversationPartners(r.Context(), user.ID)
	if err != nil {
		a.fail(w, r, err, "/feed")
		return
	}
	a.renderTemplate(w, r, user, "messages.html", map[string]interface{}{
		"Partners": newUserViews(partners),
	})
}

// POST /messages: start a conversation by username
func (a *app) startConversationHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	a.sendMessage(w, r, user, r.FormValue("recipient"), "/messages")
}

// GET + POST /messages/{username}
func (a *app) conversationHandler(w http.ResponseWriter, r *http.Request, user *social.User) {
	username := mux.Vars(r)["username"]
	if r.Method == http.MethodPost {
		a.sendMessage(w, r, user, username, "/messages/"+url.PathEscape(username))
		return
	}

	partner, err := a.svc.UserByUsername(r.Context(), username)
	if err != nil {
		a.fail(w, r, err, "/messages")
		return
	}
	msgs, err := a.svc.Conversation(r.Context(), user.ID, partner.ID)
	if err != nil {
		a.fail(w, r, err, "/messages")
		return
	}
	a.renderTemplate(w, r, user, "conversation.html", map[string]interface{}{
		"Partner":  newUserView(partner),
		"Messages": newMessageViews(msgs, user.ID),
	})
}

func (a *app) sendMessage(w http.ResponseWriter, r *http.Request, user *social.User, username, back string) {
	recipient, err := a.svc.UserByUsername(r.Context(), username)
	if errors.Is(err, social.ErrNotFound) {
		a.addFlash(w, r, "User not found!")
		http.Redirect(w, r, "/messages", http.StatusFound)
		return
	}
	if err != nil {
		a.fail(w, r, err, back)
		return
	}
	if _, err := a.svc.SendMessage(r.Context(), user.ID, recipient.ID, r.FormValue("content")); err != nil {
		a.fail(w, r, err, back)
		return
	}
	http.Redirect(w, r, "/messages/"+url.PathEscape(recipient.Username), http.StatusFound)
}

// GET /uploads/{file}
func (a *app) uploadsHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, a.media.Path(mux.Vars(r)["file"]))
}

func postIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// backTo returns the local page the form was submitted from, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || ref.Host != r.Host {
		return fallback
	}
	return ref.Path
}
