package main

import (
	"fmt"
	"strings"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
)

const layoutHead = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>MiniSocial</title>
</head>
<body class="theme-{{ Theme|escape }}">
<nav>
  {% if LoggedIn %}
  <a href="/feed">Feed</a>
  <a href="/saved">Saved</a>
  <a href="/messages">Messages</a>
  <a href="/users/{{ CurrentUser.Username|urlencode }}">{{ CurrentUser.Username|escape }}</a>
  <a href="/logout">Log out</a>
  {% else %}
  <a href="/login">Log in</a>
  <a href="/signup">Sign up</a>
  {% endif %}
</nav>
{% if Flashes %}
<ul class="flashes">
  {% for message in Flashes %}<li>{{ message|escape }}</li>{% endfor %}
</ul>
{% endif %}
<main>
`

const layoutFoot = `
</main>
</body>
</html>
`

const postList = `
{% for post in Posts %}
<article class="post">
  <header>
    {% if post.ProfilePicture %}<img class="avatar" src="/uploads/{{ post.ProfilePicture|urlencode }}" alt="">{% endif %}
    <a href="/users/{{ post.Username|urlencode }}">{{ post.Username|escape }}</a>
    <small>{{ post.Ago }}</small>
  </header>
  {% if post.Content %}<p>{{ post.Content|escape }}</p>{% endif %}
  {% if post.Media %}
    {% if post.IsVideo %}<video controls src="/uploads/{{ post.Media|urlencode }}"></video>
    {% else %}<img src="/uploads/{{ post.Media|urlencode }}" alt="">{% endif %}
  {% endif %}
  <footer>
    <span class="likes">{{ post.LikeCount }} likes</span>
    <form method="post" action="/posts/{{ post.ID }}/like">
      <button>{% if post.Liked %}Unlike{% else %}Like{% endif %}</button>
    </form>
    <form method="post" action="/posts/{{ post.ID }}/save">
      <button>{% if post.Saved %}Unsave{% else %}Save{% endif %}</button>
    </form>
    {% if post.Mine %}
    <form method="post" action="/posts/{{ post.ID }}/delete">
      <button>Delete</button>
    </form>
    {% endif %}
  </footer>
</article>
{% endfor %}
`

// savedPostList renders SavedPosts with the postList markup.
var savedPostList = strings.Replace(postList, "{% for post in Posts %}", "{% for post in SavedPosts %}", 1)

var pageSources = map[string]string{
	"signup.html": `
<h1>Sign up</h1>
<form method="post" action="/signup">
  <input name="username" placeholder="Username">
  <input name="password" type="password" placeholder="Password">
  <button>Sign up</button>
</form>
`,
	"login.html": `
<h1>Log in</h1>
<form method="post" action="/login">
  <input name="username" placeholder="Username">
  <input name="password" type="password" placeholder="Password">
  <button>Log in</button>
</form>
`,
	"feed.html": `
<section class="stories">
  {% for story in Stories %}
  <figure class="story">
    {% if story.IsVideo %}<video controls src="/uploads/{{ story.Media|urlencode }}"></video>
    {% else %}<img src="/uploads/{{ story.Media|urlencode }}" alt="">{% endif %}
    <figcaption>{{ story.Username|escape }} · {{ story.Ago }}</figcaption>
  </figure>
  {% endfor %}
  <form method="post" action="/stories" enctype="multipart/form-data">
    <input type="file" name="media">
    <button>Add story</button>
  </form>
</section>
<section class="new-post">
  <form method="post" action="/posts" enctype="multipart/form-data">
    <textarea name="content" placeholder="What's on your mind?"></textarea>
    <input type="file" name="media">
    <button>Post</button>
  </form>
</section>
<section class="posts">
` + postList + `
</section>
`,
	"saved.html": `
<h1>Saved posts</h1>
<section class="posts">
` + postList + `
</section>
`,
	"profile.html": `
<section class="profile">
  {% if ProfileUser.ProfilePicture %}<img class="avatar" src="/uploads/{{ ProfileUser.ProfilePicture|urlencode }}" alt="">{% endif %}
  <h1>{{ ProfileUser.Username|escape }}</h1>
  {% if ProfileUser.Bio %}<p class="bio">{{ ProfileUser.Bio|escape }}</p>{% endif %}
  {% if IsOwner %}
  <form method="post" action="/profile" enctype="multipart/form-data">
    <textarea name="bio" placeholder="Bio">{{ ProfileUser.Bio|escape }}</textarea>
    <select name="theme">
      <option value="light"{% if ProfileUser.Theme == "light" %} selected{% endif %}>Light</option>
      <option value="dark"{% if ProfileUser.Theme == "dark" %} selected{% endif %}>Dark</option>
    </select>
    <input type="file" name="profile_picture">
    <button>Update profile</button>
  </form>
  {% else %}
  <a href="/messages/{{ ProfileUser.Username|urlencode }}">Send message</a>
  {% endif %}
</section>
<section class="posts">
` + postList + `
</section>
{% if IsOwner %}
<section class="saved">
  <h2>Saved posts</h2>
` + savedPostList + `
</section>
{% endif %}
`,
	"messages.html": `
<h1>Messages</h1>
<ul class="partners">
  {% for partner in Partners %}
  <li><a href="/messages/{{ partner.Username|urlencode }}">{{ partner.Username|escape }}</a></li>
  {% endfor %}
</ul>
<form method="post" action="/messages">
  <input name="recipient" placeholder="Username">
  <input name="content" placeholder="Message">
  <button>Send</button>
</form>
`,
	"conversation.html": `
<h1>Chat with {{ Partner.Username|escape }}</h1>
<ol class="conversation">
  {% for message in Messages %}
  <li class="{% if message.Mine %}mine{% else %}theirs{% endif %}">{{ message.Content|escape }} <small>{{ message.Ago }}</small></li>
  {% endfor %}
</ol>
<form method="post" action="/messages/{{ Partner.Username|urlencode }}">
  <input name="content" placeholder="Message">
  <button>Send</button>
</form>
`,
}

// parsePages compiles every page wrapped in the layout.
func parsePages() (map[string]*exec.Template, error) {
	pages := make(map[string]*exec.Template, len(pageSources))
	for name, body := range pageSources {
		tmpl, err := gonja.FromString(layoutHead + body + layoutFoot)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}
