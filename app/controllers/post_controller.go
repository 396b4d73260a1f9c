package controllers

import (
	"html"
	"net/http"

	"inkwell/app/middleware"
	"inkwell/app/services"
	"inkwell/app/views"

	"go.uber.org/zap"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, renderer *views.Renderer, log *zap.Logger) *PostController {
	return &PostController{
		base:        newBase(renderer, log),
		postService: postService,
	}
}

// Index lists published posts, oldest publication first
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPublished()
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
		return
	}
	pc.render(w, r, views.PostList, &views.Page{Posts: posts}, http.StatusOK)
}

// Drafts lists unpublished posts, oldest first
func (pc *PostController) Drafts(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListDrafts()
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
		return
	}
	pc.render(w, r, views.PostDraftList, &views.Page{Title: "Drafts", Posts: posts}, http.StatusOK)
}

// Show displays a single post. Signed in authors also see pending comments.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	actor := middleware.GetActor(r.Context())
	post, err := pc.postService.GetPost(id, actor != nil)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, post)
		return
	}
	pc.render(w, r, views.PostDetail, &views.Page{Title: post.Title, Post: post}, http.StatusOK)
}

// Create shows the new post form and stores submitted posts as drafts
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if r.Method == http.MethodGet {
		pc.render(w, r, views.PostEdit, &views.Page{Title: "New post", Form: in}, http.StatusOK)
		return
	}

	if err := decode(r, &in, map[string]*string{"title": &in.Title, "text": &in.Text}); err != nil {
		pc.sendStatus(w, r, http.StatusBadRequest, "Malformed request body.")
		return
	}

	post, err := pc.postService.CreatePost(in, middleware.GetActor(r.Context()))
	if err != nil {
		pc.formError(w, r, err, views.PostEdit, &views.Page{Title: "New post", Form: in})
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// Edit shows the edit form and applies submitted changes. The editor
// becomes the post's author.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		post, err := pc.postService.GetPost(id, false)
		if err != nil {
			pc.sendError(w, r, err)
			return
		}
		// text is stored sanitized; the form shows it as the author typed it
		form := services.PostInput{Title: post.Title, Text: html.UnescapeString(post.Text)}
		pc.render(w, r, views.PostEdit, &views.Page{Title: "Edit post", Post: post, Form: form}, http.StatusOK)
		return
	}

	var in services.PostInput
	if err := decode(r, &in, map[string]*string{"title": &in.Title, "text": &in.Text}); err != nil {
		pc.sendStatus(w, r, http.StatusBadRequest, "Malformed request body.")
		return
	}

	post, err := pc.postService.UpdatePost(id, in, middleware.GetActor(r.Context()))
	if err != nil {
		pc.formError(w, r, err, views.PostEdit, &views.Page{Title: "Edit post", Post: post, Form: in})
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, post)
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// Publish stamps the post as published now
func (pc *PostController) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	post, err := pc.postService.PublishPost(id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, post)
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// Delete removes a post together with its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	if err := pc.postService.DeletePost(id); err != nil {
		pc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// NotFound answers requests that match no route
func (pc *PostController) NotFound(w http.ResponseWriter, r *http.Request) {
	pc.sendStatus(w, r, http.StatusNotFound, "Page not found.")
}
