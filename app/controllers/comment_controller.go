package controllers

import (
	"net/http"

	"inkwell/app/middleware"
	"inkwell/app/services"
	"inkwell/app/views"

	"go.uber.org/zap"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	base
	commentService *services.CommentService
	postService    *services.PostService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, postService *services.PostService, renderer *views.Renderer, log *zap.Logger) *CommentController {
	return &CommentController{
		base:           newBase(renderer, log),
		commentService: commentService,
		postService:    postService,
	}
}

// Create shows the comment form for a post and stores submitted comments.
// Anyone may comment; new comments wait for approval.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		cc.sendError(w, r, err)
		return
	}

	post, err := cc.postService.GetPost(postID, false)
	if err != nil {
		cc.sendError(w, r, err)
		return
	}

	var in services.CommentInput
	if r.Method == http.MethodGet {
		cc.render(w, r, views.AddComment, &views.Page{Title: "New comment", Post: post, Form: in}, http.StatusOK)
		return
	}

	if err := decode(r, &in, map[string]*string{"author": &in.Author, "text": &in.Text}); err != nil {
		cc.sendStatus(w, r, http.StatusBadRequest, "Malformed request body.")
		return
	}

	comment, err := cc.commentService.CreateComment(postID, in)
	if err != nil {
		cc.formError(w, r, err, views.AddComment, &views.Page{Title: "New comment", Post: post, Form: in})
		return
	}

	if middleware.WantsJSON(r) {
		cc.sendJSON(w, http.StatusCreated, comment)
		return
	}
	http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
}

// Approve makes a comment visible to readers
func (cc *CommentController) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		cc.sendError(w, r, err)
		return
	}

	comment, err := cc.commentService.ApproveComment(id)
	if err != nil {
		cc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		cc.sendJSON(w, http.StatusOK, comment)
		return
	}
	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}

// Remove deletes a comment
func (cc *CommentController) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		cc.sendError(w, r, err)
		return
	}

	comment, err := cc.commentService.DeleteComment(id)
	if err != nil {
		cc.sendError(w, r, err)
		return
	}

	if middleware.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}
