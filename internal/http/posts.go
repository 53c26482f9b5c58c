package http

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const (
	requestBodyInvalidCode = "REQUEST_BODY_INVALID"
	postPayloadInvalidCode = "POST_PAYLOAD_INVALID"
	maxPostTitleLength     = 200
)

var errBodyNotObject = errors.New("request body must be a JSON object")

type postsResponse struct {
	Posts []map[string]any `json:"posts"`
}

func (api *API) registerPostRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posts", api.handlePostList)
	mux.HandleFunc("POST /api/posts", api.handlePostCreate)
}

func (api *API) handlePostList(w http.ResponseWriter, r *http.Request) {
	now := api.timestamp()
	posts := make([]map[string]any, 0, len(api.posts))
	for _, post := range api.posts {
		createdAt := post.CreatedAt
		if createdAt == "" {
			createdAt = now
		}
		posts = append(posts, map[string]any{
			"id":        post.ID,
			"title":     post.Title,
			"content":   post.Content,
			"createdAt": createdAt,
		})
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts})
}

// handlePostCreate echoes any submitted object with a generated id and the
// server time. A submitted id is kept; createdAt is always the server's.
// Field rules apply only when WithPostValidation is set.
func (api *API) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, wrapRequestError(err))
		return
	}
	payload, ok := body.(map[string]any)
	if !ok {
		writeError(w, wrapRequestError(errBodyNotObject))
		return
	}
	if api.strictPosts {
		if err := validatePostPayload(payload); err != nil {
			writeError(w, err)
			return
		}
	}

	created := make(map[string]any, len(payload)+2)
	created["id"] = api.newID()
	for key, value := range payload {
		created[key] = value
	}
	created["createdAt"] = api.timestamp()

	api.logger.Info("http.post.created", "id", created["id"])
	writeJSON(w, http.StatusOK, created)
}

func wrapRequestError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid request body").
		WithTextCode(requestBodyInvalidCode)
}

func validatePostPayload(payload map[string]any) error {
	err := validation.Validate(payload, validation.Map(
		validation.Key("title", validation.By(postTitle)).Optional(),
		validation.Key("content", validation.By(stringValue)).Optional(),
	).AllowExtraKeys())
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "invalid post payload").
		WithTextCode(postPayloadInvalidCode)
}

func postTitle(value any) error {
	if err := stringValue(value); err != nil {
		return err
	}
	title := strings.TrimSpace(value.(string))
	if title == "" {
		return validation.NewError("devblog.post.title_required", "cannot be blank")
	}
	if utf8.RuneCountInString(title) > maxPostTitleLength {
		return validation.NewError("devblog.post.title_length", "must be at most 200 characters")
	}
	return nil
}

func stringValue(value any) error {
	if _, ok := value.(string); !ok {
		return validation.NewError("devblog.post.string_required", "must be a string")
	}
	return nil
}
