package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/search"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
)

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		s.respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	s.logger.Debug("recommendation request", zap.String("email", email), zap.Int("limit", limit))
	response, err := s.recommender.Recommend(r.Context(), email, limit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("recommendation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleIndexRebuild(w http.ResponseWriter, r *http.Request) {
	count, err := s.index.RebuildFull(r.Context())
	if err != nil {
		s.logger.Error("index rebuild failed", zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "failed",
			"message": err.Error(),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "rebuilt",
		"posts_indexed": count,
	})
}

type interactionRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceID == "" || req.TargetID == "" {
		s.respondError(w, http.StatusBadRequest, "source_id and target_id are required")
		return
	}

	rec, err := s.calculator.CalculateAndStore(r.Context(), req.SourceID, req.TargetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("interaction strength failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"source_id":            rec.SourceID,
		"target_id":            rec.TargetID,
		"interaction_strength": rec.Score,
	})
}

// validID reports whether id looks like a stored identifier (a UUID or a
// short slug). Anything with spaces, control characters, or excessive length
// is rejected before hitting storage.
func validID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '@':
		default:
			return false
		}
	}
	return true
}

func (s *Server) handleUserConnections(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		s.respondError(w, http.StatusBadRequest, "invalid user id format")
		return
	}
	user, err := s.storage.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("user lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type connectionEntry struct {
		ID                  string  `json:"id"`
		Name                string  `json:"name"`
		InteractionStrength float64 `json:"interaction_strength"`
	}
	entries := make([]connectionEntry, 0, len(user.Connections))
	for _, conn := range user.Connections {
		entry := connectionEntry{ID: conn.PeerID}
		peer, err := s.storage.GetUser(r.Context(), conn.PeerID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn("connection peer lookup failed",
					zap.String("peer", conn.PeerID), zap.Error(err))
			}
			continue
		}
		entry.Name = peer.FullName
		strength, err := s.storage.GetInteractionStrength(r.Context(), user.ID, conn.PeerID)
		if err == nil {
			entry.InteractionStrength = strength.Score
		}
		entries = append(entries, entry)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_connections": len(entries),
		"connections":       entries,
	})
}

func (s *Server) handlePostDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		s.respondError(w, http.StatusBadRequest, "invalid post id format")
		return
	}
	post, err := s.storage.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "post not found")
			return
		}
		s.logger.Error("post lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	owner, err := s.storage.GetUser(r.Context(), post.AuthorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "post owner not found")
			return
		}
		s.logger.Error("post owner lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	engagements, err := s.recommender.AnnotatePost(r.Context(), post, owner)
	if err != nil {
		s.logger.Error("post annotation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"post_id": post.ID,
		"text":    post.Text,
		"owner": map[string]string{
			"id":    owner.ID,
			"name":  owner.FullName,
			"email": owner.Email,
		},
		"likes":      engagements.Likes,
		"comments":   engagements.Comments,
		"shares":     engagements.Shares,
		"created_at": post.CreatedAt,
	})
}

type createPostRequest struct {
	ID       string `json:"id,omitempty"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AuthorID == "" || req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "author_id and text are required")
		return
	}

	author, err := s.storage.GetUser(r.Context(), req.AuthorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "author not found")
			return
		}
		s.logger.Error("author lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	post := &models.Post{
		ID:        req.ID,
		AuthorID:  req.AuthorID,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if err := s.storage.CreatePost(r.Context(), post); err != nil {
		s.logger.Error("post creation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.keywordIndex.Index(r.Context(), post, author.FullName); err != nil {
		s.logger.Warn("keyword indexing failed", zap.String("post", post.ID), zap.Error(err))
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": post.ID, "status": "created"})
}

type engagementRequest struct {
	ActorID string `json:"actor_id"`
	Kind    string `json:"kind"`
	Text    string `json:"text,omitempty"`
}

func (s *Server) handleAddEngagement(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ActorID == "" {
		s.respondError(w, http.StatusBadRequest, "actor_id is required")
		return
	}
	kind := models.EngagementKind(req.Kind)
	switch kind {
	case models.EngagementLike, models.EngagementComment, models.EngagementShare:
	default:
		s.respondError(w, http.StatusBadRequest, "kind must be like, comment, or share")
		return
	}

	engagement := models.Engagement{
		ActorID:   req.ActorID,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.AppendEngagement(r.Context(), postID, kind, engagement); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "post not found")
			return
		}
		s.logger.Error("engagement append failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.searchEngine.Search(r.Context(), &query)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userCount, err := s.storage.CountUsers(ctx)
	if err != nil {
		s.logger.Error("status: count users failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	postCount, err := s.storage.CountPosts(ctx)
	if err != nil {
		s.logger.Error("status: count posts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"users":             userCount,
		"posts":             postCount,
		"vector_index_size": s.index.Size(),
	}
	if created := s.index.CreatedAt(); !created.IsZero() {
		resp["vector_index_age_hours"] = time.Since(created).Hours()
	}
	if count, err := s.keywordIndex.DocCount(); err == nil {
		resp["keyword_index_size"] = count
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"index_staleness_days": s.config.Index.StalenessDays,
			"index_max_posts":      s.config.Index.MaxPosts,
			"database_path":        s.config.Storage.DatabasePath,
			"bleve_index_path":     s.config.Storage.BleveIndexPath,
		}
		diskBytes, err := storage.DiskUsageBytes(
			s.config.Storage.DatabasePath,
			s.config.Storage.BleveIndexPath,
		)
		if err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
